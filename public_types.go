package protect

// Public aliases for the shared internal types, so SDK consumers only
// import this package.

import (
	"github.com/NES-Digital-Service/protect-scotland/internal/api"
	"github.com/NES-Digital-Service/protect-scotland/internal/types"
)

// RequestConfig describes a single HTTP exchange passed to Request.
type RequestConfig = api.Config

// Registration is the credential pair issued on successful registration.
type Registration = types.Registration

// StatsData is the install-statistics response.
type StatsData = types.StatsData

// InstallCount is one point of the install time series.
type InstallCount = types.InstallCount

// Settings is the merged application configuration.
type Settings = types.Settings

// RemoteSettings is the raw remote settings payload.
type RemoteSettings = types.RemoteSettings

// TraceConfiguration tunes the exposure-notification layer.
type TraceConfiguration = types.TraceConfiguration

// MetricEvent identifies an analytics event type.
type MetricEvent = types.MetricEvent

// Analytics event types reported by the app.
const (
	MetricContactUpload = types.MetricContactUpload
	MetricForget        = types.MetricForget
	MetricTokenRenewal  = types.MetricTokenRenewal
)
