package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 14, s.IsolationDuration)
	assert.Equal(t, 10, s.TestIsolationDuration)
	assert.Equal(t, 16, s.AgeLimit)
	assert.Equal(t, 120, s.TraceConfiguration.ExposureCheckInterval)
}

func TestSettingsMerge(t *testing.T) {
	s := DefaultSettings().Merge(&RemoteSettings{
		IsolationDuration:     "10",
		ExposureCheckInterval: "60",
		HelplineNumber:        "0800 000 000",
	})
	assert.Equal(t, 10, s.IsolationDuration)
	assert.Equal(t, 60, s.TraceConfiguration.ExposureCheckInterval)
	assert.Equal(t, "0800 000 000", s.HelplineNumber)
	// Untouched fields keep their defaults.
	assert.Equal(t, 10, s.TestIsolationDuration)
	assert.Equal(t, 3, s.TraceConfiguration.FileLimitiOS)
}

func TestSettingsMerge_IgnoresMalformedNumbers(t *testing.T) {
	s := DefaultSettings().Merge(&RemoteSettings{
		IsolationDuration: "soon",
		FileLimit:         "-2",
	})
	assert.Equal(t, 14, s.IsolationDuration)
	assert.Equal(t, 1, s.TraceConfiguration.FileLimit)
}

func TestSettingsMerge_NilRemote(t *testing.T) {
	assert.Equal(t, DefaultSettings(), DefaultSettings().Merge(nil))
}

func TestInstallCount_TupleDecoding(t *testing.T) {
	raw := `{"installs":[["2021-02-01T00:00:00Z",1000],["2021-02-02T00:00:00Z",1500]]}`

	var sd StatsData
	require.NoError(t, json.Unmarshal([]byte(raw), &sd))
	require.Len(t, sd.Installs, 2)
	assert.Equal(t, time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), sd.Installs[0].Date)
	assert.Equal(t, int64(1500), sd.Installs[1].Count)
}

func TestInstallCount_RejectsMalformedTuple(t *testing.T) {
	var ic InstallCount
	assert.Error(t, json.Unmarshal([]byte(`["2021-02-01T00:00:00Z"]`), &ic))
	assert.Error(t, json.Unmarshal([]byte(`{"date":"x"}`), &ic))
}
