package types

import "strconv"

// TraceConfiguration tunes the exposure-notification layer. Values come
// from remote settings with local fallbacks.
type TraceConfiguration struct {
	ExposureCheckInterval int `json:"exposureCheckInterval"`
	StoreExposuresFor     int `json:"storeExposuresFor"`
	FileLimit             int `json:"fileLimit"`
	FileLimitiOS          int `json:"fileLimitiOS"`
}

// Settings is the merged application configuration: baked-in defaults
// overlaid with whatever the /settings/language endpoint supplies.
type Settings struct {
	IsolationDuration         int
	TestIsolationDuration     int
	IsolationEnd              int
	IsolationCompleteDuration int
	AgeLimit                  int
	TraceConfiguration        TraceConfiguration

	ExposedTodo         string
	TestingInstructions string
	HelplineNumber      string
	HelplineString      string
	NoticesWebPageURL   string
}

// RemoteSettings is the raw remote payload. Every field is a string: the
// backend serves copy and numbers alike as text, so numeric fields are
// coerced during merge and ignored when malformed or absent.
type RemoteSettings struct {
	IsolationDuration         string `json:"isolationDuration"`
	TestIsolationDuration     string `json:"testIsolationDuration"`
	IsolationEnd              string `json:"isolationEnd"`
	IsolationCompleteDuration string `json:"isolationCompleteDuration"`
	AgeLimit                  string `json:"ageLimit"`
	ExposureCheckInterval     string `json:"exposureCheckInterval"`
	StoreExposuresFor         string `json:"storeExposuresFor"`
	FileLimit                 string `json:"fileLimit"`
	FileLimitiOS              string `json:"fileLimitiOS"`

	ExposedTodo         string `json:"exposedTodo"`
	TestingInstructions string `json:"testingInstructions"`
	HelplineNumber      string `json:"helplineNumber"`
	HelplineString      string `json:"helplineString"`
	NoticesWebPageURL   string `json:"noticesWebPageURL"`
}

// DefaultSettings returns the baked-in configuration used until (and in
// place of) a successful remote load.
func DefaultSettings() Settings {
	return Settings{
		IsolationDuration:         14,
		TestIsolationDuration:     10,
		IsolationEnd:              15,
		IsolationCompleteDuration: 1,
		AgeLimit:                  16,
		TraceConfiguration: TraceConfiguration{
			ExposureCheckInterval: 120,
			StoreExposuresFor:     14,
			FileLimit:             1,
			FileLimitiOS:          3,
		},
	}
}

// Merge overlays remote values onto s field by field. Numeric fields only
// change when the remote string parses as a positive integer; text fields
// only change when non-empty. A nil remote leaves defaults untouched.
func (s Settings) Merge(remote *RemoteSettings) Settings {
	if remote == nil {
		return s
	}
	overlayInt(&s.IsolationDuration, remote.IsolationDuration)
	overlayInt(&s.TestIsolationDuration, remote.TestIsolationDuration)
	overlayInt(&s.IsolationEnd, remote.IsolationEnd)
	overlayInt(&s.IsolationCompleteDuration, remote.IsolationCompleteDuration)
	overlayInt(&s.AgeLimit, remote.AgeLimit)
	overlayInt(&s.TraceConfiguration.ExposureCheckInterval, remote.ExposureCheckInterval)
	overlayInt(&s.TraceConfiguration.StoreExposuresFor, remote.StoreExposuresFor)
	overlayInt(&s.TraceConfiguration.FileLimit, remote.FileLimit)
	overlayInt(&s.TraceConfiguration.FileLimitiOS, remote.FileLimitiOS)

	overlayString(&s.ExposedTodo, remote.ExposedTodo)
	overlayString(&s.TestingInstructions, remote.TestingInstructions)
	overlayString(&s.HelplineNumber, remote.HelplineNumber)
	overlayString(&s.HelplineString, remote.HelplineString)
	overlayString(&s.NoticesWebPageURL, remote.NoticesWebPageURL)
	return s
}

func overlayInt(dst *int, raw string) {
	if raw == "" {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return
	}
	*dst = n
}

func overlayString(dst *string, raw string) {
	if raw != "" {
		*dst = raw
	}
}
