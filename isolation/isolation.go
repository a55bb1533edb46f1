// Package isolation derives user-facing self-isolation status from the
// close-contact records supplied by the exposure-notification layer. All
// functions are pure: callers pass the current time explicitly and no state
// is read or written.
package isolation

import "time"

// DateFormat is the default layout for formatted isolation end dates.
const DateFormat = "2 January 2006"

// CloseContact is an exposure event reported by the exposure-notification
// layer. Only the date fields are interpreted here; the risk metadata is
// carried opaquely for callers that display it.
type CloseContact struct {
	ExposureDate          time.Time `json:"exposureDate"`
	ExposureAlertDate     time.Time `json:"exposureAlertDate"`
	MaxRiskScore          int       `json:"maxRiskScore"`
	MatchedKeyCount       int       `json:"matchedKeyCount"`
	AttenuationDurations  []int     `json:"attenuationDurations"`
	RiskScoreSumFullRange int       `json:"riskScoreSumFullRange"`
}

// EndDate is the end of an isolation window in both raw and display form.
type EndDate struct {
	Raw       time.Time
	Formatted string
}

// ExposureDate returns the exposure date of the first contact. The contacts
// list is ordered by the exposure-notification layer with the authoritative
// entry first; this function never re-sorts or scans for extremes. The
// second return value is false when the list is empty.
func ExposureDate(contacts []CloseContact) (time.Time, bool) {
	if len(contacts) == 0 {
		return time.Time{}, false
	}
	return contacts[0].ExposureDate, true
}

// RemainingDays returns how many days of self-isolation remain, never
// negative. With no known exposure it returns 0.
func RemainingDays(now time.Time, isolationDuration int, contacts []CloseContact) int {
	exposure, ok := ExposureDate(contacts)
	if !ok {
		return 0
	}
	remaining := isolationDuration - calendarDaysBetween(exposure, now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsolationEndDate returns the date isolation ends, exposure date plus the
// configured duration, formatted with the given layout (DateFormat when
// layout is empty). It returns nil when no exposure date exists.
func IsolationEndDate(isolationDuration int, contacts []CloseContact, layout string) *EndDate {
	exposure, ok := ExposureDate(contacts)
	if !ok {
		return nil
	}
	if layout == "" {
		layout = DateFormat
	}
	end := exposure.AddDate(0, 0, isolationDuration)
	return &EndDate{Raw: end, Formatted: end.Format(layout)}
}

// HasCurrentExposure reports whether the user is inside an active isolation
// window. The boundary is exclusive: an exposure exactly isolationDuration
// calendar days ago is no longer current. Every screen that shows isolation
// state must go through this predicate rather than repeating the
// arithmetic.
func HasCurrentExposure(now time.Time, isolationDuration int, contacts []CloseContact) bool {
	exposure, ok := ExposureDate(contacts)
	if !ok {
		return false
	}
	return calendarDaysBetween(exposure, now) < isolationDuration
}

// calendarDaysBetween counts midnight boundaries between a and b. Working
// on civil dates rather than elapsed time keeps the count stable across
// daylight-saving transitions.
func calendarDaysBetween(a, b time.Time) int {
	return civilDays(b) - civilDays(a)
}

// civilDays converts a civil date to a serial day number (days since
// 1970-01-01 in the proleptic Gregorian calendar).
func civilDays(t time.Time) int {
	y, m, d := t.Date()
	mo := int(m)
	if mo <= 2 {
		y--
	}
	era := y / 400
	if y < 0 {
		era = (y - 399) / 400
	}
	yoe := y - era*400
	var doy int
	if mo > 2 {
		doy = (153*(mo-3)+2)/5 + d - 1
	} else {
		doy = (153*(mo+9)+2)/5 + d - 1
	}
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}
