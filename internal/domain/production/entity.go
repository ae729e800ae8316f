package production

import "time"

// DateLayout is the calendar date format used on the wire and in source files.
const DateLayout = "2006-01-02"

// Record is one row of the production dataset.
type Record struct {
	Date             time.Time
	Factory          string
	Team             string
	MachineName      string
	OperatorID       string
	OperatorName     string
	QuantityProduced int64
	QuantityDefects  int64
}

// HasDefectAnomaly reports whether the row claims more defects than it produced.
// Such rows are passed through untouched and surface as a negative ok count.
func (r Record) HasDefectAnomaly() bool {
	return r.QuantityDefects > r.QuantityProduced
}

// CivilDate strips the time-of-day and location from t, keeping its calendar date.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD, or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
