package production

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/validator"
)

// ========== FILTERS ==========

// FilterCriteria selects the rows a snapshot is computed over.
// Both date bounds are inclusive. Empty Factories or Teams means no restriction.
type FilterCriteria struct {
	StartDate time.Time
	EndDate   time.Time
	Factories []string
	Teams     []string
}

// DashboardRequest is the raw filter input as received from the presentation layer
type DashboardRequest struct {
	StartDate string   `json:"start_date"` // Format: "YYYY-MM-DD", default: dataset min
	EndDate   string   `json:"end_date"`   // Format: "YYYY-MM-DD", default: dataset max
	Factories []string `json:"factories"`
	Teams     []string `json:"teams"`
}

func (r *DashboardRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsEmpty(r.StartDate) {
		if _, ok := validator.IsValidDate(r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if !validator.IsEmpty(r.EndDate) {
		if _, ok := validator.IsValidDate(r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FilterOptions describes the values present in the dataset
type FilterOptions struct {
	Factories   []string // first-seen order
	Teams       []string // first-seen order
	MinDate     time.Time
	MaxDate     time.Time
	RecordCount int
}

// DefaultCriteria covers the full date range with no factory or team restriction
func (o FilterOptions) DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		StartDate: o.MinDate,
		EndDate:   o.MaxDate,
	}
}

// ========== SNAPSHOT ==========

// SectionState tags a snapshot section as carrying data or as the "no data" marker
type SectionState string

const (
	SectionEmpty     SectionState = "empty"
	SectionPopulated SectionState = "populated"
)

// Section is a tagged snapshot field. Data is only set when State is populated,
// so "no matching records" never looks like a zero-valued result.
type Section[T any] struct {
	State SectionState `json:"state"`
	Data  *T           `json:"data,omitempty"`
}

func EmptySection[T any]() Section[T] {
	return Section[T]{State: SectionEmpty}
}

func PopulatedSection[T any](data T) Section[T] {
	return Section[T]{State: SectionPopulated, Data: &data}
}

// IsEmpty reports whether the section is the "no data" marker
func (s Section[T]) IsEmpty() bool {
	return s.State != SectionPopulated || s.Data == nil
}

// Get returns the payload and true, or the zero value and false for an empty section
func (s Section[T]) Get() (T, bool) {
	if s.IsEmpty() {
		var zero T
		return zero, false
	}
	return *s.Data, true
}

// KPISummary holds the scalar figures of a filtered view.
//
// MeanDefectRatePercent is a ratio of sums (100 * TotalDefects / TotalProduced),
// not an average of per-row rates, and is 0 when nothing was produced.
type KPISummary struct {
	TotalProduced         int64   `json:"total_produced"`
	TotalDefects          int64   `json:"total_defects"`
	MeanDefectRatePercent float64 `json:"mean_defect_rate_percent"`
	ActiveOperatorCount   int     `json:"active_operator_count"`
}

// DailyTotal is one point of the production time series
type DailyTotal struct {
	Date     time.Time
	Produced int64
	Defects  int64
}

func (d DailyTotal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date     string `json:"date"`
		Produced int64  `json:"produced"`
		Defects  int64  `json:"defects"`
	}{
		Date:     FormatDate(d.Date),
		Produced: d.Produced,
		Defects:  d.Defects,
	})
}

// DefectSplit partitions total production into good and defective pieces.
// OKCount goes negative when source rows report more defects than production.
type DefectSplit struct {
	OKCount     int64 `json:"ok_count"`
	DefectCount int64 `json:"defect_count"`
}

// DimensionTotal is the production sum of one machine or operator
type DimensionTotal struct {
	Name     string `json:"name"`
	Produced int64  `json:"produced"`
}

// Snapshot is the full result of evaluating one set of filter criteria
type Snapshot struct {
	KPIs        Section[KPISummary]       `json:"kpis"`
	TimeSeries  Section[[]DailyTotal]     `json:"time_series"`
	DefectSplit Section[DefectSplit]      `json:"defect_split"`
	ByMachine   Section[[]DimensionTotal] `json:"by_machine"`
	ByOperator  Section[[]DimensionTotal] `json:"by_operator"`
}

// EmptySnapshot marks every section as "no data"
func EmptySnapshot() Snapshot {
	return Snapshot{
		KPIs:        EmptySection[KPISummary](),
		TimeSeries:  EmptySection[[]DailyTotal](),
		DefectSplit: EmptySection[DefectSplit](),
		ByMachine:   EmptySection[[]DimensionTotal](),
		ByOperator:  EmptySection[[]DimensionTotal](),
	}
}

// IsEmpty reports whether no records matched the criteria
func (s Snapshot) IsEmpty() bool {
	return s.KPIs.IsEmpty()
}

// ========== RESPONSES ==========

// AppliedFilters echoes the criteria after defaults were filled in
type AppliedFilters struct {
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Factories []string `json:"factories"`
	Teams     []string `json:"teams"`
}

// KPICards carries the KPI figures pre-formatted for display cards
type KPICards struct {
	TotalProduced   string `json:"total_produced"`   // e.g. "12,345"
	TotalDefects    string `json:"total_defects"`    // e.g. "678"
	MeanDefectRate  string `json:"mean_defect_rate"` // e.g. "5.49%"
	ActiveOperators string `json:"active_operators"`
}

// DashboardResponse is the payload of the dashboard endpoint
type DashboardResponse struct {
	Filters  AppliedFilters `json:"filters"`
	Snapshot Snapshot       `json:"snapshot"`
	Cards    *KPICards      `json:"cards,omitempty"` // nil when the snapshot is empty
}

// FilterOptionsResponse feeds the date picker and the factory/team dropdowns
type FilterOptionsResponse struct {
	Factories   []string `json:"factories"`
	Teams       []string `json:"teams"`
	MinDate     string   `json:"min_date"`
	MaxDate     string   `json:"max_date"`
	RecordCount int      `json:"record_count"`
}
