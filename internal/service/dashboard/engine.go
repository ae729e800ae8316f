package dashboard

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
)

// Engine computes dashboard snapshots over a dataset it owns.
// The dataset is copied on construction and never written afterwards, so one
// Engine can serve concurrent Evaluate calls without locking.
type Engine struct {
	records []production.Record
	options production.FilterOptions
}

func NewEngine(records []production.Record) *Engine {
	owned := make([]production.Record, len(records))
	for i, r := range records {
		r.Date = production.CivilDate(r.Date)
		owned[i] = r
	}

	return &Engine{
		records: owned,
		options: collectOptions(owned),
	}
}

// Options returns the distinct factories and teams and the dataset date bounds
func (e *Engine) Options() production.FilterOptions {
	return production.FilterOptions{
		Factories:   slices.Clone(e.options.Factories),
		Teams:       slices.Clone(e.options.Teams),
		MinDate:     e.options.MinDate,
		MaxDate:     e.options.MaxDate,
		RecordCount: e.options.RecordCount,
	}
}

// Evaluate filters the dataset by criteria and aggregates the matching rows.
// Cost is one pass over the dataset plus work proportional to the filtered rows.
func (e *Engine) Evaluate(criteria production.FilterCriteria) (production.Snapshot, error) {
	start := production.CivilDate(criteria.StartDate)
	end := production.CivilDate(criteria.EndDate)
	if start.After(end) {
		return production.Snapshot{}, fmt.Errorf("%w: %s > %s",
			production.ErrInvalidRange, start.Format(production.DateLayout), end.Format(production.DateLayout))
	}

	view := e.filter(start, end, toSet(criteria.Factories), toSet(criteria.Teams))
	if len(view) == 0 {
		return production.EmptySnapshot(), nil
	}

	kpis := computeKPIs(view)

	return production.Snapshot{
		KPIs:        production.PopulatedSection(kpis),
		TimeSeries:  production.PopulatedSection(dailyTotals(view)),
		DefectSplit: production.PopulatedSection(splitDefects(kpis)),
		ByMachine:   production.PopulatedSection(sumByDimension(view, machineName)),
		ByOperator:  production.PopulatedSection(sumByDimension(view, operatorName)),
	}, nil
}

// filter keeps, in dataset order, the rows inside [start, end] whose factory and
// team belong to the given sets. A nil set places no restriction.
func (e *Engine) filter(start, end time.Time, factories, teams map[string]struct{}) []*production.Record {
	view := make([]*production.Record, 0)
	for i := range e.records {
		r := &e.records[i]
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		if !inSet(factories, r.Factory) || !inSet(teams, r.Team) {
			continue
		}
		view = append(view, r)
	}
	return view
}

func computeKPIs(view []*production.Record) production.KPISummary {
	var kpis production.KPISummary
	operators := make(map[string]struct{})
	for _, r := range view {
		kpis.TotalProduced += r.QuantityProduced
		kpis.TotalDefects += r.QuantityDefects
		operators[r.OperatorID] = struct{}{}
	}

	// Ratio of sums: heavy rows weigh more than in a per-row average.
	if kpis.TotalProduced > 0 {
		kpis.MeanDefectRatePercent = float64(kpis.TotalDefects) / float64(kpis.TotalProduced) * 100
	}
	kpis.ActiveOperatorCount = len(operators)
	return kpis
}

func dailyTotals(view []*production.Record) []production.DailyTotal {
	index := make(map[time.Time]int)
	totals := make([]production.DailyTotal, 0)
	for _, r := range view {
		i, ok := index[r.Date]
		if !ok {
			i = len(totals)
			index[r.Date] = i
			totals = append(totals, production.DailyTotal{Date: r.Date})
		}
		totals[i].Produced += r.QuantityProduced
		totals[i].Defects += r.QuantityDefects
	}

	slices.SortFunc(totals, func(a, b production.DailyTotal) int {
		return a.Date.Compare(b.Date)
	})
	return totals
}

// splitDefects is not clamped: defects above production yield a negative OKCount.
func splitDefects(kpis production.KPISummary) production.DefectSplit {
	return production.DefectSplit{
		OKCount:     kpis.TotalProduced - kpis.TotalDefects,
		DefectCount: kpis.TotalDefects,
	}
}

func machineName(r *production.Record) string  { return r.MachineName }
func operatorName(r *production.Record) string { return r.OperatorName }

// sumByDimension totals production per key, highest first.
// Equal totals keep the order in which their key first appeared in the view.
func sumByDimension(view []*production.Record, key func(*production.Record) string) []production.DimensionTotal {
	index := make(map[string]int)
	totals := make([]production.DimensionTotal, 0)
	for _, r := range view {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(totals)
			index[k] = i
			totals = append(totals, production.DimensionTotal{Name: k})
		}
		totals[i].Produced += r.QuantityProduced
	}

	slices.SortStableFunc(totals, func(a, b production.DimensionTotal) int {
		return cmp.Compare(b.Produced, a.Produced)
	})
	return totals
}

func collectOptions(records []production.Record) production.FilterOptions {
	opts := production.FilterOptions{
		Factories:   make([]string, 0),
		Teams:       make([]string, 0),
		RecordCount: len(records),
	}
	seenFactories := make(map[string]struct{})
	seenTeams := make(map[string]struct{})

	for i, r := range records {
		if i == 0 || r.Date.Before(opts.MinDate) {
			opts.MinDate = r.Date
		}
		if i == 0 || r.Date.After(opts.MaxDate) {
			opts.MaxDate = r.Date
		}
		if _, ok := seenFactories[r.Factory]; !ok {
			seenFactories[r.Factory] = struct{}{}
			opts.Factories = append(opts.Factories, r.Factory)
		}
		if _, ok := seenTeams[r.Team]; !ok {
			seenTeams[r.Team] = struct{}{}
			opts.Teams = append(opts.Teams, r.Team)
		}
	}
	return opts
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}
