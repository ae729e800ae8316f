package dashboard

import (
	"context"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/validator"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type DashboardServiceImpl struct {
	production.Evaluator
	printer *message.Printer
}

func NewDashboardService(evaluator production.Evaluator) production.DashboardService {
	return &DashboardServiceImpl{
		Evaluator: evaluator,
		printer:   message.NewPrinter(language.English),
	}
}

// GetDashboard fills omitted dates with the dataset bounds and evaluates the criteria
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, req production.DashboardRequest) (*production.DashboardResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	criteria := s.resolveCriteria(req)

	snapshot, err := s.Evaluate(criteria)
	if err != nil {
		return nil, err
	}

	resp := &production.DashboardResponse{
		Filters: production.AppliedFilters{
			StartDate: production.FormatDate(criteria.StartDate),
			EndDate:   production.FormatDate(criteria.EndDate),
			Factories: nonNil(criteria.Factories),
			Teams:     nonNil(criteria.Teams),
		},
		Snapshot: snapshot,
	}

	if kpis, ok := snapshot.KPIs.Get(); ok {
		resp.Cards = s.formatCards(kpis)
	}

	return resp, nil
}

// GetFilterOptions returns the dropdown values and the default date range
func (s *DashboardServiceImpl) GetFilterOptions(ctx context.Context) (*production.FilterOptionsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := s.Options()
	return &production.FilterOptionsResponse{
		Factories:   opts.Factories,
		Teams:       opts.Teams,
		MinDate:     production.FormatDate(opts.MinDate),
		MaxDate:     production.FormatDate(opts.MaxDate),
		RecordCount: opts.RecordCount,
	}, nil
}

// resolveCriteria assumes req has been validated
func (s *DashboardServiceImpl) resolveCriteria(req production.DashboardRequest) production.FilterCriteria {
	criteria := s.Options().DefaultCriteria()

	if start, ok := validator.IsValidDate(req.StartDate); ok {
		criteria.StartDate = start
	}
	if end, ok := validator.IsValidDate(req.EndDate); ok {
		criteria.EndDate = end
	}
	criteria.Factories = validator.SplitList(req.Factories...)
	criteria.Teams = validator.SplitList(req.Teams...)

	return criteria
}

func (s *DashboardServiceImpl) formatCards(kpis production.KPISummary) *production.KPICards {
	return &production.KPICards{
		TotalProduced:   s.printer.Sprintf("%d", kpis.TotalProduced),
		TotalDefects:    s.printer.Sprintf("%d", kpis.TotalDefects),
		MeanDefectRate:  s.printer.Sprintf("%.2f%%", kpis.MeanDefectRatePercent),
		ActiveOperators: s.printer.Sprintf("%d", kpis.ActiveOperatorCount),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
