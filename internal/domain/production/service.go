package production

import "context"

// Evaluator turns filter criteria into a dashboard snapshot over a fixed dataset.
type Evaluator interface {
	// Evaluate filters the dataset and computes every snapshot section.
	// It fails with ErrInvalidRange when StartDate is after EndDate.
	Evaluate(criteria FilterCriteria) (Snapshot, error)

	// Options returns the distinct filter values and date bounds of the dataset
	Options() FilterOptions
}

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetDashboard applies defaults to the raw request and evaluates it
	GetDashboard(ctx context.Context, req DashboardRequest) (*DashboardResponse, error)

	// GetFilterOptions returns picker options and the default date range
	GetFilterOptions(ctx context.Context) (*FilterOptionsResponse, error)
}
