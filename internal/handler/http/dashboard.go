package http

import (
	"net/http"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetDashboard returns the aggregate snapshot for the requested filters
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// GetFilterOptions returns the factories, teams and date bounds of the dataset
	GetFilterOptions(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService production.DashboardService
}

func NewDashboardHandler(dashboardService production.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetDashboard handles GET /dashboard
// Query: start_date, end_date (YYYY-MM-DD), factories, teams (comma separated or repeated)
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := production.DashboardRequest{
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		Factories: query["factories"],
		Teams:     query["teams"],
	}

	result, err := h.dashboardService.GetDashboard(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetFilterOptions handles GET /dashboard/filters
func (h *dashboardHandlerImpl) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetFilterOptions(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
