package analytics_api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-rsvp/internal/analytics"
	"ms-rsvp/internal/logger"
	"ms-rsvp/internal/models"
	"ms-rsvp/internal/utils"
)

// Handler handles analytics HTTP endpoints
type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

// RegisterRoutes registers the analytics routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/attendees", h.GetAttendees)
}

type attendeesResponse struct {
	Success   bool                  `json:"success"`
	Attendees []models.Ticket       `json:"attendees"`
	Stats     *models.AttendeeStats `json:"stats"`
	Revenue   int64                 `json:"revenue"`
}

// GetAttendees returns every submitted ticket with the aggregate statistics
// and the revenue they represent.
func (h *Handler) GetAttendees(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.AttendeeReport(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("Error fetching attendees: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch attendees", "internal server error")
		return
	}

	utils.WriteJSON(w, http.StatusOK, attendeesResponse{
		Success:   true,
		Attendees: report.Attendees,
		Stats:     report.Stats,
		Revenue:   analytics.Revenue(report.Stats),
	})
}
