package ticket_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"ms-rsvp/internal/logger"
	"ms-rsvp/internal/models"
	"ms-rsvp/internal/tickets/qr"
	tickets "ms-rsvp/internal/tickets/service"
	"ms-rsvp/internal/utils"
)

type Handler struct {
	TicketService *tickets.TicketService
	QRGenerator   *qr.Generator
	Logger        *logger.Logger
	validate      *validator.Validate
}

// NewHandler creates a new Handler instance
func NewHandler(ticketService *tickets.TicketService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		TicketService: ticketService,
		QRGenerator:   qr.NewGenerator(),
		Logger:        log,
		validate:      newValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tickets", func(r chi.Router) {
		r.Post("/", h.CreateTickets)
		r.Get("/", h.ListTickets)
		r.Get("/count", h.CountTickets)
		r.Get("/{code}", h.GetTicket)
		r.Patch("/{code}", h.UpdatePreferences)
		r.Get("/{code}/qr", h.GetTicketQR)
	})
	r.Post("/request-ticket", h.RequestTicket)
}

type ticketSummary struct {
	Code  string          `json:"code"`
	Type  models.Category `json:"type"`
	Price int64           `json:"price"`
}

type ticketDetail struct {
	Code         string               `json:"code"`
	Type         models.Category      `json:"type"`
	Price        int64                `json:"price"`
	DietaryNeeds []models.DietaryNeed `json:"dietary_needs"`
	MealChoice   *models.MealChoice   `json:"meal_choice"`
	SubmittedAt  *time.Time           `json:"submitted_at"`
}

type createTicketsResponse struct {
	Success bool            `json:"success"`
	Tickets []models.Ticket `json:"tickets"`
	Message string          `json:"message"`
}

type listTicketsResponse struct {
	Success bool            `json:"success"`
	Tickets []models.Ticket `json:"tickets"`
	Count   int             `json:"count"`
}

type countResponse struct {
	Success bool `json:"success"`
	models.TicketCounts
}

type requestTicketResponse struct {
	Success bool          `json:"success"`
	Ticket  ticketSummary `json:"ticket"`
	Message string        `json:"message"`
}

type getTicketResponse struct {
	Success bool         `json:"success"`
	Ticket  ticketDetail `json:"ticket"`
}

// CreateTickets handles POST /tickets: {"type": "regular|vip", "quantity": 1..100}
func (h *Handler) CreateTickets(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketsRequest
	if !h.decode(w, r, &req) {
		return
	}

	category := models.Category(req.Type)
	created, err := h.TicketService.CreateTickets(r.Context(), category, req.Quantity)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create tickets")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, createTicketsResponse{
		Success: true,
		Tickets: created,
		Message: fmt.Sprintf("Created %d %s ticket(s)", len(created), category),
	})
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	all, err := h.TicketService.ListTickets(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch tickets")
		return
	}

	utils.WriteJSON(w, http.StatusOK, listTicketsResponse{
		Success: true,
		Tickets: all,
		Count:   len(all),
	})
}

func (h *Handler) CountTickets(w http.ResponseWriter, r *http.Request) {
	counts, err := h.TicketService.CountTickets(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Error retrieving ticket count")
		return
	}

	utils.WriteJSON(w, http.StatusOK, countResponse{Success: true, TicketCounts: counts})
}

// RequestTicket handles POST /request-ticket. The ticket is created and its
// preferences are recorded in one call.
func (h *Handler) RequestTicket(w http.ResponseWriter, r *http.Request) {
	var req RequestTicketRequest
	if !h.decode(w, r, &req) {
		return
	}

	ticket, err := h.TicketService.RequestTicket(r.Context(), models.Category(req.Type))
	if err != nil {
		h.writeServiceError(w, err, "Failed to create ticket")
		return
	}

	ok, err := h.TicketService.SubmitInitialPreferences(r.Context(), ticket.Code, req.toPreferences())
	if err != nil {
		h.writeServiceError(w, err, "Failed to submit preferences")
		return
	}
	if !ok {
		h.Logger.Error("TICKET", fmt.Sprintf("Preferences for new ticket %s were not applied", ticket.Code))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to submit preferences", "preferences not applied")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, requestTicketResponse{
		Success: true,
		Ticket: ticketSummary{
			Code:  ticket.Code,
			Type:  ticket.Category,
			Price: ticket.Price,
		},
		Message: "Ticket created successfully",
	})
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	code, ok := h.codeParam(w, r)
	if !ok {
		return
	}

	ticket, err := h.TicketService.GetTicket(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, err, "Failed to validate ticket")
		return
	}

	utils.WriteJSON(w, http.StatusOK, getTicketResponse{
		Success: true,
		Ticket: ticketDetail{
			Code:         ticket.Code,
			Type:         ticket.Category,
			Price:        ticket.Price,
			DietaryNeeds: ticket.DietaryNeeds,
			MealChoice:   ticket.MealChoice,
			SubmittedAt:  ticket.SubmittedAt,
		},
	})
}

// UpdatePreferences handles PATCH /tickets/{code}. Preferences are replaced
// whether or not they were submitted before.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	code, ok := h.codeParam(w, r)
	if !ok {
		return
	}

	var req PreferencesRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.TicketService.UpdatePreferences(r.Context(), code, req.toPreferences())
	if err != nil {
		h.writeServiceError(w, err, "Failed to submit ticket")
		return
	}
	if !updated {
		utils.WriteError(w, http.StatusNotFound, "Ticket not found", models.ErrTicketNotFound.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Preferences updated successfully"))
}

// GetTicketQR renders the ticket code as a PNG QR image.
func (h *Handler) GetTicketQR(w http.ResponseWriter, r *http.Request) {
	code, ok := h.codeParam(w, r)
	if !ok {
		return
	}

	ticket, err := h.TicketService.GetTicket(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, err, "Failed to generate QR code")
		return
	}

	png, err := h.QRGenerator.PNG(ticket.Code)
	if err != nil {
		h.writeServiceError(w, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// codeParam upper-cases the {code} URL parameter and checks its format.
func (h *Handler) codeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if err := h.validate.Var(code, "ticketcode"); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid ticket code format", models.ErrInvalidCode.Error(), fieldErrors(err)...)
		return "", false
	}
	return code, true
}

// decode reads a JSON body into dst and validates it, writing a 400 on
// failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request data", "Invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request data", "validation failed", fieldErrors(err)...)
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, models.ErrTicketNotFound):
		utils.WriteError(w, http.StatusNotFound, "Ticket not found", models.ErrTicketNotFound.Error())
	case errors.Is(err, models.ErrInvalidCode):
		utils.WriteError(w, http.StatusBadRequest, "Invalid ticket code format", err.Error())
	case models.IsValidation(err):
		utils.WriteError(w, http.StatusBadRequest, "Invalid request data", err.Error())
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", message, err))
		utils.WriteError(w, http.StatusInternalServerError, message, "internal server error")
	}
}
