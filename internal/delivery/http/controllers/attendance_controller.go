package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"communityevents/internal/delivery/http/helpers"
	"communityevents/internal/domain"
)

// UpdateAttendanceRequest is the request body for PUT /events/{id}/attendance when no status query is given.
type UpdateAttendanceRequest struct {
	Status string `json:"status" validate:"required"`
}

// CheckInRequest is the request body for POST /events/{id}/checkin.
type CheckInRequest struct {
	Token string `json:"token" validate:"required"`
}

// ParticipantSuccessResponse is the success response envelope for endpoints returning a participant.
type ParticipantSuccessResponse struct {
	Data  *domain.Participant `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// TicketSuccessResponse is the success response envelope for GET /events/{id}/my-ticket.
type TicketSuccessResponse struct {
	Data  *domain.Ticket    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AttendanceListSuccessResponse is the success response envelope for GET /events/{id}/attendance-list.
type AttendanceListSuccessResponse struct {
	Data  []*domain.AttendanceItem `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

type AttendanceController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewAttendanceController(logger *slog.Logger, svc domain.AttendanceService) *AttendanceController {
	return &AttendanceController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Registers the caller as CONFIRMED and issues a check-in token. The event must be published.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 201 {object} controllers.ParticipantSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered, full or not open)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/attendance [post]
func (c *AttendanceController) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	participant, err := c.Service.Register(r.Context(), userID, id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, participant)
}

// UpdateStatus godoc
// @Summary Change my attendance status
// @Description Sets the caller's status to CONFIRMED or CANCELLED. The status comes from the "status" query parameter or the JSON body. ATTENDED is only set by check-in.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param status query string false "New status"
// @Param body body UpdateAttendanceRequest false "New status when no query parameter is given"
// @Success 200 {object} controllers.ParticipantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already checked in)"
// @Router /events/{id}/attendance [put]
func (c *AttendanceController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		var req UpdateAttendanceRequest
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
		status = req.Status
	}
	participant, err := c.Service.UpdateStatus(r.Context(), userID, id, domain.AttendanceStatus(strings.ToUpper(strings.TrimSpace(status))))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// CancelAttendance godoc
// @Summary Cancel my registration
// @Description Removes the caller's registration for the event.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} helpers.StatusSuccessResponse "status: cancelled"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/attendance [delete]
func (c *AttendanceController) CancelAttendance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Cancel(r.Context(), userID, id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.StatusResponse{Status: "cancelled"})
}

// GetTicket godoc
// @Summary Get my ticket
// @Description Returns the caller's ticket with the check-in token to render as a QR code.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/my-ticket [get]
func (c *AttendanceController) GetTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	ticket, err := c.Service.GetTicket(r.Context(), userID, id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// CheckIn godoc
// @Summary Check in an attendee
// @Description Marks the ticket holder ATTENDED. Organizer only. A token already used answers 409 with the original check-in time.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param body body CheckInRequest true "Scanned token"
// @Success 200 {object} controllers.ParticipantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown token)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already checked in)"
// @Router /events/{id}/checkin [post]
func (c *AttendanceController) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	participant, err := c.Service.CheckIn(r.Context(), userID, id, req.Token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// AttendanceList godoc
// @Summary List attendees
// @Description Every participant of the event with check-in state. Organizer only.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AttendanceListSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/attendance-list [get]
func (c *AttendanceController) AttendanceList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	items, err := c.Service.AttendanceList(r.Context(), userID, id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}
