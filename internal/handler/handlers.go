package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/application/service"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/traveldesk/travel-approval/internal/report"
	"go.uber.org/zap"
)

const queryDateLayout = "2006-01-02"

// Handlers contains all HTTP request handlers
type Handlers struct {
	requests service.TravelRequestService
	exporter *report.Exporter
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(requests service.TravelRequestService, exporter *report.Exporter, logger *zap.Logger) *Handlers {
	return &Handlers{
		requests: requests,
		exporter: exporter,
		logger:   logger,
	}
}

// CreateTravelRequestRequest is the JSON body for POST /travel-requests
type CreateTravelRequestRequest struct {
	Destination   string `json:"destination" binding:"required"`
	DepartureDate string `json:"departure_date" binding:"required"`
	ReturnDate    string `json:"return_date" binding:"required"`
}

// UpdateStatusRequest is the JSON body for PUT /travel-requests/:id
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// InitiateCancellationRequest is the JSON body for the cancellation
// initiation endpoint
type InitiateCancellationRequest struct {
	CancellationReason string `json:"cancellation_reason" binding:"required"`
}

// CancellationDecisionRequest is the JSON body for approve/reject
// cancellation endpoints
type CancellationDecisionRequest struct {
	Token           string `json:"token" binding:"required"`
	RejectionReason string `json:"rejection_reason"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ListTravelRequests handles GET /travel-requests
func (h *Handlers) ListTravelRequests(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	page, err := h.requests.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: page})
}

// CreateTravelRequest handles POST /travel-requests
func (h *Handlers) CreateTravelRequest(c *gin.Context) {
	var req CreateTravelRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	created, err := h.requests.Create(c.Request.Context(), currentUser(c),
		req.Destination, req.DepartureDate, req.ReturnDate)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// GetTravelRequest handles GET /travel-requests/:id
func (h *Handlers) GetTravelRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	request, err := h.requests.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: request})
}

// UpdateTravelRequestStatus handles PUT /travel-requests/:id
func (h *Handlers) UpdateTravelRequestStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	updated, err := h.requests.UpdateStatus(c.Request.Context(), currentUser(c), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// InitiateCancellation handles POST /travel-requests/:id/initiate-cancellation
func (h *Handlers) InitiateCancellation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req InitiateCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result, err := h.requests.InitiateCancellation(c.Request.Context(), currentUser(c), id, req.CancellationReason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ConfirmCancellation handles the signed confirmation link:
// GET /travel-requests/:id/confirm-cancellation?token=...
func (h *Handlers) ConfirmCancellation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing token"})
		return
	}

	message, err := h.requests.ConfirmCancellation(c.Request.Context(), currentUser(c), id, token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"message": message}})
}

// ListPendingCancellations handles GET /admin/travel-requests/pending-cancellations
func (h *Handlers) ListPendingCancellations(c *gin.Context) {
	pending, err := h.requests.ListPendingCancellations(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: pending})
}

// ReviewCancellation handles the signed review link:
// GET /admin/travel-requests/:id/cancellation/review?token=...
func (h *Handlers) ReviewCancellation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	review, err := h.requests.ReviewCancellation(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: review})
}

// ApproveCancellation handles POST /admin/travel-requests/:id/approve-cancellation
func (h *Handlers) ApproveCancellation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req CancellationDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	updated, err := h.requests.ApproveCancellation(c.Request.Context(), currentUser(c), id, req.Token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// RejectCancellation handles POST /admin/travel-requests/:id/reject-cancellation
func (h *Handlers) RejectCancellation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req CancellationDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	updated, err := h.requests.RejectCancellation(c.Request.Context(), currentUser(c), id, req.Token, req.RejectionReason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// ExportTravelRequests handles GET /admin/travel-requests/export. Streams
// the filtered listing as an xlsx workbook.
func (h *Handlers) ExportTravelRequests(c *gin.Context) {
	user := currentUser(c)
	if !user.IsAdmin() {
		h.writeError(c, &service.ForbiddenError{Action: "export travel requests"})
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	// Walk all pages of the filtered listing
	filter.Page = 1
	filter.PerPage = 100
	var all []*entity.TravelRequest
	for {
		page, err := h.requests.List(c.Request.Context(), user, filter)
		if err != nil {
			h.writeError(c, err)
			return
		}
		all = append(all, page.Items...)
		if filter.Page*filter.PerPage >= page.Total {
			break
		}
		filter.Page++
	}

	workbook, err := h.exporter.Export(all)
	if err != nil {
		h.logger.Error("Failed to build export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("travel-requests-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream export", zap.Error(err))
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func parseFilter(c *gin.Context) (port.Filter, error) {
	filter := port.Filter{
		Status:      c.Query("status"),
		Destination: c.Query("destination"),
	}

	var err error
	if filter.Page, err = queryInt(c, "page"); err != nil {
		return filter, err
	}
	if filter.PerPage, err = queryInt(c, "per_page"); err != nil {
		return filter, err
	}

	dates := []struct {
		name string
		dest **time.Time
	}{
		{"created_from", &filter.CreatedFrom},
		{"created_to", &filter.CreatedTo},
		{"departure_from", &filter.DepartureFrom},
		{"departure_to", &filter.DepartureTo},
	}
	for _, d := range dates {
		raw := c.Query(d.name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid %s: must be YYYY-MM-DD", d.name)
		}
		*d.dest = &parsed
	}

	return filter, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", name)
	}
	return value, nil
}
