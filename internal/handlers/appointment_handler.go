package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/dto"
	"github.com/kiryafn/vet-clinic-crm/internal/httperr"
	"github.com/kiryafn/vet-clinic-crm/internal/httpresp"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
	"github.com/kiryafn/vet-clinic-crm/internal/timezone"
	ucAppointment "github.com/kiryafn/vet-clinic-crm/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	policy domain.SlotPolicy

	book          *ucAppointment.BookAppointment
	get           *ucAppointment.GetAppointment
	update        *ucAppointment.UpdateAppointment
	cancel        *ucAppointment.CancelAppointment
	complete      *ucAppointment.CompleteAppointment
	listByDate    *ucAppointment.ListAppointmentsByDate
	listByMonth   *ucAppointment.ListAppointmentsByMonth
	listForClient *ucAppointment.ListClientAppointments
}

func NewAppointmentHandler(
	policy domain.SlotPolicy,
	book *ucAppointment.BookAppointment,
	get *ucAppointment.GetAppointment,
	update *ucAppointment.UpdateAppointment,
	cancel *ucAppointment.CancelAppointment,
	complete *ucAppointment.CompleteAppointment,
	listByDate *ucAppointment.ListAppointmentsByDate,
	listByMonth *ucAppointment.ListAppointmentsByMonth,
	listForClient *ucAppointment.ListClientAppointments,
) *AppointmentHandler {
	return &AppointmentHandler{
		policy:        policy,
		book:          book,
		get:           get,
		update:        update,
		cancel:        cancel,
		complete:      complete,
		listByDate:    listByDate,
		listByMonth:   listByMonth,
		listForClient: listForClient,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookAppointmentRequest struct {
	DoctorID uint   `json:"doctor_id" binding:"required"`
	ClientID uint   `json:"client_id" binding:"required"`
	PetID    uint   `json:"pet_id" binding:"required"`
	DateTime string `json:"date_time" binding:"required"`
	Reason   string `json:"reason"`
}

type UpdateAppointmentRequest struct {
	DoctorID    *uint   `json:"doctor_id"`
	Reason      *string `json:"reason"`
	DoctorNotes *string `json:"doctor_notes"`
}

func (h *AppointmentHandler) respond(c *gin.Context, status int, ap *models.Appointment) {
	c.JSON(status, dto.FromAppointment(ap, h.policy.Duration))
}

func (h *AppointmentHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	httperr.FromError(c, err)
}

// ======================================================
// BOOK
// ======================================================

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	start, err := timezone.ParseInstant(req.DateTime)
	if err != nil {
		httperr.FromError(c, domain.ErrInvalidDateTime)
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), ucAppointment.BookAppointmentInput{
		DoctorID: req.DoctorID,
		ClientID: req.ClientID,
		PetID:    req.PetID,
		DateTime: start,
		Reason:   strings.TrimSpace(req.Reason),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusCreated, ap)
}

// ======================================================
// GET / PATCH
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusOK, ap)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), ucAppointment.UpdateAppointmentInput{
		AppointmentID: id,
		DoctorID:      req.DoctorID,
		Patch: domain.Patch{
			Reason:      req.Reason,
			DoctorNotes: req.DoctorNotes,
		},
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusOK, ap)
}

// ======================================================
// CANCEL / COMPLETE
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusOK, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusOK, ap)
}

// ======================================================
// LIST
// ======================================================

// ListByDoctor serves ?date=YYYY-MM-DD or ?year=&month=.
func (h *AppointmentHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if c.Query("month") != "" {
		h.listMonth(c, doctorID)
		return
	}

	date, err := timezone.ParseDate(c.Query("date"))
	if err != nil {
		httperr.FromError(c, domain.ErrInvalidDate)
		return
	}

	out, err := h.listByDate.Execute(c.Request.Context(), doctorID, date)
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) listMonth(c *gin.Context, doctorID uint) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	out, err := h.listByMonth.Execute(c.Request.Context(), doctorID, year, month)
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) ListByClient(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.listForClient.Execute(c.Request.Context(), clientID)
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.List(c, out)
}
