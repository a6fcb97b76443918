package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/httperr"
	"github.com/kiryafn/vet-clinic-crm/internal/httpresp"
	"github.com/kiryafn/vet-clinic-crm/internal/timezone"
	ucAppointment "github.com/kiryafn/vet-clinic-crm/internal/usecase/appointment"
)

type SlotsHandler struct {
	engine *ucAppointment.SlotEngine
}

func NewSlotsHandler(engine *ucAppointment.SlotEngine) *SlotsHandler {
	return &SlotsHandler{engine: engine}
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *SlotsHandler) Availability(c *gin.Context) {
	doctorID, ok := pathID(c, "id")
	if !ok {
		return
	}

	at, err := timezone.ParseInstant(c.Query("at"))
	if err != nil {
		httperr.FromError(c, domain.ErrInvalidDateTime)
		return
	}

	available, err := h.engine.IsAvailable(c.Request.Context(), doctorID, at)
	if err != nil {
		_ = c.Error(err)
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"doctor_id": doctorID,
		"at":        timezone.Format(at),
		"available": available,
	})
}

// ======================================================
// DAY SLOTS
// ======================================================

func (h *SlotsHandler) Slots(c *gin.Context) {
	doctorID, ok := pathID(c, "id")
	if !ok {
		return
	}

	date, err := timezone.ParseDate(c.Query("date"))
	if err != nil {
		httperr.FromError(c, domain.ErrInvalidDate)
		return
	}

	slots, err := h.engine.GenerateDaySlots(c.Request.Context(), doctorID, date)
	if err != nil {
		_ = c.Error(err)
		httperr.FromError(c, err)
		return
	}

	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, timezone.Format(s))
	}

	httpresp.OK(c, gin.H{
		"doctor_id": doctorID,
		"date":      date.Format(timezone.DateLayout),
		"slots":     out,
	})
}
