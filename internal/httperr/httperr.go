package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

type mapping struct {
	status  int
	message string
}

var businessStatus = map[string]mapping{
	"slot_conflict":         {http.StatusConflict, "Doctor is not available at this time."},
	"invalid_transition":    {http.StatusConflict, "Appointment can no longer change status."},
	"invalid_date":          {http.StatusBadRequest, "Date must be YYYY-MM-DD."},
	"invalid_date_time":     {http.StatusBadRequest, "Date/time must be ISO-8601."},
	"past_date_time":        {http.StatusBadRequest, "Appointment must be in the future."},
	"appointment_not_found": {http.StatusNotFound, "Appointment not found."},
	"doctor_not_found":      {http.StatusNotFound, "Doctor not found."},
	"client_not_found":      {http.StatusNotFound, "Client not found."},
	"pet_not_found":         {http.StatusNotFound, "Pet not found or not owned by client."},
	"not_your_appointment":  {http.StatusForbidden, "Appointment belongs to another doctor."},
	"empty_patch":           {http.StatusBadRequest, "Nothing to update."},
	"booking_busy":          {http.StatusServiceUnavailable, "Doctor schedule is busy, retry shortly."},
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

// FromError translates a use case error into a response. Unknown errors are
// reported as internal without leaking details.
func FromError(c *gin.Context, err error) {
	if code, ok := CodeOf(err); ok {
		if m, known := businessStatus[code]; known {
			Write(c, m.status, code, m.message)
			return
		}
		BadRequest(c, code, code)
		return
	}
	Internal(c, "internal_error", "Unexpected error.")
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}
