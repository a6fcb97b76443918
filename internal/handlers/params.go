package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kiryafn/vet-clinic-crm/internal/httperr"
)

// pathID reads a positive numeric path parameter. On failure it writes a 400
// and returns false.
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid "+name+".")
		return 0, false
	}
	return uint(v), true
}
