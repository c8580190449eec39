package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/timezone"
)

// --------------------------------------------------
// Path and query parsing
// --------------------------------------------------

// pathID reads a positive integer path parameter. It writes the 400 itself
// and returns false when the value is unusable.
func pathID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return uint(n), true
}

// queryID reads an optional positive integer query parameter.
func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return nil, false
	}
	id := uint(n)
	return &id, true
}

func requiredQueryID(c *gin.Context, name string) (uint, bool) {
	id, ok := queryID(c, name)
	if !ok {
		return 0, false
	}
	if id == nil {
		httperr.BadRequest(c, "missing_"+name, name+" is required.")
		return 0, false
	}
	return *id, true
}

// queryDate reads an optional YYYY-MM-DD query parameter as a UTC calendar
// date.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := timezone.ParseDate(raw)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Dates must use the YYYY-MM-DD format.")
		return nil, false
	}
	return &d, true
}

// pagination mirrors the audit log listing: page defaults to 1, limit to
// 50, and a limit outside 1..200 falls back to the default.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return page, limit
}
