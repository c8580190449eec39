package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/playpark/internal/domain/visit"
	"github.com/BruksfildServices01/playpark/internal/dto"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/httpresp"
	"github.com/BruksfildServices01/playpark/internal/middleware"
	"github.com/BruksfildServices01/playpark/internal/models"
	ucVisit "github.com/BruksfildServices01/playpark/internal/usecase/visit"
)

// ======================================================
// HANDLER
// ======================================================

type VisitHandler struct {
	checkIn  *ucVisit.CheckIn
	checkOut *ucVisit.CheckOut
	active   *ucVisit.ListActiveVisits
	history  *ucVisit.VisitHistory
	stats    *ucVisit.VisitStats
}

func NewVisitHandler(
	checkIn *ucVisit.CheckIn,
	checkOut *ucVisit.CheckOut,
	active *ucVisit.ListActiveVisits,
	history *ucVisit.VisitHistory,
	stats *ucVisit.VisitStats,
) *VisitHandler {
	return &VisitHandler{
		checkIn:  checkIn,
		checkOut: checkOut,
		active:   active,
		history:  history,
		stats:    stats,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CheckInRequest struct {
	ChildID    uint   `json:"child_id" binding:"required"`
	LocationID uint   `json:"location_id" binding:"required"`
	ZoneID     *uint  `json:"zone_id"`
	SessionID  *uint  `json:"session_id"`
	CreditID   *uint  `json:"credit_id"`
	VisitType  string `json:"visit_type" binding:"required"`
}

func visitDTO(v models.Visit) dto.VisitDTO {
	return dto.NewVisitDTO(v, string(visit.StatusOf(&v)))
}

// ======================================================
// CHECK-IN
// ======================================================

func (h *VisitHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	v, err := h.checkIn.Execute(c.Request.Context(), ucVisit.CheckInInput{
		ChildID:    req.ChildID,
		LocationID: req.LocationID,
		ZoneID:     req.ZoneID,
		SessionID:  req.SessionID,
		CreditID:   req.CreditID,
		VisitType:  req.VisitType,
		ActorID:    middleware.ActorID(c),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, visitDTO(*v))
}

// ======================================================
// CHECK-OUT
// ======================================================

func (h *VisitHandler) CheckOut(c *gin.Context) {
	visitID, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.checkOut.Execute(c.Request.Context(), visitID, middleware.ActorID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, dto.CheckOutDTO{
		Visit:           visitDTO(*res.Visit),
		CreditRemaining: res.CreditRemaining,
	})
}

// ======================================================
// QUERIES
// ======================================================

func (h *VisitHandler) ListActive(c *gin.Context) {
	locationID, ok := requiredQueryID(c, "location_id")
	if !ok {
		return
	}
	zoneID, ok := queryID(c, "zone_id")
	if !ok {
		return
	}

	active, err := h.active.Execute(c.Request.Context(), locationID, zoneID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := make([]dto.VisitDTO, 0, len(active))
	for _, a := range active {
		d := visitDTO(a.Visit)
		minutes := a.CurrentDurationMinutes
		d.CurrentDurationMinutes = &minutes
		out = append(out, d)
	}
	httpresp.List(c, out)
}

// MyHistory lists visits of the caller's own children.
func (h *VisitHandler) MyHistory(c *gin.Context) {
	guardianID := middleware.ActorID(c)
	h.listHistory(c, ucVisit.HistoryInput{GuardianID: &guardianID})
}

func (h *VisitHandler) ChildHistory(c *gin.Context) {
	childID, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.listHistory(c, ucVisit.HistoryInput{ChildID: &childID})
}

func (h *VisitHandler) listHistory(c *gin.Context, in ucVisit.HistoryInput) {
	in.Page, in.Limit = pagination(c)
	in.ActiveOnly = c.Query("active_only") == "true"

	res, err := h.history.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := make([]dto.VisitDTO, 0, len(res.Visits))
	for _, v := range res.Visits {
		out = append(out, visitDTO(v))
	}
	httpresp.Page(c, out, res.Total, res.Page, res.Limit)
}

func (h *VisitHandler) Stats(c *gin.Context) {
	locationID, ok := requiredQueryID(c, "location_id")
	if !ok {
		return
	}

	res, err := h.stats.Execute(c.Request.Context(), ucVisit.StatsInput{
		LocationID: locationID,
		FromDate:   c.Query("from"),
		ToDate:     c.Query("to"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, dto.VisitStatsDTO{
		From:                   res.From.Format("2006-01-02"),
		To:                     res.To.AddDate(0, 0, -1).Format("2006-01-02"),
		TotalVisits:            res.Total,
		ActiveVisits:           res.Active,
		ByType:                 res.ByType,
		AverageDurationMinutes: res.AverageDurationMinutes,
	})
}
