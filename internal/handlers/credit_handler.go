package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/playpark/internal/dto"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/httpresp"
	"github.com/BruksfildServices01/playpark/internal/middleware"
	"github.com/BruksfildServices01/playpark/internal/timezone"
	ucCredit "github.com/BruksfildServices01/playpark/internal/usecase/credit"
)

// ======================================================
// HANDLER
// ======================================================

type CreditHandler struct {
	eligible *ucCredit.FindEligibleCredit
	topUp    *ucCredit.TopUp
	deduct   *ucCredit.Deduct
	sweep    *ucCredit.SweepExpired
	mine     *ucCredit.ListGuardianCredits
	expired  *ucCredit.ListExpiredCredits
}

func NewCreditHandler(
	eligible *ucCredit.FindEligibleCredit,
	topUp *ucCredit.TopUp,
	deduct *ucCredit.Deduct,
	sweep *ucCredit.SweepExpired,
	mine *ucCredit.ListGuardianCredits,
	expired *ucCredit.ListExpiredCredits,
) *CreditHandler {
	return &CreditHandler{
		eligible: eligible,
		topUp:    topUp,
		deduct:   deduct,
		sweep:    sweep,
		mine:     mine,
		expired:  expired,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type TopUpRequest struct {
	GuardianID uint   `json:"guardian_id" binding:"required"`
	LocationID uint   `json:"location_id" binding:"required"`
	Minutes    int    `json:"minutes" binding:"required"`
	ExpiryDate string `json:"expiry_date"`
}

type DeductRequest struct {
	Minutes *int `json:"minutes" binding:"required"`
}

// ======================================================
// COMMANDS
// ======================================================

func (h *CreditHandler) TopUp(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	in := ucCredit.TopUpInput{
		GuardianID: req.GuardianID,
		LocationID: req.LocationID,
		Minutes:    req.Minutes,
	}
	if req.ExpiryDate != "" {
		expiry, err := timezone.ParseDate(req.ExpiryDate)
		if err != nil {
			httperr.BadRequest(c, "invalid_expiry_date", "Expiry date must use the YYYY-MM-DD format.")
			return
		}
		in.ExpiryDate = &expiry
	}
	actorID := middleware.ActorID(c)
	in.ActorID = &actorID

	credit, err := h.topUp.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, dto.NewCreditDTO(*credit))
}

// Deduct is a staff adjustment of a balance, clamped at zero.
func (h *CreditHandler) Deduct(c *gin.Context) {
	creditID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	actorID := middleware.ActorID(c)

	remaining, err := h.deduct.Execute(c.Request.Context(), creditID, *req.Minutes, &actorID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"credit_id":         creditID,
		"minutes_remaining": remaining,
	})
}

// Sweep runs the expiry sweeper on demand. as_of defaults to today.
func (h *CreditHandler) Sweep(c *gin.Context) {
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return
	}
	actorID := middleware.ActorID(c)

	res, err := h.sweep.Execute(c.Request.Context(), ucCredit.SweepInput{
		AsOf:    asOf,
		ActorID: &actorID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, dto.SweepResultDTO{
		AsOf:    res.AsOf.Format("2006-01-02"),
		Zeroed:  res.Zeroed,
		Skipped: res.Skipped,
	})
}

// ======================================================
// QUERIES
// ======================================================

func (h *CreditHandler) Eligible(c *gin.Context) {
	guardianID, ok := requiredQueryID(c, "guardian_id")
	if !ok {
		return
	}
	locationID, ok := requiredQueryID(c, "location_id")
	if !ok {
		return
	}
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return
	}

	credit, err := h.eligible.Execute(c.Request.Context(), ucCredit.FindEligibleInput{
		GuardianID: guardianID,
		LocationID: locationID,
		AsOf:       asOf,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	if credit == nil {
		httperr.FromError(c, httperr.ErrPaymentRequired("no_eligible_credit"))
		return
	}

	httpresp.OK(c, dto.NewCreditDTO(*credit))
}

func (h *CreditHandler) Mine(c *gin.Context) {
	summaries, err := h.mine.Execute(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := make([]dto.CreditSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		visits := make([]dto.VisitDTO, 0, len(s.RecentVisits))
		for _, v := range s.RecentVisits {
			visits = append(visits, visitDTO(v))
		}
		out = append(out, dto.CreditSummaryDTO{
			CreditDTO:      dto.NewCreditDTO(s.Credit),
			HoursRemaining: s.HoursRemaining,
			IsExpired:      s.IsExpired,
			RecentVisits:   visits,
		})
	}
	httpresp.List(c, out)
}

func (h *CreditHandler) Expired(c *gin.Context) {
	locationID, ok := queryID(c, "location_id")
	if !ok {
		return
	}

	expired, err := h.expired.Execute(c.Request.Context(), locationID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := make([]dto.ExpiredCreditDTO, 0, len(expired))
	for _, e := range expired {
		out = append(out, dto.ExpiredCreditDTO{
			CreditDTO:   dto.NewCreditDTO(e.Credit),
			DaysExpired: e.DaysExpired,
		})
	}
	httpresp.List(c, out)
}
