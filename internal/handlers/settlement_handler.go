package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/playpark/internal/domain/settlement"
	"github.com/BruksfildServices01/playpark/internal/dto"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/httpresp"
	ucSettlement "github.com/BruksfildServices01/playpark/internal/usecase/settlement"
)

// SettlementHandler accepts a purchase-completed event over HTTP, for
// deliveries that do not come through the queue.
type SettlementHandler struct {
	apply *ucSettlement.ApplyPurchase
}

func NewSettlementHandler(apply *ucSettlement.ApplyPurchase) *SettlementHandler {
	return &SettlementHandler{apply: apply}
}

func (h *SettlementHandler) Apply(c *gin.Context) {
	var ev settlement.PurchaseCompleted
	if err := c.ShouldBindJSON(&ev); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	res, err := h.apply.Execute(c.Request.Context(), ev)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := dto.SettlementDTO{
		TransactionID:   res.Applied.TransactionID,
		Duplicate:       res.Duplicate,
		MinutesCredited: res.Applied.MinutesCredited,
		AmountPaid:      res.Applied.AmountPaid.StringFixed(2),
	}
	if res.Credit != nil {
		credit := dto.NewCreditDTO(*res.Credit)
		out.Credit = &credit
	}

	if res.Duplicate {
		httpresp.OK(c, out)
		return
	}
	httpresp.Created(c, out)
}
