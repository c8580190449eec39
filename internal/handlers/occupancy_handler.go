package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/playpark/internal/domain/capacity"
	"github.com/BruksfildServices01/playpark/internal/dto"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/httpresp"
	ucCapacity "github.com/BruksfildServices01/playpark/internal/usecase/capacity"
)

type OccupancyHandler struct {
	occupancy *ucCapacity.GetOccupancy
}

func NewOccupancyHandler(occupancy *ucCapacity.GetOccupancy) *OccupancyHandler {
	return &OccupancyHandler{occupancy: occupancy}
}

func (h *OccupancyHandler) Zone(c *gin.Context) {
	h.get(c, capacity.TargetZone)
}

func (h *OccupancyHandler) Session(c *gin.Context) {
	h.get(c, capacity.TargetSession)
}

func (h *OccupancyHandler) get(c *gin.Context, kind capacity.TargetKind) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	occ, err := h.occupancy.Execute(c.Request.Context(), kind, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, dto.OccupancyDTO{
		Kind:        string(occ.Kind),
		ID:          occ.ID,
		LocationID:  occ.LocationID,
		Current:     occ.Current,
		MaxCapacity: occ.MaxCapacity,
		Available:   occ.Available(),
		HasRoom:     occ.HasRoom(),
	})
}
