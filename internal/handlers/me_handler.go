package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/httpresp"
	"github.com/BruksfildServices01/playpark/internal/middleware"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

// GetMe returns the caller and, for guardians, their active children.
func (h *MeHandler) GetMe(c *gin.Context) {
	userID := middleware.ActorID(c)

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		First(&user, userID).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "user_not_found", "User not found.")
			return
		}
		httperr.Internal(c, "failed_to_load_user", "Failed to load user.")
		return
	}

	var children []models.Child
	if err := h.db.WithContext(c.Request.Context()).
		Where("guardian_id = ? AND is_active = ?", user.ID, true).
		Order("full_name ASC").
		Find(&children).Error; err != nil {

		httperr.Internal(c, "failed_to_list_children", "Failed to list children.")
		return
	}

	childList := make([]gin.H, 0, len(children))
	for _, ch := range children {
		childList = append(childList, gin.H{
			"id":         ch.ID,
			"full_name":  ch.FullName,
			"birth_date": ch.BirthDate,
		})
	}

	httpresp.OK(c, gin.H{
		"user": gin.H{
			"id":        user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
			"phone":     user.Phone,
			"role":      user.Role,
		},
		"children": childList,
	})
}
