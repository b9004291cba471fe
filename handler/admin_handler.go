package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	adminpkg "github.com/mikios34/customer-admin/admin"
)

// AdminHandler bundles dependencies for admin-related HTTP handlers.
type AdminHandler struct {
	service adminpkg.AdminService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc adminpkg.AdminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

type registerAdminPayload struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Password    string `json:"password" binding:"omitempty,min=8"`
	FirebaseUID string `json:"firebase_uid"`
	Role        string `json:"role" binding:"omitempty,oneof=ADMIN STAFF"`
}

// RegisterAdmin registers a dashboard operator (creates user and admin profile).
func (h *AdminHandler) RegisterAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p registerAdminPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		if p.Password == "" && p.FirebaseUID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "either password or firebase_uid is required"})
			return
		}

		req := adminpkg.RegisterAdminRequest{
			FullName:    p.FullName,
			Email:       p.Email,
			Phone:       p.Phone,
			Password:    p.Password,
			FirebaseUID: p.FirebaseUID,
			Role:        p.Role,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		createdAdmin, err := h.service.RegisterAdmin(ctx, req)
		if err != nil {
			if errors.Is(err, adminpkg.ErrEmailTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register admin", "detail": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"admin": gin.H{
				"id":      createdAdmin.ID,
				"user_id": createdAdmin.UserID,
			},
		})
	}
}
