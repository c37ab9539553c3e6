package handlers

import (
	"net/http"

	"rideshare-backend/internal/services"

	"github.com/gin-gonic/gin"
)

func UserGetProfile(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := fleet.Profile(c.Request.Context(), actorFrom(c))
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func UserUpdateProfile(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Phone     string `json:"phone"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c)
			return
		}

		// Обновляем только разрешенные поля, роль и компания приходят из токена
		user, err := fleet.UpdateProfile(c.Request.Context(), actorFrom(c), services.ProfileInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		})
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
