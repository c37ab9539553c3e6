package handlers

import (
	"net/http"

	"rideshare-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// VehicleCreate регистрирует автомобиль компании
func VehicleCreate(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CompanyID string `json:"companyId"`
			Brand     string `json:"brand" binding:"required"`
			Model     string `json:"model" binding:"required"`
			Plate     string `json:"plate" binding:"required"`
			Seats     int    `json:"seats" binding:"required"`
			DriverID  string `json:"driverId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c)
			return
		}

		actor := actorFrom(c)
		companyID := actor.Company()
		if actor.IsAdmin() {
			companyID = req.CompanyID
		}

		vehicle, err := fleet.RegisterVehicle(c.Request.Context(), companyID, services.VehicleInput{
			Brand:    req.Brand,
			Model:    req.Model,
			Plate:    req.Plate,
			Seats:    req.Seats,
			DriverID: req.DriverID,
		})
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, vehicle)
	}
}

// VehicleList - автомобили компании; админ видит все
func VehicleList(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		companyID := actor.Company()
		if actor.IsAdmin() {
			companyID = c.Query("companyId")
		}

		vehicles, err := fleet.ListVehicles(c.Request.Context(), companyID)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}

// VehicleAssignDriver закрепляет автомобиль за водителем компании
func VehicleAssignDriver(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DriverID string `json:"driverId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c)
			return
		}

		actor := actorFrom(c)
		companyID := actor.Company()
		if actor.IsAdmin() {
			companyID = ""
		}

		vehicle, err := fleet.AssignDriver(c.Request.Context(), companyID, c.Param("id"), req.DriverID)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicle)
	}
}
