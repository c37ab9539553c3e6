package handlers

import (
	"net/http"

	"rideshare-backend/internal/models"
	"rideshare-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// RequestCreate - пассажир оставляет заявку на места в поездке
func RequestCreate(requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TripID    string           `json:"tripId" binding:"required"`
			Seats     int              `json:"seats" binding:"required"`
			PayMethod models.PayMethod `json:"payMethod" binding:"required"`
			Notes     string           `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c)
			return
		}

		created, err := requests.Create(c.Request.Context(), services.RequestInput{
			TripID:    req.TripID,
			RiderID:   actorFrom(c).ID,
			Seats:     req.Seats,
			PayMethod: req.PayMethod,
			Notes:     req.Notes,
		})
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// RequestGetByID - заявка видна пассажиру и тем, кто управляет поездкой
func RequestGetByID(trips *services.TripService, requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, view, ok := loadRequest(c, trips, requests)
		if !ok {
			return
		}
		if !actorFrom(c).CanViewRequest(req, view.Trip) {
			respondForbidden(c)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// RequestAccept подтверждает заявку и возвращает созданное бронирование
func RequestAccept(trips *services.TripService, requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := operatedRequest(c, trips, requests); !ok {
			return
		}

		req, booking, err := requests.Accept(c.Request.Context(), c.Param("id"))
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": req, "booking": booking})
	}
}

func RequestDecline(trips *services.TripService, requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := operatedRequest(c, trips, requests); !ok {
			return
		}

		var body struct {
			Reason string `json:"reason"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				respondBadRequest(c)
				return
			}
		}

		req, err := requests.Decline(c.Request.Context(), c.Param("id"), body.Reason)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// RequestCancel - отменить заявку может пассажир или оператор поездки
func RequestCancel(trips *services.TripService, requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, view, ok := loadRequest(c, trips, requests)
		if !ok {
			return
		}
		if !actorFrom(c).CanViewRequest(req, view.Trip) {
			respondForbidden(c)
			return
		}

		cancelled, err := requests.Cancel(c.Request.Context(), req.ID)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cancelled)
	}
}

func loadRequest(c *gin.Context, trips *services.TripService, requests *services.RequestService) (models.Request, models.TripView, bool) {
	req, err := requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return models.Request{}, models.TripView{}, false
	}
	view, err := trips.Get(c.Request.Context(), req.TripID)
	if err != nil {
		RespondError(c, err)
		return models.Request{}, models.TripView{}, false
	}
	return req, view, true
}

func operatedRequest(c *gin.Context, trips *services.TripService, requests *services.RequestService) (models.Request, bool) {
	req, view, ok := loadRequest(c, trips, requests)
	if !ok {
		return models.Request{}, false
	}
	if !actorFrom(c).CanOperate(view.Trip) {
		respondForbidden(c)
		return models.Request{}, false
	}
	return req, true
}
