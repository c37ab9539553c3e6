package handlers

import (
	"net/http"

	"rideshare-backend/internal/models"
	"rideshare-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// BookingGetByID - бронирование видно пассажиру, водителю и компании
func BookingGetByID(bookings *services.BookingAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, ok := visibleBooking(c, bookings)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}

// BookingCancel отменяет бронирование вместе с заявкой и возвращает места
func BookingCancel(bookings *services.BookingAggregator, requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := visibleBooking(c, bookings); !ok {
			return
		}

		booking, err := requests.CancelBooking(c.Request.Context(), c.Param("id"))
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}

// RiderOverview - заявки и бронирования текущего пользователя
func RiderOverview(bookings *services.BookingAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := bookings.ListForRider(c.Request.Context(), actorFrom(c).ID)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

// DriverOverview - поездки водителя и бронирования на них
func DriverOverview(bookings *services.BookingAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := actorFrom(c).ID
		if actorFrom(c).IsAdmin() && c.Query("driverId") != "" {
			driverID = c.Query("driverId")
		}

		overview, err := bookings.ListForDriver(c.Request.Context(), driverID)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

// CompanyOverview - поездки компании с заявками
func CompanyOverview(bookings *services.BookingAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		companyID := actor.Company()
		if actor.IsAdmin() {
			companyID = c.Query("companyId")
		}
		if companyID == "" {
			RespondError(c, models.NewError(models.CodeValidation, "не указана компания"))
			return
		}

		overview, err := bookings.ListForCompany(c.Request.Context(), companyID)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

func visibleBooking(c *gin.Context, bookings *services.BookingAggregator) (models.Booking, bool) {
	booking, err := bookings.Booking(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return models.Booking{}, false
	}
	if !actorFrom(c).CanViewBooking(booking) {
		respondForbidden(c)
		return models.Booking{}, false
	}
	return booking, true
}
