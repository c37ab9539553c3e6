package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rideshare-backend/internal/models"
	"rideshare-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type tripRequest struct {
	CompanyID   string             `json:"companyId"`
	VehicleID   string             `json:"vehicleId"`
	DriverID    string             `json:"driverId"`
	From        models.Location    `json:"from"`
	To          models.Location    `json:"to"`
	DepartureAt *time.Time         `json:"departureAt"`
	PriceAmd    int64              `json:"priceAmd"`
	SeatsTotal  int                `json:"seatsTotal" binding:"required"`
	PayMethods  []models.PayMethod `json:"payMethods"`
	Notes       string             `json:"notes"`
}

type tripPatchRequest struct {
	VehicleID      *string            `json:"vehicleId"`
	DriverID       *string            `json:"driverId"`
	From           *models.Location   `json:"from"`
	To             *models.Location   `json:"to"`
	DepartureAt    *time.Time         `json:"departureAt"`
	ClearDeparture bool               `json:"clearDeparture"`
	PriceAmd       *int64             `json:"priceAmd"`
	PayMethods     []models.PayMethod `json:"payMethods"`
	Notes          *string            `json:"notes"`
}

// TripCreate создает черновик поездки от имени компании или водителя
func TripCreate(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tripRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c)
			return
		}

		actor := actorFrom(c)
		in := services.TripInput{
			CompanyID:   actor.Company(),
			VehicleID:   req.VehicleID,
			DriverID:    req.DriverID,
			From:        req.From,
			To:          req.To,
			DepartureAt: req.DepartureAt,
			PriceAmd:    req.PriceAmd,
			SeatsTotal:  req.SeatsTotal,
			PayMethods:  req.PayMethods,
			Notes:       req.Notes,
		}
		switch actor.Role {
		case models.RoleAdmin:
			in.CompanyID = req.CompanyID
		case models.RoleDriver:
			// Водитель создает поездки только для себя
			if in.DriverID != "" && in.DriverID != actor.ID {
				respondForbidden(c)
				return
			}
			in.DriverID = actor.ID
		}

		trip, err := trips.Create(c.Request.Context(), in)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, trip)
	}
}

// TripUpdate меняет черновик поездки
func TripUpdate(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := operatedTrip(c, trips); !ok {
			return
		}

		var req tripPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c)
			return
		}

		trip, err := trips.Update(c.Request.Context(), c.Param("id"), services.TripPatch{
			VehicleID:      req.VehicleID,
			DriverID:       req.DriverID,
			From:           req.From,
			To:             req.To,
			DepartureAt:    req.DepartureAt,
			ClearDeparture: req.ClearDeparture,
			PriceAmd:       req.PriceAmd,
			PayMethods:     req.PayMethods,
			Notes:          req.Notes,
		})
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, trip)
	}
}

// TripGetByID возвращает поездку со счетчиками заявок.
// Черновики и архив видны только тем, кто управляет поездкой.
func TripGetByID(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := trips.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			RespondError(c, err)
			return
		}

		hidden := view.Status == models.TripStatusDraft || view.Status == models.TripStatusArchived
		if hidden && !actorFrom(c).CanOperate(view.Trip) {
			respondForbidden(c)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// TripGetAvailable - поиск поездок для пассажира
func TripGetAvailable(bookings *services.BookingAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseTripFilter(c)
		if err != nil {
			RespondError(c, err)
			return
		}

		list, err := bookings.ListAvailable(c.Request.Context(), filter)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func TripPublish(trips *services.TripService) gin.HandlerFunc {
	return tripAction(trips, trips.Publish)
}

func TripArchive(trips *services.TripService) gin.HandlerFunc {
	return tripAction(trips, trips.Archive)
}

func TripUnarchive(trips *services.TripService) gin.HandlerFunc {
	return tripAction(trips, trips.Unarchive)
}

func TripStart(trips *services.TripService) gin.HandlerFunc {
	return tripAction(trips, trips.Start)
}

func TripComplete(trips *services.TripService) gin.HandlerFunc {
	return tripAction(trips, trips.Complete)
}

// TripGetRequests - заявки поездки для оператора
func TripGetRequests(trips *services.TripService, requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := operatedTrip(c, trips); !ok {
			return
		}

		list, err := requests.ListByTrip(c.Request.Context(), c.Param("id"))
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func tripAction(trips *services.TripService, action func(ctx context.Context, tripID string) (models.Trip, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := operatedTrip(c, trips); !ok {
			return
		}

		trip, err := action(c.Request.Context(), c.Param("id"))
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, trip)
	}
}

// operatedTrip загружает поездку из пути и проверяет, что пользователь ей управляет
func operatedTrip(c *gin.Context, trips *services.TripService) (models.TripView, bool) {
	view, err := trips.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return models.TripView{}, false
	}
	if !actorFrom(c).CanOperate(view.Trip) {
		respondForbidden(c)
		return models.TripView{}, false
	}
	return view, true
}

func parseTripFilter(c *gin.Context) (services.TripFilter, error) {
	filter := services.TripFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
	}

	if v := c.Query("maxPrice"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			return filter, models.NewError(models.CodeValidation, "некорректная максимальная цена")
		}
		filter.MaxPriceAmd = price
	}
	if v := c.Query("minSeats"); v != "" {
		seats, err := strconv.Atoi(v)
		if err != nil || seats < 0 {
			return filter, models.NewError(models.CodeValidation, "некорректное количество мест")
		}
		filter.MinSeats = seats
	}
	if v := c.Query("payMethods"); v != "" {
		for _, m := range strings.Split(v, ",") {
			method := models.PayMethod(strings.TrimSpace(m))
			if !method.Valid() {
				return filter, models.NewError(models.CodeValidation, "неизвестный способ оплаты %q", method)
			}
			filter.PayMethods = append(filter.PayMethods, method)
		}
	}
	for param, dst := range map[string]**time.Time{"departFrom": &filter.DepartFrom, "departTo": &filter.DepartTo} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, models.NewError(models.CodeValidation, "некорректная дата %s, ожидается RFC3339", param)
		}
		*dst = &t
	}
	return filter, nil
}
