package routes

import (
	"rideshare-backend/internal/handlers"
	"rideshare-backend/internal/middleware"
	"rideshare-backend/internal/models"
	"rideshare-backend/internal/services"
	"rideshare-backend/internal/websocket"

	"github.com/gin-gonic/gin"
)

// Deps - сервисы, которые нужны обработчикам
type Deps struct {
	Trips     *services.TripService
	Requests  *services.RequestService
	Bookings  *services.BookingAggregator
	Fleet     *services.FleetService
	WebSocket *websocket.WebSocketManager
	JWTSecret string
}

func SetupRoutes(api *gin.RouterGroup, d Deps) {
	operators := middleware.RequireRole(models.RoleCompany, models.RoleDriver)
	companies := middleware.RequireRole(models.RoleCompany)

	// Защищенные маршруты (требуют аутентификации)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(d.JWTSecret))
	{
		// Профиль
		protected.GET("/profile", handlers.UserGetProfile(d.Fleet))
		protected.PUT("/profile", handlers.UserUpdateProfile(d.Fleet))

		// Поездки
		protected.POST("/trips", operators, handlers.TripCreate(d.Trips))
		protected.GET("/trips/available", handlers.TripGetAvailable(d.Bookings))
		protected.GET("/trips/:id", handlers.TripGetByID(d.Trips))
		protected.PUT("/trips/:id", operators, handlers.TripUpdate(d.Trips))
		protected.PUT("/trips/:id/publish", operators, handlers.TripPublish(d.Trips))
		protected.PUT("/trips/:id/archive", operators, handlers.TripArchive(d.Trips))
		protected.PUT("/trips/:id/unarchive", operators, handlers.TripUnarchive(d.Trips))
		protected.PUT("/trips/:id/start", operators, handlers.TripStart(d.Trips))
		protected.PUT("/trips/:id/complete", operators, handlers.TripComplete(d.Trips))
		protected.GET("/trips/:id/requests", operators, handlers.TripGetRequests(d.Trips, d.Requests))

		// Заявки
		protected.POST("/requests", middleware.RequireRole(models.RoleRider), handlers.RequestCreate(d.Requests))
		protected.GET("/requests/:id", handlers.RequestGetByID(d.Trips, d.Requests))
		protected.PUT("/requests/:id/accept", operators, handlers.RequestAccept(d.Trips, d.Requests))
		protected.PUT("/requests/:id/decline", operators, handlers.RequestDecline(d.Trips, d.Requests))
		protected.PUT("/requests/:id/cancel", handlers.RequestCancel(d.Trips, d.Requests))

		// Бронирования
		protected.GET("/bookings/:id", handlers.BookingGetByID(d.Bookings))
		protected.PUT("/bookings/:id/cancel", handlers.BookingCancel(d.Bookings, d.Requests))

		// Сводки по ролям
		protected.GET("/rider/overview", handlers.RiderOverview(d.Bookings))
		protected.GET("/driver/overview", middleware.RequireRole(models.RoleDriver), handlers.DriverOverview(d.Bookings))
		protected.GET("/company/overview", companies, handlers.CompanyOverview(d.Bookings))

		// Автомобили
		protected.POST("/vehicles", companies, handlers.VehicleCreate(d.Fleet))
		protected.GET("/vehicles", companies, handlers.VehicleList(d.Fleet))
		protected.PUT("/vehicles/:id/driver", companies, handlers.VehicleAssignDriver(d.Fleet))

		// WebSocket подключение для получения обновлений в реальном времени
		if d.WebSocket != nil {
			protected.GET("/ws", d.WebSocket.Handler())
		}
	}
}
