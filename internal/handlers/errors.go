package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"rideshare-backend/internal/models"
	"rideshare-backend/internal/services"

	"github.com/gin-gonic/gin"
)

var errorStatus = map[models.ErrorCode]int{
	models.CodeValidation:        http.StatusBadRequest,
	models.CodeInvalidPayment:    http.StatusBadRequest,
	models.CodeInvalidTransition: http.StatusConflict,
	models.CodeCapacityExceeded:  http.StatusConflict,
	models.CodeInsufficientSeats: http.StatusConflict,
	models.CodeInvalidRelease:    http.StatusConflict,
	models.CodeTripNotPublished:  http.StatusConflict,
	models.CodeIncompleteTrip:    http.StatusUnprocessableEntity,
	models.CodeNotFound:          http.StatusNotFound,
	models.CodeForbidden:         http.StatusForbidden,
}

var defaultMessages = map[models.ErrorCode]string{
	models.CodeValidation:        "Неверные данные",
	models.CodeInvalidPayment:    "Способ оплаты не принимается",
	models.CodeInvalidTransition: "Действие недоступно в текущем статусе",
	models.CodeCapacityExceeded:  "Недостаточно свободных мест",
	models.CodeInsufficientSeats: "Недостаточно свободных мест",
	models.CodeInvalidRelease:    "Нельзя освободить больше мест, чем занято",
	models.CodeTripNotPublished:  "Поездка недоступна для бронирования",
	models.CodeIncompleteTrip:    "Поездка заполнена не полностью",
	models.CodeNotFound:          "Не найдено",
	models.CodeForbidden:         "Недостаточно прав",
}

// RespondError переводит доменную ошибку в HTTP ответ {"error", "code"}
func RespondError(c *gin.Context, err error) {
	code := models.CodeOf(err)
	status, ok := errorStatus[code]
	if !ok {
		slog.Error("внутренняя ошибка",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера", "code": "internal"})
		return
	}

	message := defaultMessages[code]
	var de *models.Error
	if errors.As(err, &de) && de.Message != "" {
		message = de.Message
	}
	c.JSON(status, gin.H{"error": message, "code": code})
}

func respondBadRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "code": models.CodeValidation})
}

func respondForbidden(c *gin.Context) {
	RespondError(c, models.ErrForbidden)
}

// actorFrom собирает пользователя из значений, которые положил JWTAuth
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		ID:        c.GetString("user_id"),
		Role:      models.Role(c.GetString("role")),
		CompanyID: c.GetString("company_id"),
	}
}
