package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"rideshare-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"сообщение из ошибки", models.NewError(models.CodeCapacityExceeded, "свободно 1"), http.StatusConflict, "capacity_exceeded", "свободно 1"},
		{"обернутая ошибка", fmt.Errorf("accept: %w", models.ErrForbidden), http.StatusForbidden, "forbidden", ""},
		{"незавершенная поездка", models.NewError(models.CodeIncompleteTrip, "нет водителя"), http.StatusUnprocessableEntity, "incomplete_trip", "нет водителя"},
		{"неизвестная ошибка", errors.New("connection reset"), http.StatusInternalServerError, "internal", "Внутренняя ошибка сервера"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
			// Детали внутренних ошибок наружу не уходят
			assert.NotContains(t, body["error"], "connection reset")
		})
	}
}

func TestActorFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("user_id", "company-1")
	c.Set("role", "company")

	actor := actorFrom(c)
	assert.Equal(t, models.RoleCompany, actor.Role)
	assert.Equal(t, "company-1", actor.Company())
}
