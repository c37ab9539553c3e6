package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"rideshare-backend/internal/models"
	"rideshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuth проверяет Bearer токен и кладет в контекст user_id, role и company_id
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Отсутствует токен авторизации"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Неверный формат токена"})
			return
		}

		claims, err := utils.ValidateToken(secret, parts[1])
		if err != nil {
			slog.Debug("недействительный токен", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Недействительный токен"})
			return
		}

		if claims.UserID == "" || !claims.Role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Недействительный ID пользователя"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", string(claims.Role))
		c.Set("company_id", claims.CompanyID)
		c.Next()
	}
}

// RequireRole пропускает только пользователей с одной из ролей; админ проходит всегда
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString("role"))
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав", "code": "forbidden"})
	}
}
