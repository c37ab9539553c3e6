package utils

import (
	"errors"
	"time"

	"rideshare-backend/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

type Claims struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role,omitempty"`
	CompanyID string      `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT выпускает токен пользователя на ttl
func GenerateJWT(secret string, user models.User, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET не задан")
	}
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateAdminJWT выпускает токен администратора
func GenerateAdminJWT(secret, adminID string) (string, error) {
	return GenerateJWT(secret, models.User{ID: adminID, Role: models.RoleAdmin}, 365*24*time.Hour) // Токен действителен 1 год
}

func ValidateToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
