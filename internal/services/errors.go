package services

import (
	"rideshare-backend/internal/models"
)

func codeOrInternal(err error) models.ErrorCode {
	if code := models.CodeOf(err); code != "" {
		return code
	}
	return "internal"
}
