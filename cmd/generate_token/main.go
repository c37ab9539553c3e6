package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"rideshare-backend/internal/models"
	"rideshare-backend/internal/utils"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

func main() {
	userID := flag.String("user", "admin", "ID пользователя")
	role := flag.String("role", string(models.RoleAdmin), "роль: rider, driver, company, admin")
	companyID := flag.String("company", "", "ID компании для ролей driver и company")
	ttl := flag.Duration("ttl", 365*24*time.Hour, "срок действия токена")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	user := models.User{ID: *userID, Role: models.Role(*role), CompanyID: *companyID}
	if !user.Role.Valid() {
		log.Fatalf("Неизвестная роль %q", *role)
	}
	if user.Role == models.RoleCompany && user.CompanyID == "" {
		log.Fatal("Для роли company нужен --company")
	}

	token, err := utils.GenerateJWT(os.Getenv("JWT_SECRET"), user, *ttl)
	if err != nil {
		log.Fatalf("Ошибка генерации токена: %v", err)
	}

	fmt.Printf("Generated %s token: %s\n", user.Role, token)
}
