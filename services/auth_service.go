package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// AuthService выдаёт JWT для административного API. Учётные данные
// администратора задаются конфигурацией (пароль хранится bcrypt-хэшем).
type AuthService struct {
	adminUser         string
	adminPasswordHash string
	jwtSecret         []byte
}

func NewAuthService(adminUser, adminPasswordHash string, jwtSecret []byte) *AuthService {
	return &AuthService{
		adminUser:         adminUser,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
	}
}

// Authenticate проверяет учётные данные и возвращает подписанный токен.
func (s *AuthService) Authenticate(username, password string) (string, error) {
	if username != s.adminUser {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
