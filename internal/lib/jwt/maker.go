// Package jwt реализует выпуск и проверку сессионных токенов пользователя.
//
// Maker определяет интерфейс для создания и проверки JWT токенов с uid и email.
// MakerImpl — конкретная реализация с использованием секретного ключа и срока жизни.
// Токены stateless: отзыва нет, единственный механизм завершения сессии — истечение срока.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга сессионных токенов.
//
// Методы позволяют выпустить токен для пользователя и разобрать токен,
// извлекая из него кастомные данные.
type Maker interface {
	// GenerateToken выпускает подписанный токен для пользователя с указанным uid и email.
	GenerateToken(userUID, email string) (string, error)
	// ParseToken возвращает *CustomClaims, если подпись и срок действия корректны.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
