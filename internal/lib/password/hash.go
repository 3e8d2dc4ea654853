// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// GetHash создает bcrypt-хеш пароля для безопасного хранения: соль случайная,
// поэтому повторное хеширование того же пароля дает другой результат.
// Verify сравнивает сохраненный хеш с введенным паролем и на любом
// некорректном входе (пустой или битый хеш) отвечает отказом, а не паникой.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GetHash принимает пароль пользователя и возвращает его bcrypt-хэш.
//
// Хеширование выполняется ровно один раз на установку или смену пароля;
// уже сохраненный хэш повторно хешировать нельзя.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// Verify сравнивает bcrypt-хэш с введенным паролем.
//
// Возвращает true только при совпадении. Пустой или поврежденный хэш
// обрабатывается как несовпадение: проверка закрывается отказом.
func Verify(originalHash, externalPassword string) bool {
	if originalHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)) == nil
}
