// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mediacareers/membership-service/internal/lib/jwt"
	"github.com/mediacareers/membership-service/internal/lib/password"
	"github.com/mediacareers/membership-service/internal/models"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

// ErrInvalidCredentials неизвестный email или неверный пароль.
// Обе причины намеренно неразличимы для клиента.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)

	// UpdateProfile обновляет имя, телефон и профиль пользователя.
	UpdateProfile(ctx context.Context, userUID, name, phone string, p models.Profile) error

	// UpdateLastLogin фиксирует время последнего входа.
	UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error
}

// AuthService отвечает за регистрацию, авторизацию и валидацию сессионных токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// NormalizeEmail приводит email к хранимой форме: обрезанный и в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя с хэшированием пароля и членством
// на бесплатном уровне, затем выпускает сессионный токен.
// Пароль хэшируется ровно здесь и больше нигде.
func (s *AuthService) Register(ctx context.Context, email, rawPassword, name, phone string) (*models.User, string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", err
	}
	user := models.User{
		Email:        NormalizeEmail(email),
		Name:         name,
		Phone:        phone,
		PasswordHash: hashed,
		Membership:   models.Membership{Type: models.MembershipFree},
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.UID = uid

	token, err := s.jwtMaker.GenerateToken(uid, user.Email)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login проверяет пароль пользователя и выпускает сессионный токен.
// Возвращает ErrInvalidCredentials и для неизвестного email,
// и для неверного пароля. Отказ хранилища не маскируется под
// неверные учетные данные, а отдается наверх как есть.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "services.Login"

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if !password.Verify(user.PasswordHash, rawPassword) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return nil, "", err
	}

	// Отметка о входе не должна ломать аутентификацию.
	_ = s.users.UpdateLastLogin(ctx, user.UID, time.Now().UTC())

	return user, token, nil
}

// ValidateToken проверяет сессионный токен и возвращает claims пользователя.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}

// GetUser возвращает пользователя по UID.
func (s *AuthService) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	return s.users.GetUser(ctx, userUID)
}

// UpdateProfile обновляет имя, телефон и профессиональный профиль.
// Email, пароль и членство через этот путь изменить нельзя.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID, name, phone string, p models.Profile) (*models.User, error) {
	if err := s.users.UpdateProfile(ctx, userUID, name, phone, p); err != nil {
		return nil, err
	}
	return s.users.GetUser(ctx, userUID)
}
