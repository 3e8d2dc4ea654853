// Package services содержит бизнес-логику членства: выдачу премиум-окна,
// бесплатный грант за опыт и проверку действующего доступа.
//
// Сервис — единственное место, которому разрешено изменять поля членства.
// Проверка "уже активен" и запись выполняются одним условным UPDATE в
// хранилище, поэтому конкурентные запросы на выдачу не создают двух
// пересекающихся окон.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mediacareers/membership-service/internal/config"
	"github.com/mediacareers/membership-service/internal/models"
)

// Ошибки нарушения предусловий выдачи. Обработчики различают их через
// errors.Is и отвечают точными статусами без разбора текста сообщений.
var (
	// ErrAlreadyActive у пользователя уже есть действующее премиум-окно.
	ErrAlreadyActive = errors.New("membership already active")
	// ErrNotEligible заявленного стажа недостаточно для бесплатного гранта.
	ErrNotEligible = errors.New("not eligible for free membership")
)

// UserRepository определяет методы хранилища, нужные движку членства.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GrantPremium условно записывает премиум-окно, возвращая число обновленных строк.
	GrantPremium(ctx context.Context, userUID string, m models.Membership, now time.Time) (int64, error)
}

// Cache описывает методы для кэширования снимков членства.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// EntitlementService реализует бизнес-логику членства.
type EntitlementService struct {
	repo  UserRepository
	cache Cache
	cfg   config.Membership
	log   *slog.Logger
}

// Details агрегирует состояние членства для выдачи клиенту.
type Details struct {
	Membership      models.Membership `json:"membership"`
	IsActive        bool              `json:"is_active"`
	EligibleForFree bool              `json:"eligible_for_free"`
	Price           int               `json:"price"`
	DurationDays    int               `json:"duration_days"`
}

// снимок, который кладется в кэш: только хранимое состояние членства.
// Производные факты в кэш не попадают: IsActive пересчитывается при каждом
// чтении, а право на бесплатный грант зависит от профиля, который меняется
// мимо этого сервиса, и потому всегда считается от свежего пользователя.
type snapshot struct {
	Membership models.Membership `json:"membership"`
}

// NewEntitlementService создает новый экземпляр EntitlementService.
func NewEntitlementService(repo UserRepository, cache Cache, cfg config.Membership, log *slog.Logger) *EntitlementService {
	return &EntitlementService{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

// HasPremiumAccess возвращает true, если членство премиальное и окно еще
// не истекло. Единственная точка сравнения дат в репозитории: хранимый тип
// не сбрасывается при истечении, истина всегда выводится отсюда.
func HasPremiumAccess(m *models.Membership, now time.Time) bool {
	return m.Type == models.MembershipPremium && m.EndDate != nil && now.Before(*m.EndDate)
}

// IsEligibleForFreeMembership проверяет правило бесплатного гранта:
// заявленный стаж не меньше настроенного порога.
func (s *EntitlementService) IsEligibleForFreeMembership(u *models.User) bool {
	return u.Profile.Experience.TotalMonths() >= s.cfg.MinExperienceMonths
}

// ConfirmPayment выдает премиум-окно по подтвержденному transaction id.
// Платежный шлюз здесь не опрашивается: сервис доверяет переданному
// идентификатору транзакции. Возвращает ErrAlreadyActive при действующем окне.
func (s *EntitlementService) ConfirmPayment(ctx context.Context, userUID, transactionID string, amount int) (*models.Membership, error) {
	if _, err := s.repo.GetUser(ctx, userUID); err != nil {
		return nil, err
	}
	if amount == 0 {
		amount = s.cfg.Price
	}
	now := time.Now().UTC()
	return s.grant(ctx, userUID, now, models.PaymentDetails{
		TransactionID: transactionID,
		Amount:        amount,
		Date:          now,
		Method:        models.PaymentMethodUPI,
	})
}

// ClaimFree выдает одноразовый бесплатный грант за подтвержденный опыт.
// Возвращает ErrNotEligible при недостатке стажа и ErrAlreadyActive,
// если премиум-окно еще действует.
func (s *EntitlementService) ClaimFree(ctx context.Context, userUID string) (*models.Membership, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if !s.IsEligibleForFreeMembership(user) {
		return nil, ErrNotEligible
	}

	now := time.Now().UTC()
	return s.grant(ctx, userUID, now, models.PaymentDetails{
		TransactionID: models.FreeMembershipTransactionID,
		Amount:        0,
		Date:          now,
		Method:        models.PaymentMethodFree,
	})
}

// GetDetails возвращает состояние членства вместе с производными фактами:
// активность окна, право на бесплатный грант, цена и длительность.
// Пользователь всегда читается из хранилища: право на грант считается от
// актуального профиля и никогда не отдается из кэша. Попутно снимок членства
// записывается в кэш для премиум-гейта.
func (s *EntitlementService) GetDetails(ctx context.Context, userUID string) (*Details, error) {
	now := time.Now().UTC()

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	cacheKey := membershipCacheKey(userUID)
	if err := s.cache.Set(cacheKey, snapshot{Membership: user.Membership}, time.Hour); err != nil {
		s.log.Warn("failed to cache membership", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return &Details{
		Membership:      user.Membership,
		IsActive:        HasPremiumAccess(&user.Membership, now),
		EligibleForFree: s.IsEligibleForFreeMembership(user),
		Price:           s.cfg.Price,
		DurationDays:    s.cfg.WindowDays,
	}, nil
}

// HasActiveAccess отвечает, действует ли премиум-доступ сейчас. Используется
// премиум-гейтом на каждом запросе, поэтому снимок членства читается из кэша;
// членство меняется только через grant, и тот инвалидирует ключ.
func (s *EntitlementService) HasActiveAccess(ctx context.Context, userUID string) (bool, error) {
	now := time.Now().UTC()
	cacheKey := membershipCacheKey(userUID)

	var snap snapshot
	found, err := s.cache.Get(cacheKey, &snap)
	if err != nil {
		s.log.Warn("failed to read membership cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return HasPremiumAccess(&snap.Membership, now), nil
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return false, err
	}
	if err := s.cache.Set(cacheKey, snapshot{Membership: user.Membership}, time.Hour); err != nil {
		s.log.Warn("failed to cache membership", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return HasPremiumAccess(&user.Membership, now), nil
}

func (s *EntitlementService) grant(ctx context.Context, userUID string, now time.Time, payment models.PaymentDetails) (*models.Membership, error) {
	endDate := now.AddDate(0, 0, s.cfg.WindowDays)
	membership := models.Membership{
		Type:           models.MembershipPremium,
		StartDate:      &now,
		EndDate:        &endDate,
		PaymentDetails: &payment,
	}

	count, err := s.repo.GrantPremium(ctx, userUID, membership, now)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		// Обновление не прошло условие "нет активного окна": либо окно уже
		// действует, либо конкурентный запрос успел первым.
		return nil, ErrAlreadyActive
	}

	s.log.Info("premium membership granted",
		slog.String("user_uid", userUID),
		slog.String("method", payment.Method),
		slog.Time("end_date", endDate))

	cacheKey := membershipCacheKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate membership cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return &membership, nil
}

func membershipCacheKey(userUID string) string {
	return fmt.Sprintf("membership:%s", userUID)
}
