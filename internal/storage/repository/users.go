package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mediacareers/membership-service/internal/models"
)

const uniqueViolation = "23505"

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Членство всегда создается на бесплатном уровне без дат.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newUID string
	query := `INSERT INTO users (email, name, phone, password_hash, profile, membership_type)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Name, user.Phone, user.PasswordHash, profile,
		models.MembershipFree).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по его email (уже нормализованному).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := userSelect + ` WHERE email = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := userSelect + ` WHERE uid = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateProfile обновляет имя, телефон и профессиональный профиль пользователя.
// Email, пароль и членство данным методом не изменяются.
func (s *Storage) UpdateProfile(ctx context.Context, userUID, name, phone string, p models.Profile) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	profile, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE users
			  SET name = $2, phone = $3, profile = $4
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID, name, phone, profile)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// UpdateLastLogin фиксирует время последнего входа пользователя.
func (s *Storage) UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error {
	const op = "storage.UpdateLastLogin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET last_login = $2
			  WHERE uid = $1`
	_, err := s.DB.ExecContext(ctx, query, userUID, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GrantPremium условно выдает пользователю премиум-окно и возвращает число
// обновленных строк. Обновление проходит только если активного окна нет:
// проверка и запись выполняются одним оператором, поэтому из двух
// конкурентных запросов для одного пользователя выигрывает ровно один.
func (s *Storage) GrantPremium(ctx context.Context, userUID string, m models.Membership, now time.Time) (int64, error) {
	const op = "storage.GrantPremium"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET membership_type = $2,
			      membership_start_date = $3,
			      membership_end_date = $4,
			      payment_transaction_id = $5,
			      payment_amount = $6,
			      payment_date = $7,
			      payment_method = $8
			  WHERE uid = $1
			    AND (membership_type <> 'premium'
			         OR membership_end_date IS NULL
			         OR membership_end_date <= $9)`
	res, err := s.DB.ExecContext(ctx, query,
		userUID, m.Type, m.StartDate, m.EndDate,
		m.PaymentDetails.TransactionID, m.PaymentDetails.Amount,
		m.PaymentDetails.Date, m.PaymentDetails.Method, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

const userSelect = `SELECT uid, email, name, phone, password_hash, profile,
			      membership_type, membership_start_date, membership_end_date,
			      payment_transaction_id, payment_amount, payment_date, payment_method,
			      last_login, created_at
			  FROM users`

func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}

	var phone, paymentTransactionID, paymentMethod sql.NullString
	var paymentAmount sql.NullInt64
	var profile []byte
	var membershipStart, membershipEnd, paymentDate, lastLogin sql.NullTime

	if err := row.Scan(&u.UID, &u.Email, &u.Name, &phone, &u.PasswordHash, &profile,
		&u.Membership.Type, &membershipStart, &membershipEnd,
		&paymentTransactionID, &paymentAmount, &paymentDate, &paymentMethod,
		&lastLogin, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if phone.Valid {
		u.Phone = phone.String
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &u.Profile); err != nil {
			return nil, err
		}
	}
	if membershipStart.Valid {
		u.Membership.StartDate = &membershipStart.Time
	}
	if membershipEnd.Valid {
		u.Membership.EndDate = &membershipEnd.Time
	}
	if paymentTransactionID.Valid {
		u.Membership.PaymentDetails = &models.PaymentDetails{
			TransactionID: paymentTransactionID.String,
			Amount:        int(paymentAmount.Int64),
			Date:          paymentDate.Time,
			Method:        paymentMethod.String,
		}
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}
