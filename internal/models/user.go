// Package models содержит доменные структуры пользователя и его членства.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Тип членства пользователя. Поле хранится как есть и не сбрасывается
// при истечении окна: актуальность всегда проверяется по дате окончания.
const (
	// MembershipFree бесплатный уровень, выставляется при регистрации.
	MembershipFree = "free"
	// MembershipPremium платный уровень с ограниченным по времени окном.
	MembershipPremium = "premium"
)

// Способы оплаты, записываемые в PaymentDetails.
const (
	// PaymentMethodUPI оплата через UPI по подтвержденному transaction id.
	PaymentMethodUPI = "UPI"
	// PaymentMethodFree бесплатный грант за подтвержденный опыт работы.
	PaymentMethodFree = "Experience-based Free Membership"
)

// FreeMembershipTransactionID фиктивный transaction id для бесплатного гранта.
const FreeMembershipTransactionID = "FREE_MEMBERSHIP"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта (уникальная, в нижнем регистре)
	Name         string     // Имя пользователя
	Phone        string     // Телефон (опционально)
	PasswordHash string     // Хэш пароля, никогда не отдается клиенту
	Profile      Profile    // Профессиональный профиль
	Membership   Membership // Текущее состояние членства
	LastLogin    *time.Time // Дата последнего входа
	CreatedAt    time.Time  // Дата регистрации
}

// Profile описывает профессиональный профиль пользователя.
type Profile struct {
	CurrentRole string     `json:"current_role,omitempty"`
	Experience  Experience `json:"experience"`
	Skills      []string   `json:"skills,omitempty"`
	Location    string     `json:"location,omitempty"`
	Portfolio   string     `json:"portfolio,omitempty"`
	LinkedIn    string     `json:"linkedin,omitempty"`
}

// Experience заявленный стаж; участвует в правиле бесплатного гранта.
type Experience struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

// TotalMonths возвращает заявленный стаж в месяцах.
func (e Experience) TotalMonths() int {
	return e.Years*12 + e.Months
}

// Membership описывает состояние членства пользователя.
// Даты отсутствуют, пока ни один грант не выдавался.
type Membership struct {
	Type           string          `json:"type"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	PaymentDetails *PaymentDetails `json:"payment_details,omitempty"`
}

// PaymentDetails запись об оплате, породившей текущее окно членства.
type PaymentDetails struct {
	TransactionID string    `json:"transaction_id"`
	Amount        int       `json:"amount"`
	Date          time.Time `json:"date"`
	Method        string    `json:"method"`
}

// WelcomeEmail сообщение для очереди уведомлений о регистрации.
type WelcomeEmail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ApplicationConfirmation сообщение-подтверждение отклика на вакансию.
type ApplicationConfirmation struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`
}
