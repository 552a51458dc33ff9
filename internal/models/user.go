// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и пользовательские настройки.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Границы окна напоминаний о платеже, в днях.
const (
	DefaultReminderDays = 3
	MaxReminderDays     = 30
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID                 string    `json:"uid"`                  // Уникальный идентификатор пользователя
	Email                string    `json:"email"`                // Электронная почта
	Username             string    `json:"username"`             // Имя пользователя (уникальное)
	PasswordHash         string    `json:"-"`                    // Хэш пароля пользователя
	Role                 string    `json:"role"`                 // Роль пользователя, admin или user
	Currency             string    `json:"currency"`             // Валюта отображения сумм
	NotificationsEnabled bool      `json:"notificationsEnabled"` // Отправлять ли напоминания о платежах
	ReminderDays         int       `json:"reminderDays"`         // За сколько дней до платежа напоминать
	CreatedAt            time.Time `json:"createdAt"`
}

// Settings — пользовательские настройки со страницы настроек.
type Settings struct {
	Email                string `json:"email"`
	Currency             string `json:"currency"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	ReminderDays         int    `json:"reminderDays"`
}

// Caller описывает пользователя, от имени которого выполняется запрос.
// Передаётся явно через все слои вместо глобального «текущего пользователя».
type Caller struct {
	UserUID  string
	Username string
	Role     string
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// RegisterRequest — тело запроса регистрации.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest — тело запроса входа.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SettingsRequest — тело запроса обновления настроек.
type SettingsRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Currency             string `json:"currency" validate:"required,len=3,alpha"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	ReminderDays         int    `json:"reminderDays,omitempty" validate:"omitempty,min=1,max=30"` // по умолчанию 3
}

// PasswordRequest — тело запроса смены пароля.
type PasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// RoleRequest — тело запроса смены роли пользователя администратором.
type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
