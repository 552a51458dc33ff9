// Package middlewarectx содержит HTTP middleware приложения и ключи контекста,
// через которые обработчики получают вызывающего пользователя.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User — ключ для имени пользователя в контексте
	User Key = "username"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
)

// WithCaller кладет данные пользователя в контекст.
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	ctx = context.WithValue(ctx, UserUID, caller.UserUID)
	ctx = context.WithValue(ctx, User, caller.Username)
	return context.WithValue(ctx, Role, caller.Role)
}

// CallerFromContext достает пользователя, положенного JWTMiddleware.
func CallerFromContext(ctx context.Context) (models.Caller, bool) {
	uid, _ := ctx.Value(UserUID).(string)
	if uid == "" {
		return models.Caller{}, false
	}
	username, _ := ctx.Value(User).(string)
	role, _ := ctx.Value(Role).(string)
	return models.Caller{UserUID: uid, Username: username, Role: role}, true
}
