package login

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	args := m.Called(ctx, req)
	var user *models.User
	if u := args.Get(1); u != nil {
		user = u.(*models.User)
	}
	return args.String(0), user, args.Error(2)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	creds := models.LoginRequest{Username: "alice", Password: "secret123"}

	t.Run("успешный вход", func(t *testing.T) {
		m := new(AuthServiceMock)
		m.On("Login", mock.Anything, creds).
			Return("jwt-token", &models.User{UUID: "uid-1", Username: "alice", Role: models.RoleUser}, nil).Once()

		rec := doLogin(t, New(logger, m), creds)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got struct {
			Status string         `json:"status"`
			Data   map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "OK", got.Status)
		assert.Equal(t, "jwt-token", got.Data["token"])
		assert.Equal(t, "uid-1", got.Data["uid"])
		assert.Equal(t, "user", got.Data["role"])
		m.AssertExpectations(t)
	})

	t.Run("неверные учетные данные", func(t *testing.T) {
		m := new(AuthServiceMock)
		m.On("Login", mock.Anything, creds).
			Return("", nil, fmt.Errorf("auth.Login: %w", auth.ErrInvalidCredentials)).Once()

		rec := doLogin(t, New(logger, m), creds)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"status":"Error","error":"invalid credentials"}`, rec.Body.String())
		m.AssertExpectations(t)
	})

	t.Run("пустой пароль", func(t *testing.T) {
		m := new(AuthServiceMock)

		rec := doLogin(t, New(logger, m), models.LoginRequest{Username: "alice"})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "field Password is a required field")
		m.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func doLogin(t *testing.T, h http.Handler, body models.LoginRequest) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(raw))
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
