package userrole

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateUserRole(ctx context.Context, caller models.Caller, userUID, role string) error {
	return m.Called(ctx, caller, userUID, role).Error(0)
}

func TestUserRoleHandler(t *testing.T) {
	const uid = "9b2e7c1a-0000-4000-8000-0000000000aa"
	admin := models.Caller{UserUID: "u-admin", Role: models.RoleAdmin}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		uid            string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "повышение до администратора",
			uid:  uid,
			body: `{"role":"admin"}`,
			setupMock: func(m *MockService) {
				m.On("UpdateUserRole", mock.Anything, admin, uid, models.RoleAdmin).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "неизвестная роль",
			uid:            uid,
			body:           `{"role":"root"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "некорректный uid",
			uid:            "nope",
			body:           `{"role":"admin"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "понижение самого себя",
			uid:  uid,
			body: `{"role":"user"}`,
			setupMock: func(m *MockService) {
				m.On("UpdateUserRole", mock.Anything, admin, uid, models.RoleUser).
					Return(fmt.Errorf("op: %w", services.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/admin/users/"+tt.uid+"/role", bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("uid", tt.uid)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req.WithContext(middlewarectx.WithCaller(ctx, admin)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
