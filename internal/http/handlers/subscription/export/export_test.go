package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ExportUpcoming(ctx context.Context, caller models.Caller, horizonDays int, filter models.PaymentFilter) ([]byte, error) {
	args := m.Called(ctx, caller, horizonDays, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestExportHandler(t *testing.T) {
	caller := models.Caller{UserUID: "u-alice", Role: models.RoleUser}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	csvBody := []byte("Service Name,Amount\nNetflix,15.99\n")

	tests := []struct {
		name           string
		query          string
		withCaller     bool
		setupMock      func(svc *MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:       "успешная выгрузка",
			query:      "?amount=low&urgency=overdue",
			withCaller: true,
			setupMock: func(svc *MockService) {
				svc.On("ExportUpcoming", mock.Anything, caller, 30, models.PaymentFilter{Amount: "low", Urgency: "overdue"}).
					Return(csvBody, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   string(csvBody),
		},
		{
			name:           "нет пользователя",
			withCaller:     false,
			setupMock:      func(svc *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "некорректный горизонт",
			query:          "?days=soon",
			withCaller:     true,
			setupMock:      func(svc *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "ошибка сервиса",
			withCaller: true,
			setupMock: func(svc *MockService) {
				svc.On("ExportUpcoming", mock.Anything, caller, 30, models.PaymentFilter{}).
					Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/subscriptions/upcoming/export"+tt.query, nil)
			if tt.withCaller {
				req = req.WithContext(middlewarectx.WithCaller(req.Context(), caller))
			}
			w := httptest.NewRecorder()

			New(logger, svc, 30).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
				assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
				assert.Contains(t, w.Header().Get("Content-Disposition"), FileName)
			}
			svc.AssertExpectations(t)
		})
	}
}
