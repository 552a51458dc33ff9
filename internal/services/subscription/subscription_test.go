package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) ReadSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *RepoMock) RemoveSubscription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RepoMock) ListSubscriptions(ctx context.Context, userUID string) ([]models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) ListAllSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

var (
	fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	alice    = models.Caller{UserUID: "u-alice", Username: "alice", Role: models.RoleUser}
	bob      = models.Caller{UserUID: "u-bob", Username: "bob", Role: models.RoleUser}
	admin    = models.Caller{UserUID: "u-admin", Username: "root", Role: models.RoleAdmin}
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(r *RepoMock, c *CacheMock) *Service {
	return NewService(r, c, newNoopLogger(), WithClock(func() time.Time { return fixedNow }), WithCacheTTL(time.Minute))
}

func netflix() *models.Subscription {
	return &models.Subscription{
		ID:              "s1",
		UserUID:         alice.UserUID,
		ServiceName:     "Netflix",
		Cost:            decimal.RequireFromString("15.99"),
		BillingCycle:    models.CycleMonthly,
		NextPaymentDate: models.NewDate(2024, 3, 12),
		IsRecurring:     true,
		Status:          "active",
		CreatedAt:       models.NewDate(2024, 1, 1),
	}
}

func validRequest() models.SubscriptionRequest {
	return models.SubscriptionRequest{
		ServiceName:     " Netflix ",
		Cost:            decimal.RequireFromString("15.99"),
		BillingCycle:    "Monthly",
		NextPaymentDate: "2024-03-12",
		IsRecurring:     true,
	}
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		req        func() models.SubscriptionRequest
		setupMocks func(r *RepoMock, c *CacheMock)
		wantID     string
		wantErr    error
	}{
		{
			name: "success create",
			req:  validRequest,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
					return s.ServiceName == "Netflix" &&
						s.UserUID == alice.UserUID &&
						s.BillingCycle == models.CycleMonthly &&
						s.Status == "active" &&
						s.NextPaymentDate == models.NewDate(2024, 3, 12)
				})).Return("s1", nil).Once()
				c.On("Invalidate", mock.Anything, "subscriptions:u-alice").Return(nil).Once()
			},
			wantID: "s1",
		},
		{
			name: "negative cost",
			req: func() models.SubscriptionRequest {
				req := validRequest()
				req.Cost = decimal.NewFromInt(-1)
				return req
			},
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			wantErr:    services.ErrInvalidInput,
		},
		{
			name: "invalid date",
			req: func() models.SubscriptionRequest {
				req := validRequest()
				req.NextPaymentDate = "12.03.2024"
				return req
			},
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			wantErr:    services.ErrInvalidInput,
		},
		{
			name: "cache failure does not fail create",
			req:  validRequest,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("CreateSubscription", mock.Anything, mock.Anything).Return("s2", nil).Once()
				c.On("Invalidate", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()
			},
			wantID: "s2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := new(RepoMock), new(CacheMock)
			tt.setupMocks(r, c)

			id, err := newService(r, c).Create(context.Background(), alice, tt.req())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			r.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_OwnerChecks(t *testing.T) {
	t.Run("owner reads", func(t *testing.T) {
		r, c := new(RepoMock), new(CacheMock)
		r.On("ReadSubscription", mock.Anything, "s1").Return(netflix(), nil)

		sub, err := newService(r, c).Read(context.Background(), alice, "s1")
		require.NoError(t, err)
		assert.Equal(t, "Netflix", sub.ServiceName)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		r, c := new(RepoMock), new(CacheMock)
		r.On("ReadSubscription", mock.Anything, "s1").Return(netflix(), nil)
		svc := newService(r, c)

		_, err := svc.Read(context.Background(), bob, "s1")
		assert.ErrorIs(t, err, services.ErrForbidden)

		err = svc.Remove(context.Background(), bob, "s1")
		assert.ErrorIs(t, err, services.ErrForbidden)
		r.AssertNotCalled(t, "RemoveSubscription", mock.Anything, mock.Anything)
	})

	t.Run("admin removes and invalidates owner cache", func(t *testing.T) {
		r, c := new(RepoMock), new(CacheMock)
		r.On("ReadSubscription", mock.Anything, "s1").Return(netflix(), nil)
		r.On("RemoveSubscription", mock.Anything, "s1").Return(nil).Once()
		c.On("Invalidate", mock.Anything, "subscriptions:u-alice").Return(nil).Once()

		require.NoError(t, newService(r, c).Remove(context.Background(), admin, "s1"))
		r.AssertExpectations(t)
		c.AssertExpectations(t)
	})
}

func TestService_Update(t *testing.T) {
	r, c := new(RepoMock), new(CacheMock)
	r.On("ReadSubscription", mock.Anything, "s1").Return(netflix(), nil)
	r.On("UpdateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
		return s.ID == "s1" && s.UserUID == alice.UserUID && s.Status == "cancelled" &&
			s.CreatedAt == models.NewDate(2024, 1, 1)
	})).Return(nil).Once()
	c.On("Invalidate", mock.Anything, "subscriptions:u-alice").Return(nil).Once()

	req := validRequest()
	req.Status = "cancelled"
	sub, err := newService(r, c).Update(context.Background(), alice, "s1", req)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", sub.Status)
	r.AssertExpectations(t)
}

func TestService_ListUsesCache(t *testing.T) {
	gym := models.Subscription{ID: "s2", ServiceName: "Gym", Cost: decimal.NewFromInt(40), BillingCycle: "monthly"}

	r, c := new(RepoMock), new(CacheMock)
	c.On("Get", mock.Anything, "subscriptions:u-alice", mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]models.Subscription)
		*out = []models.Subscription{*netflix(), gym}
	})

	got, err := newService(r, c).List(context.Background(), alice, models.Criteria{Sort: models.SortCostHigh})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Gym", got[0].ServiceName)
	r.AssertNotCalled(t, "ListSubscriptions", mock.Anything, mock.Anything)
}

func TestService_StatsFromRepository(t *testing.T) {
	r, c := new(RepoMock), new(CacheMock)
	c.On("Get", mock.Anything, "subscriptions:u-alice", mock.Anything).Return(false, errors.New("redis down"))
	r.On("ListSubscriptions", mock.Anything, alice.UserUID).Return([]models.Subscription{*netflix()}, nil).Once()
	c.On("Set", mock.Anything, "subscriptions:u-alice", mock.Anything, time.Minute).Return(nil).Once()

	stats, err := newService(r, c).Stats(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.DueThisWeek)
	assert.True(t, decimal.RequireFromString("15.99").Equal(stats.MonthlySpend))
	r.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestService_UpcomingAndReport(t *testing.T) {
	r, c := new(RepoMock), new(CacheMock)
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	r.On("ListSubscriptions", mock.Anything, alice.UserUID).Return([]models.Subscription{*netflix()}, nil)
	c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := newService(r, c)

	upcoming, err := svc.Upcoming(context.Background(), alice, 30, models.PaymentFilter{})
	require.NoError(t, err)
	require.Len(t, upcoming.Payments, 1)
	assert.Equal(t, models.UrgencyDueSoon, upcoming.Payments[0].Urgency)
	assert.Equal(t, 1, upcoming.DueSoon)

	upcoming, err = svc.Upcoming(context.Background(), alice, 30, models.PaymentFilter{Amount: models.AmountHigh})
	require.NoError(t, err)
	assert.Empty(t, upcoming.Payments)
	assert.Equal(t, 1, upcoming.DueSoon)

	report, err := svc.Report(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, report.ByCategory, 1)
	assert.Equal(t, models.DefaultCategory, report.ByCategory[0].Category)
	require.Len(t, report.TopByCost, 1)
	assert.Equal(t, "Netflix", report.TopByCost[0].ServiceName)
}

func TestService_ExportUpcoming(t *testing.T) {
	r, c := new(RepoMock), new(CacheMock)
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	r.On("ListSubscriptions", mock.Anything, alice.UserUID).Return([]models.Subscription{*netflix()}, nil)
	r.On("GetUserByUID", mock.Anything, alice.UserUID).Return(&models.User{UUID: alice.UserUID, Currency: "EUR"}, nil).Once()

	out, err := newService(r, c).ExportUpcoming(context.Background(), alice, 30, models.PaymentFilter{})
	require.NoError(t, err)
	assert.Equal(t,
		"Service Name,Amount,Currency,Next Payment Date,Billing Cycle,Category,Status\n"+
			"Netflix,15.99,EUR,2024-03-12,monthly,Other,due-soon\n",
		string(out))
	r.AssertExpectations(t)
}

func TestService_ExportUpcomingUserError(t *testing.T) {
	r, c := new(RepoMock), new(CacheMock)
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	r.On("ListSubscriptions", mock.Anything, alice.UserUID).Return([]models.Subscription{*netflix()}, nil)
	r.On("GetUserByUID", mock.Anything, alice.UserUID).Return(nil, errors.New("db down"))

	_, err := newService(r, c).ExportUpcoming(context.Background(), alice, 30, models.PaymentFilter{})
	assert.Error(t, err)
}

func TestService_AdminStats(t *testing.T) {
	r, c := new(RepoMock), new(CacheMock)
	r.On("ListAllSubscriptions", mock.Anything).Return([]models.Subscription{*netflix(), *netflix()}, nil)
	svc := newService(r, c)

	_, err := svc.AdminStats(context.Background(), alice)
	assert.ErrorIs(t, err, services.ErrForbidden)

	stats, err := svc.AdminStats(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}
