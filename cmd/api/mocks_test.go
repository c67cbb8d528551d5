package main

import (
	"context"
	"net/http"
	"time"

	"bizreviews/internal/store"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// ----------------------------------------------------------------------------
// Store mocks
// ----------------------------------------------------------------------------

type mockReviewStore struct {
	mock.Mock
}

func (m *mockReviewStore) Create(ctx context.Context, review *store.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewStore) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockReviewStore) List(ctx context.Context, filter store.Filter) ([]store.Review, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Review), args.Error(1)
}

func (m *mockReviewStore) Stats(ctx context.Context) (*store.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Stats), args.Error(1)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Create(ctx context.Context, session *store.AdminSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionStore) Get(ctx context.Context, token string) (*store.AdminSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.AdminSession), args.Error(1)
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockSessionStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockCredentialStore struct {
	mock.Mock
}

func (m *mockCredentialStore) Get(ctx context.Context) (*store.AdminCredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.AdminCredential), args.Error(1)
}

func (m *mockCredentialStore) Create(ctx context.Context, cred *store.AdminCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

type mockCsrfStore struct {
	mock.Mock
}

func (m *mockCsrfStore) Issue(ctx context.Context, sessionID, token string) (string, error) {
	args := m.Called(ctx, sessionID, token)
	return args.String(0), args.Error(1)
}

func (m *mockCsrfStore) Get(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, sourceIP string) (bool, time.Duration, error) {
	args := m.Called(ctx, sourceIP)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

// ----------------------------------------------------------------------------
// Test application
// ----------------------------------------------------------------------------

type testMocks struct {
	reviews     *mockReviewStore
	sessions    *mockSessionStore
	credentials *mockCredentialStore
	csrf        *mockCsrfStore
	limiter     *mockLimiter
}

func newTestApplication() (*application, *testMocks) {
	mocks := &testMocks{
		reviews:     new(mockReviewStore),
		sessions:    new(mockSessionStore),
		credentials: new(mockCredentialStore),
		csrf:        new(mockCsrfStore),
		limiter:     new(mockLimiter),
	}

	app := &application{
		config: config{
			env: "test",
			auth: authConfig{
				session: sessionConfig{ttl: 24 * time.Hour},
			},
		},
		logger: zap.NewNop().Sugar(),
		store: store.Storage{
			Reviews:     mocks.reviews,
			Sessions:    mocks.sessions,
			Credentials: mocks.credentials,
			Csrf:        mocks.csrf,
		},
		rateLimiter: mocks.limiter,
	}
	return app, mocks
}

func withClientSession(r *http.Request, sessionID string) *http.Request {
	r.AddCookie(&http.Cookie{Name: clientSessionCookie, Value: sessionID})
	return r
}
