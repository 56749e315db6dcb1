package user

import (
	"context"
	"errors"
	"testing"

	"farmsurvey/internal/domain/session"
	"farmsurvey/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, login, password string) (int, error) {
	args := m.Called(ctx, login, password)
	return args.Int(0), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, login, password string) (user.User, error) {
	args := m.Called(ctx, login, password)
	return args.Get(0).(user.User), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionService) Validate(ctx context.Context, token string) (session.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(session.Identity), args.Error(1)
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantError string
	}{
		{name: "ok"},
		{name: "taken", err: user.ErrLoginTaken, wantError: "login already taken"},
		{name: "internal", err: errors.New("pq: connection reset"), wantError: "registration failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			h := NewHandler(svc, new(MockSessionService), slog.Default(), nil)
			svc.On("Register", mock.Anything, "maria", "vavau2024").Return(7, tt.err)

			out, err := h.register(context.Background(), &registerInput{Body: Credentials{Login: "maria", Password: "vavau2024"}})
			require.NoError(t, err)

			if tt.wantError == "" {
				assert.Equal(t, "Ok", out.Body.Status)
				assert.Equal(t, 7, out.Body.ID)
				return
			}
			assert.Equal(t, "Error", out.Body.Status)
			assert.Equal(t, tt.wantError, out.Body.Error)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	svc := new(MockUserService)
	sess := new(MockSessionService)
	h := NewHandler(svc, sess, slog.Default(), nil)

	svc.On("Authenticate", mock.Anything, "maria", "vavau2024").Return(user.User{ID: 7, Login: "maria"}, nil)
	sess.On("Create", mock.Anything, 7).Return("tok", nil)

	out, err := h.login(context.Background(), &loginInput{Body: Credentials{Login: "maria", Password: "vavau2024"}})
	require.NoError(t, err)
	assert.Equal(t, "Ok", out.Body.Status)
	assert.Equal(t, "tok", out.Body.Token)
	assert.Equal(t, "maria", out.Body.Login)
	assert.Equal(t, 86400, out.Body.ExpiresIn)
}

func TestHandler_Login_Failures(t *testing.T) {
	svc := new(MockUserService)
	sess := new(MockSessionService)
	h := NewHandler(svc, sess, slog.Default(), nil)

	svc.On("Authenticate", mock.Anything, "maria", "wrong-pass1").Return(user.User{}, user.ErrInvalidAuth)
	out, err := h.login(context.Background(), &loginInput{Body: Credentials{Login: "maria", Password: "wrong-pass1"}})
	require.NoError(t, err)
	assert.Equal(t, "Invalid credentials", out.Body.Error)
	assert.Empty(t, out.Body.Token)

	svc.On("Authenticate", mock.Anything, "sione", "vavau2024").Return(user.User{ID: 8, Login: "sione"}, nil)
	sess.On("Create", mock.Anything, 8).Return("", errors.New("db down"))
	out, err = h.login(context.Background(), &loginInput{Body: Credentials{Login: "sione", Password: "vavau2024"}})
	require.NoError(t, err)
	assert.Equal(t, "Error", out.Body.Status)
	assert.Empty(t, out.Body.Token)
}
