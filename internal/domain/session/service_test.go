package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository мок Repository для тестов сервиса
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) Validate(ctx context.Context, tokenHash string) (Identity, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(Identity), args.Error(1)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	var savedHash string
	mockRepo.On("Create", mock.Anything, 7, mock.AnythingOfType("string"), now.Add(TTL)).
		Run(func(args mock.Arguments) { savedHash = args.String(2) }).
		Return(nil)

	token, err := service.Create(context.Background(), 7)
	require.NoError(t, err)
	// 32 байта в base64 с паддингом
	assert.Len(t, token, 44)
	assert.Equal(t, hashToken(token), savedHash)
	assert.NotEqual(t, token, savedHash)

	mockRepo.AssertExpectations(t)
}

func TestService_Create_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Create", mock.Anything, 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("database error"))

	_, err := service.Create(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
}

func TestService_Validate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	identity := Identity{UserID: 7, Login: "maria"}
	mockRepo.On("Validate", mock.Anything, hashToken("token-1")).Return(identity, nil)

	got, err := service.Validate(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestService_Validate_Invalid(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Validate", mock.Anything, mock.AnythingOfType("string")).Return(Identity{}, ErrInvalidSession)

	_, err := service.Validate(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = service.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
	mockRepo.AssertNumberOfCalls(t, "Validate", 1)
}

func TestService_CreateAndValidate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	var savedHash string
	mockRepo.On("Create", mock.Anything, 7, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { savedHash = args.String(2) }).
		Return(nil)

	token, err := service.Create(context.Background(), 7)
	require.NoError(t, err)

	mockRepo.On("Validate", mock.Anything, savedHash).Return(Identity{UserID: 7, Login: "maria"}, nil)

	identity, err := service.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 7, identity.UserID)
}
