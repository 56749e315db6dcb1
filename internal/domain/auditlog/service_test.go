package auditlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Append(ctx context.Context, e *Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Entry), args.Error(1)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) ReportAuditFailure(ctx context.Context, err error, e Entry) {
	m.Called(ctx, err, e)
}

func TestService_Record(t *testing.T) {
	mockRepo := new(MockRepository)
	reporter := new(MockReporter)
	service := NewService(mockRepo, reporter, slog.Default())

	mockRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *Entry) bool {
		return e.EventType == EventSync && e.UserID == "anonymous" && e.SurveyCount == 3
	})).Return(nil)

	err := service.Record(context.Background(), Entry{UserID: "anonymous", DeviceID: "d1", SurveyCount: 3, Success: true})
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
	reporter.AssertNotCalled(t, "ReportAuditFailure", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Record_StoreFailureIsReported(t *testing.T) {
	mockRepo := new(MockRepository)
	reporter := new(MockReporter)
	service := NewService(mockRepo, reporter, slog.Default())

	storeErr := errors.New("connection refused")
	mockRepo.On("Append", mock.Anything, mock.Anything).Return(storeErr)
	reporter.On("ReportAuditFailure", mock.Anything, storeErr, mock.MatchedBy(func(e Entry) bool {
		return e.DeviceID == "d1"
	})).Return()

	err := service.Record(context.Background(), Entry{UserID: "u1", DeviceID: "d1"})
	assert.ErrorIs(t, err, storeErr)

	reporter.AssertExpectations(t)
}

func TestService_Record_NilReporter(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, nil, slog.Default())

	mockRepo.On("Append", mock.Anything, mock.Anything).Return(errors.New("boom"))

	assert.Error(t, service.Record(context.Background(), Entry{UserID: "u1"}))
}

func TestService_Record_RequiresActor(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, nil, slog.Default())

	err := service.Record(context.Background(), Entry{DeviceID: "d1"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	mockRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestService_Recent(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "default limit", limit: 0, wantLimit: DefaultRecentLimit},
		{name: "negative limit", limit: -5, wantLimit: DefaultRecentLimit},
		{name: "explicit limit", limit: 10, wantLimit: 10},
		{name: "capped limit", limit: 5000, wantLimit: MaxRecentLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := NewService(mockRepo, nil, slog.Default())

			mockRepo.On("Recent", mock.Anything, tt.wantLimit).Return(nil, nil)

			entries, err := service.Recent(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.NotNil(t, entries)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Recent_Error(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, nil, slog.Default())

	mockRepo.On("Recent", mock.Anything, DefaultRecentLimit).Return(nil, errors.New("database error"))

	_, err := service.Recent(context.Background(), 0)
	assert.ErrorContains(t, err, "database error")
}
