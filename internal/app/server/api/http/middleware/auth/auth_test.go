package auth

import (
	"context"
	"net/http"
	"testing"

	"farmsurvey/internal/domain/session"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Create(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSession) Validate(ctx context.Context, token string) (session.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(session.Identity), args.Error(1)
}

type whoamiOutput struct {
	Body struct {
		Actor string `json:"actor"`
	}
}

func newTestAPI(t *testing.T, mw func(huma.Context, func(huma.Context))) humatest.TestAPI {
	_, api := humatest.New(t)
	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
		Middlewares: huma.Middlewares{mw},
	}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
		out := &whoamiOutput{}
		out.Body.Actor = Actor(ctx)
		return out, nil
	})
	return api
}

func TestAuth_Required(t *testing.T) {
	sess := new(MockSession)
	sess.On("Validate", mock.Anything, "good").Return(session.Identity{UserID: 7, Login: "maria"}, nil)
	sess.On("Validate", mock.Anything, "bad").Return(session.Identity{}, session.ErrInvalidSession)

	api := newTestAPI(t, New(sess, slog.Default()).Required())

	resp := api.Get("/whoami", "Authorization: Bearer good")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"actor":"maria"`)

	resp = api.Get("/whoami", "Authorization: Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/whoami")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/whoami", "Authorization: Basic Zm9vOmJhcg==")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_Optional(t *testing.T) {
	sess := new(MockSession)
	sess.On("Validate", mock.Anything, "good").Return(session.Identity{UserID: 7, Login: "maria"}, nil)
	sess.On("Validate", mock.Anything, "bad").Return(session.Identity{}, session.ErrInvalidSession)

	api := newTestAPI(t, New(sess, slog.Default()).Optional())

	resp := api.Get("/whoami")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"actor":""`)

	resp = api.Get("/whoami", "Authorization: Bearer good")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"actor":"maria"`)

	resp = api.Get("/whoami", "Authorization: Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetIdentity(t *testing.T) {
	_, ok := GetIdentity(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "", Actor(context.Background()))

	ctx := WithIdentity(context.Background(), session.Identity{UserID: 1, Login: "sione"})
	id, ok := GetIdentity(ctx)
	assert.True(t, ok)
	assert.Equal(t, "sione", id.Login)
	assert.Equal(t, "sione", Actor(ctx))
}
