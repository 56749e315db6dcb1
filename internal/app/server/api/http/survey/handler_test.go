package survey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"farmsurvey/internal/domain/survey"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id int64) (*survey.Survey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*survey.Survey), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockService) List(ctx context.Context, filter survey.Filter) (*survey.Page, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*survey.Page), args.Error(1)
}

func (m *MockService) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]survey.Nearby, error) {
	args := m.Called(ctx, lat, lng, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]survey.Nearby), args.Error(1)
}

func (m *MockService) Statistics(ctx context.Context) (*survey.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*survey.Statistics), args.Error(1)
}

func (m *MockService) ExportCSV(ctx context.Context, filter survey.Filter, w io.Writer) (int, error) {
	args := m.Called(ctx, filter, w)
	return args.Int(0), args.Error(1)
}

func (m *MockService) InvalidateStatistics() {
	m.Called()
}

func newAPI(t *testing.T, svc survey.Servicer) humatest.TestAPI {
	_, api := humatest.New(t)
	NewHandler(svc, slog.Default(), huma.Middlewares{}, huma.Middlewares{}).SetupRoutes(api)
	return api
}

func TestHandler_List_Filters(t *testing.T) {
	svc := new(MockService)
	api := newAPI(t, svc)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)

	svc.On("List", mock.Anything, survey.Filter{
		Search:    "sione",
		Island:    "Vava'u",
		StartDate: &start,
		EndDate:   &end,
		Page:      2,
		Limit:     10,
	}).Return(&survey.Page{
		Surveys:    []survey.Survey{{ID: 11, FarmerName: "Sione"}},
		Total:      11,
		Page:       2,
		Limit:      10,
		TotalPages: 2,
	}, nil)

	resp := api.Get("/api/v1/surveys?search=sione&island=Vava%27u&start_date=2024-03-01&end_date=2024-03-31&page=2&limit=10")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"total_pages":2`)
	assert.Contains(t, resp.Body.String(), `"farmer_name":"Sione"`)
	svc.AssertExpectations(t)
}

func TestHandler_List_Defaults(t *testing.T) {
	svc := new(MockService)
	api := newAPI(t, svc)

	svc.On("List", mock.Anything, survey.Filter{Page: 1, Limit: 50}).
		Return(&survey.Page{Page: 1, Limit: 50}, nil)

	resp := api.Get("/api/v1/surveys")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"surveys":[]`)
}

func TestHandler_List_BadDate(t *testing.T) {
	api := newAPI(t, new(MockService))

	resp := api.Get("/api/v1/surveys?start_date=yesterday")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandler_Nearby(t *testing.T) {
	svc := new(MockService)
	api := newAPI(t, svc)

	svc.On("FindNearby", mock.Anything, -18.65, -173.98, 10.0).Return([]survey.Nearby{
		{Survey: survey.Survey{ID: 1}, DistanceKm: 0.4},
	}, nil)

	resp := api.Get("/api/v1/surveys/nearby?lat=-18.65&lng=-173.98")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"count":1`)
	assert.Contains(t, resp.Body.String(), `"distance_km":0.4`)

	resp = api.Get("/api/v1/surveys/nearby?lat=95&lng=0")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestHandler_Get(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil, nil)

	svc.On("Get", mock.Anything, int64(5)).Return(&survey.Survey{ID: 5, Photos: []survey.Photo{{ID: 1}}}, nil)
	svc.On("Get", mock.Anything, int64(6)).Return(nil, survey.ErrNotFound)

	out, err := h.get(context.Background(), &idInput{ID: 5})
	require.NoError(t, err)
	assert.Len(t, out.Body.Survey.Photos, 1)

	_, err = h.get(context.Background(), &idInput{ID: 6})
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.GetStatus())
}

func TestHandler_Delete(t *testing.T) {
	svc := new(MockService)
	api := newAPI(t, svc)

	svc.On("Delete", mock.Anything, int64(5)).Return(nil)
	svc.On("Delete", mock.Anything, int64(6)).Return(survey.ErrNotFound)
	svc.On("Delete", mock.Anything, int64(7)).Return(errors.New("db down"))

	assert.Equal(t, http.StatusOK, api.Delete("/api/v1/surveys/5").Code)
	assert.Equal(t, http.StatusNotFound, api.Delete("/api/v1/surveys/6").Code)
	assert.Equal(t, http.StatusInternalServerError, api.Delete("/api/v1/surveys/7").Code)
}

func TestHandler_Stats(t *testing.T) {
	svc := new(MockService)
	api := newAPI(t, svc)

	svc.On("Statistics", mock.Anything).Return(&survey.Statistics{TotalSurveys: 3}, nil)

	resp := api.Get("/api/v1/surveys/stats")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total_surveys":3`)
}

func TestHandler_ExportCSV(t *testing.T) {
	svc := new(MockService)
	api := newAPI(t, svc)

	svc.On("ExportCSV", mock.Anything, survey.Filter{Island: "Epi", Page: 1, Limit: 50}, mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(2).(io.Writer)
			_, _ = fmt.Fprint(w, "id,client_id\n1,c-1\n")
		}).
		Return(1, nil)

	resp := api.Get("/api/v1/surveys/export.csv?island=Epi")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "id,client_id\n1,c-1\n", resp.Body.String())
}

func TestHandler_ExportCSV_Filters(t *testing.T) {
	svc := new(MockService)
	api := newAPI(t, svc)

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	svc.On("ExportCSV", mock.Anything, survey.Filter{
		Search:    "taro",
		Village:   "Neiafu",
		UserID:    "mele",
		StartDate: &start,
		EndDate:   &end,
		Page:      1,
		Limit:     50,
	}, mock.Anything).Return(0, nil)

	resp := api.Get("/api/v1/surveys/export.csv?search=taro&village=Neiafu&user_id=mele&start_date=2024-05-01&end_date=2024-05-02T12:00:00Z")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	svc.AssertExpectations(t)
}

func TestHandler_ExportCSV_BadRange(t *testing.T) {
	api := newAPI(t, new(MockService))

	resp := api.Get("/api/v1/surveys/export.csv?start_date=2024-05-10&end_date=2024-05-01")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
