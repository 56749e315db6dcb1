package survey

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"farmsurvey/internal/domain/survey"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service         survey.Servicer
	log             *slog.Logger
	middleware      huma.Middlewares
	writeMiddleware huma.Middlewares
}

// NewHandler middleware применяется к чтению, writeMiddleware к удалению
func NewHandler(service survey.Servicer, log *slog.Logger, middleware, writeMiddleware huma.Middlewares) *Handler {
	return &Handler{
		service:         service,
		log:             log.With("component", "survey_handler"),
		middleware:      middleware,
		writeMiddleware: writeMiddleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.nearbyOp(), h.nearby)
	huma.Register(api, h.statsOp(), h.stats)
	huma.Register(api, h.exportOp(), h.export)
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	filter, err := input.FilterParams.toFilter()
	if err != nil {
		return nil, err
	}
	filter.Page = input.Page
	filter.Limit = input.Limit

	page, err := h.service.List(ctx, filter)
	if err != nil {
		return nil, h.fail(err)
	}

	surveys := page.Surveys
	if surveys == nil {
		surveys = []survey.Survey{}
	}

	return &listOutput{
		Body: ListResponse{
			Status:     "Ok",
			Surveys:    surveys,
			Total:      page.Total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
		},
	}, nil
}

func (h *Handler) nearby(ctx context.Context, input *nearbyInput) (*nearbyOutput, error) {
	found, err := h.service.FindNearby(ctx, input.Lat, input.Lng, input.Radius)
	if err != nil {
		return nil, h.fail(err)
	}
	if found == nil {
		found = []survey.Nearby{}
	}

	return &nearbyOutput{
		Body: NearbyResponse{Status: "Ok", Count: len(found), Surveys: found},
	}, nil
}

func (h *Handler) stats(ctx context.Context, _ *statsInput) (*statsOutput, error) {
	st, err := h.service.Statistics(ctx)
	if err != nil {
		return nil, h.fail(err)
	}
	return &statsOutput{Body: StatsResponse{Status: "Ok", Stats: st}}, nil
}

func (h *Handler) get(ctx context.Context, input *idInput) (*getOutput, error) {
	s, err := h.service.Get(ctx, input.ID)
	if err != nil {
		return nil, h.fail(err)
	}
	return &getOutput{Body: GetResponse{Status: "Ok", Survey: s}}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*deleteOutput, error) {
	if err := h.service.Delete(ctx, input.ID); err != nil {
		return nil, h.fail(err)
	}
	return &deleteOutput{
		Body: DeleteResponse{Status: "Ok", Message: fmt.Sprintf("survey %d deleted", input.ID)},
	}, nil
}

func (h *Handler) export(ctx context.Context, input *exportInput) (*exportOutput, error) {
	filter, err := input.FilterParams.toFilter()
	if err != nil {
		return nil, err
	}
	if err := survey.NormalizeFilter(&filter); err != nil {
		return nil, h.fail(err)
	}

	name := "surveys-" + time.Now().UTC().Format(dateLayout) + ".csv"

	return &exportOutput{
		ContentType:        "text/csv; charset=utf-8",
		ContentDisposition: "attachment; filename=" + strconv.Quote(name),
		Body: func(hctx huma.Context) {
			n, err := h.service.ExportCSV(hctx.Context(), filter, hctx.BodyWriter())
			if err != nil {
				// заголовки уже отправлены, остается только лог
				h.log.Error("csv export interrupted", "rows", n, "error", err)
				return
			}
			h.log.Info("csv export completed", "rows", n)
		},
	}, nil
}

// fail переводит доменные ошибки в HTTP-статусы
func (h *Handler) fail(err error) error {
	switch {
	case errors.Is(err, survey.ErrNotFound):
		return huma.Error404NotFound("survey not found")
	case errors.Is(err, survey.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	default:
		h.log.Error("survey request failed", "error", err)
		return huma.Error500InternalServerError("internal error")
	}
}

func (p FilterParams) toFilter() (survey.Filter, error) {
	f := survey.Filter{
		Search:  p.Search,
		Island:  p.Island,
		Village: p.Village,
		UserID:  p.UserID,
	}

	if p.StartDate != "" {
		t, _, err := parseDate(p.StartDate)
		if err != nil {
			return f, huma.Error400BadRequest("invalid start_date", err)
		}
		f.StartDate = &t
	}

	if p.EndDate != "" {
		t, dateOnly, err := parseDate(p.EndDate)
		if err != nil {
			return f, huma.Error400BadRequest("invalid end_date", err)
		}
		if dateOnly {
			// конец дня включительно
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.EndDate = &t
	}

	return f, nil
}

func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
