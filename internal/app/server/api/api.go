// POST   /api/v1/user/register   # Регистрация счетчика (публичный)
// POST   /api/v1/user/login      # Логин (публичный)
// POST   /api/v1/sync            # Пакетная синхронизация (токен необязателен)
// GET    /api/v1/sync/logs       # Журнал синхронизаций (auth)
// GET    /api/v1/sync/live       # websocket-лента событий синхронизации
// GET    /api/v1/surveys         # Список записей с фильтрами
// GET    /api/v1/surveys/nearby  # Записи в радиусе от точки
// GET    /api/v1/surveys/stats   # Агрегаты для панели
// GET    /api/v1/surveys/export.csv
// GET    /api/v1/surveys/{id}
// DELETE /api/v1/surveys/{id}    # Удаление с фотографиями (auth)
// GET    /api/v1/health
// GET    /metrics

package api

import (
	"net/http"

	"farmsurvey/internal/app/server/api/http/health"
	"farmsurvey/internal/app/server/api/http/middleware"
	"farmsurvey/internal/app/server/api/http/middleware/auth"
	"farmsurvey/internal/app/server/api/http/middleware/logger"
	"farmsurvey/internal/app/server/api/http/middleware/ratelimit"
	surveyAPI "farmsurvey/internal/app/server/api/http/survey"
	syncAPI "farmsurvey/internal/app/server/api/http/sync"
	userAPI "farmsurvey/internal/app/server/api/http/user"
	"farmsurvey/internal/app/server/config"
	"farmsurvey/internal/domain/auditlog"
	"farmsurvey/internal/domain/session"
	"farmsurvey/internal/domain/survey"
	syncdomain "farmsurvey/internal/domain/sync"
	"farmsurvey/internal/domain/user"
	"farmsurvey/internal/infrastructure/metrics"
	"farmsurvey/internal/infrastructure/storage/postgres"
	"farmsurvey/internal/infrastructure/telemetry"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slog"
)

const (
	MetricsPath = "/metrics"
	LivePath    = "/api/v1/sync/live"
)

// Deps инфраструктура, собранная в main
type Deps struct {
	Storage       *postgres.Storage
	Registry      *prometheus.Registry
	Metrics       *metrics.SyncMetrics
	Live          http.Handler
	Publisher     syncdomain.Publisher
	SentryEnabled bool
}

type Handlers struct {
	Health *health.Handler
	User   *userAPI.Handler
	Survey *surveyAPI.Handler
	Sync   *syncAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(cfg *config.Config, deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("Farm Survey API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(cfg, deps, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Survey.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	if deps.Registry != nil {
		mux.Handle(MetricsPath, metrics.Handler(deps.Registry))
	}
	if deps.Live != nil {
		mux.Handle(LivePath, deps.Live)
	}

	return mux
}

func handlers(cfg *config.Config, deps Deps, log *slog.Logger) *Handlers {
	pool := deps.Storage.Pool()

	sessionRepo := postgres.NewSessionRepository(pool, log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	var limitCounter ratelimit.Counter
	var auditCounter telemetry.FailureCounter
	var syncOpts []syncdomain.Option
	if deps.Metrics != nil {
		limitCounter = deps.Metrics
		auditCounter = deps.Metrics
		syncOpts = append(syncOpts, syncdomain.WithMetrics(deps.Metrics))
	}
	if deps.Publisher != nil {
		syncOpts = append(syncOpts, syncdomain.WithPublisher(deps.Publisher))
	}
	limiter := ratelimit.New(cfg.Sync.RateLimit, cfg.Sync.RateBurst, limitCounter, log)

	middlewares.Add(loggerMW.Middleware())
	healthHandler := health.NewHandler(deps.Storage, log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(pool, log)
	userService := user.NewService(userRepo, user.NewCredentialsValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, middlewares.GetAllAndClear())

	surveyRepo := postgres.NewSurveyRepository(pool, log)
	surveyService := survey.NewService(surveyRepo, log, &survey.ServiceConfig{StatsTTL: cfg.Sync.StatsTTL})
	middlewares.Add(loggerMW.Middleware())
	surveyRead := middlewares.GetAllAndClear()
	middlewares.Add(loggerMW.Middleware(), authMW.Required())
	surveyHandler := surveyAPI.NewHandler(surveyService, log, surveyRead, middlewares.GetAllAndClear())

	reporter := telemetry.NewAuditReporter(deps.SentryEnabled, auditCounter, log)
	auditService := auditlog.NewService(postgres.NewSyncLogRepository(pool, log), reporter, log)
	syncOpts = append(syncOpts, syncdomain.WithStatsInvalidator(surveyService))
	syncService := syncdomain.NewService(surveyRepo, auditService, log,
		&syncdomain.ServiceConfig{MaxBatchSize: cfg.Sync.MaxBatchSize}, syncOpts...)
	middlewares.Add(loggerMW.Middleware(), limiter.Middleware(), authMW.Optional())
	syncWrite := middlewares.GetAllAndClear()
	middlewares.Add(loggerMW.Middleware(), authMW.Required())
	syncHandler := syncAPI.NewHandler(syncService, log, syncWrite, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Survey: surveyHandler,
		Sync:   syncHandler,
	}
}
