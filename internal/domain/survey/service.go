package survey

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	statsCacheKey = "statistics"
)

// Servicer операции чтения и управления каноническими записями
type Servicer interface {
	Get(ctx context.Context, id int64) (*Survey, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter) (*Page, error)
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]Nearby, error)
	Statistics(ctx context.Context) (*Statistics, error)
	ExportCSV(ctx context.Context, filter Filter, w io.Writer) (int, error)
	InvalidateStatistics()
}

// ServiceConfig настройки сервиса записей
type ServiceConfig struct {
	StatsTTL time.Duration
}

type Service struct {
	repo  Repository
	log   *slog.Logger
	stats *cache.Cache

	// statsGen растет при каждом сбросе кеша; результат, посчитанный
	// до сброса, в кеш не попадает
	statsMu  sync.Mutex
	statsGen uint64
}

// NewService создает сервис; агрегаты кешируются на StatsTTL
func NewService(repo Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{StatsTTL: time.Minute}
	}

	return &Service{
		repo:  repo,
		log:   log.With("component", "survey_service"),
		stats: cache.New(config.StatsTTL, 2*config.StatsTTL),
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Survey, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Delete удаляет запись вместе с фотографиями
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("survey deleted", "id", id)
	s.InvalidateStatistics()
	return nil
}

func (s *Service) List(ctx context.Context, filter Filter) (*Page, error) {
	if err := NormalizeFilter(&filter); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

// FindNearby записи в радиусе radiusKm, по возрастанию расстояния
func (s *Service) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]Nearby, error) {
	if err := ValidatePosition(&lat, &lng); err != nil {
		return nil, err
	}
	if radiusKm == 0 {
		radiusKm = DefaultRadiusKm
	}
	if radiusKm < 0 || radiusKm > MaxRadiusKm {
		return nil, invalid("radius", fmt.Sprintf("must be between 0 and %.0f km", MaxRadiusKm))
	}

	return s.repo.FindNearby(ctx, lat, lng, radiusKm)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	if cached, ok := s.stats.Get(statsCacheKey); ok {
		return cached.(*Statistics), nil
	}

	s.statsMu.Lock()
	gen := s.statsGen
	s.statsMu.Unlock()

	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, err
	}

	s.statsMu.Lock()
	if gen == s.statsGen {
		s.stats.Set(statsCacheKey, stats, cache.DefaultExpiration)
	}
	s.statsMu.Unlock()

	return stats, nil
}

// InvalidateStatistics сбрасывает кеш агрегатов после изменения данных
func (s *Service) InvalidateStatistics() {
	s.statsMu.Lock()
	s.statsGen++
	s.stats.Delete(statsCacheKey)
	s.statsMu.Unlock()
}

// NormalizeFilter подставляет значения по умолчанию для страницы и лимита
func NormalizeFilter(f *Filter) error {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}
	return nil
}
