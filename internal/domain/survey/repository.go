package survey

import "context"

// Repository долговременное хранилище канонических записей
type Repository interface {
	// Upsert атомарно применяет запись по правилу Resolve и добавляет ее фотографии
	Upsert(ctx context.Context, s *Survey, actor string) (*UpsertResult, error)
	GetByID(ctx context.Context, id int64) (*Survey, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter) (*Page, error)
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]Nearby, error)
	Statistics(ctx context.Context) (*Statistics, error)
}
