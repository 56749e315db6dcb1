package events

import (
	"context"
	"errors"

	syncdomain "farmsurvey/internal/domain/sync"
)

// Fanout рассылает событие всем получателям; ошибки объединяются
type Fanout []syncdomain.Publisher

func (f Fanout) Publish(ctx context.Context, e syncdomain.Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
