package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/tenders-api/pkg/cache"
	"github.com/Sternrassler/tenders-api/pkg/logging"
	"github.com/Sternrassler/tenders-api/pkg/model"
	"github.com/rs/zerolog"
)

// Service answers read queries from the cached snapshot.
// It never calls upstream.
type Service struct {
	store  cache.Store[[]model.Tender]
	key    cache.Key
	logger zerolog.Logger
}

// NewService creates a read service over the snapshot stored under key.
func NewService(store cache.Store[[]model.Tender], key cache.Key, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		key:    key,
		logger: logging.WithComponent(logger, logging.ComponentQuery),
	}
}

// snapshot returns the current snapshot. A missing snapshot is empty, not an error.
func (s *Service) snapshot(ctx context.Context) ([]model.Tender, error) {
	tenders, err := s.store.Get(ctx, s.key)
	if errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Debug().Str("key", s.key.String()).Msg("Snapshot not available")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return tenders, nil
}

// ListTenders returns one page of tenders matching spec.
func (s *Service) ListTenders(ctx context.Context, spec Spec) (model.Page[model.Tender], error) {
	tenders, err := s.snapshot(ctx)
	if err != nil {
		return model.Page[model.Tender]{}, err
	}
	return Run(tenders, spec), nil
}

// GetTenderByID returns the first tender with the given id.
// The boolean is false when no such tender is cached.
func (s *Service) GetTenderByID(ctx context.Context, id int) (model.Tender, bool, error) {
	tenders, err := s.snapshot(ctx)
	if err != nil {
		return model.Tender{}, false, err
	}
	for _, t := range tenders {
		if t.ID == id {
			return t, true, nil
		}
	}
	return model.Tender{}, false, nil
}
