package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_proxy/internal/domain"
)

// SeedService copies fixtures from one store into another (files -> redis/mysql).
type SeedService struct {
	src domain.FixtureStore
	dst domain.FixtureWriter
}

func NewSeedService(src domain.FixtureStore, dst domain.FixtureWriter) *SeedService {
	return &SeedService{src: src, dst: dst}
}

// SeedDataset validates and copies one fixture. A fixture missing from the
// source is skipped (returns false, nil).
func (s *SeedService) SeedDataset(ctx context.Context, ds domain.Dataset) (bool, error) {
	raw, err := s.src.Load(ctx, ds.File)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("seed %s: %w", ds.Name, err)
	}
	// refuse to publish a fixture the API could not serve
	if _, err := decodeRecords(raw, ds.Envelope); err != nil {
		return false, fmt.Errorf("seed %s: %w", ds.Name, err)
	}
	if err := s.dst.Put(ctx, ds.File, raw); err != nil {
		return false, fmt.Errorf("seed %s: %w", ds.Name, err)
	}
	return true, nil
}

// SeedAll seeds every dataset with at most workers copies in flight and
// returns how many were written.
func (s *SeedService) SeedAll(ctx context.Context, datasets []domain.Dataset, workers int) (int, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		written int
		errs    []error
	)
	for _, ds := range datasets {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(ds domain.Dataset) {
			defer wg.Done()
			defer sem.Release(1)

			ok, err := s.SeedDataset(ctx, ds)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				log.Warn().Str("dataset", ds.Name).Err(err).Msg("seed failed")
				errs = append(errs, err)
			case !ok:
				log.Warn().Str("dataset", ds.Name).Str("file", ds.File).Msg("fixture missing, skipped")
			default:
				log.Info().Str("dataset", ds.Name).Msg("seed ok")
				written++
			}
		}(ds)
	}

	wg.Wait()
	return written, errors.Join(errs...)
}
