// Package sealer re-encrypts stock blobs that are still stored as legacy
// plaintext. Orders are never touched.
package sealer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/gamestore/internal/config"
	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/pkg/metrics"
)

//go:generate mockgen -destination=mock_sealer.go -source=sealer.go -package=sealer

type Store interface {
	FindUnsealed(ctx context.Context, limit uint32) ([]domain.Product, error)
	Seal(ctx context.Context, productID uuid.UUID) (bool, error)
}

type Service struct {
	store          Store
	limit          uint32
	workerPool     WorkerPoolI
	updateInterval time.Duration
	inFlight       sync.Map
}

const defaultInterval = time.Minute

func New(cfg *config.Config, store Store) *Service {
	interval := cfg.SealerInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		store:          store,
		limit:          cfg.SealerBatch,
		workerPool:     NewWorkerPool(cfg.SealerWorkers),
		updateInterval: interval,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Vault sealer started", zap.Duration("interval", s.updateInterval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()
	defer s.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping sealer")
			return
		case <-ticker.C:
			if _, err := s.SealBatch(ctx); err != nil {
				zap.L().Error("Sealer pass failed", zap.Error(err))
			}
		}
	}
}

// SealBatch runs one pass and returns how many products were sealed.
func (s *Service) SealBatch(ctx context.Context) (int, error) {
	products, err := s.store.FindUnsealed(ctx, atomic.LoadUint32(&s.limit))
	if err != nil {
		zap.L().Error("Failed to fetch unsealed products", zap.Error(err))
		return 0, err
	}

	var (
		sealed   int64
		wg       sync.WaitGroup
		g        errgroup.Group
		mu       sync.Mutex
		failures []error
	)
	for _, product := range products {
		if _, loaded := s.inFlight.LoadOrStore(product.ID, struct{}{}); loaded {
			continue
		}

		wg.Add(1)
		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer wg.Done()
				defer s.inFlight.Delete(product.ID)
				ok, err := s.store.Seal(ctx, product.ID)
				if err != nil {
					mu.Lock()
					failures = append(failures, fmt.Errorf("seal %s: %w", product.ID, err))
					mu.Unlock()
					return err
				}
				if ok {
					atomic.AddInt64(&sealed, 1)
					metrics.SealedProducts.Inc()
				}
				return nil
			})
			if err != nil {
				wg.Done()
				s.inFlight.Delete(product.ID)
				return err
			}
			return nil
		})
	}

	err = g.Wait()
	wg.Wait()
	err = errors.Join(append([]error{err}, failures...)...)

	n := int(atomic.LoadInt64(&sealed))
	if n > 0 {
		zap.L().Info("Sealed legacy stock", zap.Int("products", n))
	}
	return n, err
}
