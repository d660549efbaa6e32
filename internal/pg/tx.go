package pg

import (
	"context"
	"errors"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/pkg/metrics"
)

//go:generate mockgen -destination=mock_tx.go -source=tx.go -package=pg

// ErrConflict reports a row that changed between read and write.
var ErrConflict = errors.New("concurrent update conflict")

type TransactionalFn func(ctx context.Context) error

type TXManager interface {
	Begin(ctx context.Context, fn TransactionalFn) error
}

type txMarker struct{}

// runner is the part of the trm manager Begin relies on.
type runner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxManager runs fn in one database transaction. A Begin nested inside
// another joins the outer transaction; only the outermost call retries
// on serialization failures, deadlocks and ErrConflict.
type TxManager struct {
	trm        runner
	maxRetries int
	backoff    time.Duration
}

func NewTXManager(pool *pgxpool.Pool, maxRetries int) *TxManager {
	return newTxManager(manager.Must(trmpgx.NewDefaultFactory(pool)), maxRetries, 20*time.Millisecond)
}

func newTxManager(trm runner, maxRetries int, backoff time.Duration) *TxManager {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &TxManager{
		trm:        trm,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

func (m *TxManager) Begin(ctx context.Context, fn TransactionalFn) error {
	if ctx.Value(txMarker{}) != nil {
		return m.trm.Do(ctx, fn)
	}
	ctx = context.WithValue(ctx, txMarker{}, struct{}{})

	var err error
	for attempt := 0; ; attempt++ {
		err = m.trm.Do(ctx, fn)
		if err == nil || attempt >= m.maxRetries || !Retryable(err) {
			return err
		}
		metrics.TxRetries.Inc()
		zap.L().Warn("retrying transaction", zap.Int("attempt", attempt+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.backoff * time.Duration(attempt+1)):
		}
	}
}

// Retryable reports whether err is a transient conflict worth replaying.
func Retryable(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return false
}
