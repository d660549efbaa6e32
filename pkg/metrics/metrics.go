package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gamestore"

var (
	// Outcomes counts coordinator calls by operation and result.
	Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transaction_outcomes_total",
		Help:      "Purchase and checkout attempts by outcome.",
	}, []string{"operation", "outcome"})

	UnitsAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_units_allocated_total",
		Help:      "Stock units handed out to buyers.",
	})

	TxRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_retries_total",
		Help:      "Transactions retried after a serialization failure, deadlock or version conflict.",
	})

	SealedProducts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vault_sealed_products_total",
		Help:      "Legacy plaintext stock blobs re-encrypted by the sealer.",
	})
)
