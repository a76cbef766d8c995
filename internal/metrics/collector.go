package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"karaoke/internal/ledger"
	"karaoke/internal/logging"
	"karaoke/internal/queue"
)

// QueueStats reads ticket counts.
type QueueStats interface {
	Stats(ctx context.Context) (queue.Stats, error)
}

// LedgerCounts reads job counts per status.
type LedgerCounts interface {
	Counts(ctx context.Context) (map[ledger.Status]int, error)
}

type storeCollector struct {
	tickets QueueStats
	jobs    LedgerCounts
	logger  *slog.Logger

	queueDepth *prometheus.Desc
	jobCount   *prometheus.Desc
}

// RegisterStores adds gauges read from the queue and ledger at scrape time.
func (m *Metrics) RegisterStores(tickets QueueStats, jobs LedgerCounts, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	return m.registry.Register(&storeCollector{
		tickets: tickets,
		jobs:    jobs,
		logger:  logging.NewComponentLogger(logger, "metrics"),
		queueDepth: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "queue", "tickets"),
			"Queue tickets by state.",
			[]string{"state"},
			nil,
		),
		jobCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "jobs"),
			"Ledger records by status.",
			[]string{"status"},
			nil,
		),
	})
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queueDepth
	ch <- c.jobCount
}

// Collect implements prometheus.Collector.
func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if stats, err := c.tickets.Stats(ctx); err != nil {
		c.logger.Error("failed to collect queue statistics", logging.Error(err))
	} else {
		for state, value := range map[queue.State]int{
			queue.StateQueued:  stats.Queued,
			queue.StateClaimed: stats.Claimed,
			queue.StateDone:    stats.Done,
		} {
			ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(value), string(state))
		}
	}

	counts, err := c.jobs.Counts(ctx)
	if err != nil {
		c.logger.Error("failed to collect ledger statistics", logging.Error(err))
		return
	}
	for _, status := range ledger.AllStatuses() {
		ch <- prometheus.MustNewConstMetric(c.jobCount, prometheus.GaugeValue, float64(counts[status]), string(status))
	}
}
