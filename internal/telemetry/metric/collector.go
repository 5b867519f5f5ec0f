package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/minikv/pkg/cmap"
)

// StoreStats is the read-only view of the storage engine the collector
// needs.
type StoreStats interface {
	ShardStats() []cmap.ShardStats
}

// Collector reports key counts from the storage engine at scrape time.
type Collector struct {
	store     StoreStats
	keys      *prometheus.Desc
	shardKeys *prometheus.Desc
}

// NewCollector creates a collector over store.
func NewCollector(store StoreStats) *Collector {
	return &Collector{
		store: store,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Entries held by the store, including expired entries not yet read.",
			nil, nil,
		),
		shardKeys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "shard_keys"),
			"Entries held by each store shard.",
			[]string{"shard"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.shardKeys
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	total := 0
	for _, s := range c.store.ShardStats() {
		total += s.Count
		ch <- prometheus.MustNewConstMetric(c.shardKeys, prometheus.GaugeValue,
			float64(s.Count), strconv.Itoa(s.Index))
	}
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(total))
}
