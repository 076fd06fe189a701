// Package metrics 暴露切分与去重的 Prometheus 指标。
// nil *Collector 上的所有方法都是空操作，调用方无需判空。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "maxcdc"

type Collector struct {
	chunks     prometheus.Counter
	duplicates prometheus.Counter
	bytes      prometheus.Counter
	chunkSize  prometheus.Histogram
	ingest     prometheus.Histogram
}

// New 创建 Collector 并注册到 reg
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Number of chunks produced by the chunker.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_chunks_total",
			Help:      "Number of chunks that were already present in the store.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_bytes_total",
			Help:      "Bytes of newly stored chunk data.",
		}),
		chunkSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_size_bytes",
			Help:      "Distribution of chunk sizes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}),
		ingest: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time spent ingesting one buffer.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, col := range []prometheus.Collector{c.chunks, c.duplicates, c.bytes, c.chunkSize, c.ingest} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew 与 New 相同，注册失败时 panic
func MustNew(reg prometheus.Registerer) *Collector {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

// ObserveChunk 记录一个切块；duplicate 表示存储中已存在
func (c *Collector) ObserveChunk(size int, duplicate bool) {
	if c == nil {
		return
	}
	c.chunks.Inc()
	c.chunkSize.Observe(float64(size))
	if duplicate {
		c.duplicates.Inc()
		return
	}
	c.bytes.Add(float64(size))
}

func (c *Collector) ObserveIngest(d time.Duration) {
	if c == nil {
		return
	}
	c.ingest.Observe(d.Seconds())
}
