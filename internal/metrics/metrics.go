// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exports Prometheus collectors for batch decompositions and
// the HTTP service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ajroetker/go-batchqr/hwy/contrib/qr"
)

const namespace = "batchqr"

// Collector holds the batchqr metrics. It implements qr.Observer, so it can be
// passed to a decomposition with qr.WithObserver.
type Collector struct {
	Batches           *prometheus.CounterVec
	Matrices          prometheus.Counter
	DeficientMatrices prometheus.Counter
	DeficientColumns  prometheus.Counter
	BatchDuration     *prometheus.HistogramVec
	MatrixWidth       prometheus.Histogram

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Number of decomposed batches by kernel.",
			},
			[]string{"kernel"},
		),
		Matrices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matrices_total",
			Help:      "Number of decomposed matrices.",
		}),
		DeficientMatrices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_deficient_matrices_total",
			Help:      "Number of matrices with at least one rank deficient column.",
		}),
		DeficientColumns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_deficient_columns_total",
			Help:      "Number of columns flagged as rank deficient.",
		}),
		BatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Wall time of a batch decomposition.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"kernel"},
		),
		MatrixWidth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matrix_width",
			Help:      "Number of vectors per matrix of each batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.Batches, c.Matrices, c.DeficientMatrices, c.DeficientColumns,
		c.BatchDuration, c.MatrixWidth,
		c.Requests, c.RequestDuration, c.RateLimited,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveBatch records one call to qr.Decompose.
func (c *Collector) ObserveBatch(shape qr.Shape, kernel qr.Kernel, elapsed time.Duration, report *qr.Report) {
	k := kernel.String()
	c.Batches.WithLabelValues(k).Inc()
	c.BatchDuration.WithLabelValues(k).Observe(elapsed.Seconds())
	c.Matrices.Add(float64(shape.NumMatrices))
	c.MatrixWidth.Observe(float64(shape.Width))

	for _, m := range report.Matrices {
		if m.RankDeficient() {
			c.DeficientMatrices.Inc()
			c.DeficientColumns.Add(float64(len(m.DeficientColumns)))
		}
	}
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(route string, code int, elapsed time.Duration) {
	c.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

var _ qr.Observer = (*Collector)(nil)
