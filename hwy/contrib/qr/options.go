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
package qr

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
	"unsafe"

	"github.com/ajroetker/go-batchqr/hwy"
	"github.com/ajroetker/go-batchqr/hwy/contrib/workerpool"
)

// KernelEnv names the environment variable that overrides KernelAuto.
// Accepted values are "sequential" and "lanes".
const KernelEnv = "BATCHQR_KERNEL"

// Lane tuning parameters for KernelAuto.
const (
	// LanesWidthThreshold is the smallest Width for which KernelAuto spreads
	// a group over lanes. Below it a round has too few column updates to
	// amortise two barrier crossings.
	LanesWidthThreshold = 32

	// MaxLanesPerGroup caps the default number of lanes of a group.
	MaxLanesPerGroup = 8
)

// Kernel selects how the work of one group is executed.
type Kernel int

const (
	// KernelAuto picks a kernel from the batch shape (and KernelEnv).
	KernelAuto Kernel = iota

	// KernelSequential runs the whole algorithm of a group on one goroutine.
	KernelSequential

	// KernelLanes spreads the column updates of each round over lanes that
	// synchronise on a barrier between rounds.
	KernelLanes
)

// String returns the kernel name.
func (k Kernel) String() string {
	switch k {
	case KernelAuto:
		return "auto"
	case KernelSequential:
		return "sequential"
	case KernelLanes:
		return "lanes"
	default:
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
}

// ParseKernel parses a kernel name as returned by Kernel.String.
func ParseKernel(s string) (Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KernelAuto, nil
	case "sequential", "seq":
		return KernelSequential, nil
	case "lanes", "parallel":
		return KernelLanes, nil
	}
	return KernelAuto, fmt.Errorf("qr: unknown kernel %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kernel) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kernel) UnmarshalText(text []byte) error {
	parsed, err := ParseKernel(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// RankPolicy selects what is written to the Q column of a rank-deficient
// vector. Either way the matrix is flagged in the Report.
type RankPolicy int

const (
	// RankZero writes zeros to the deficient Q column. Coefficients against
	// it are zero and the later columns are left untouched by it, so X = Q·R
	// still holds for the matrix.
	RankZero RankPolicy = iota

	// RankNaN writes NaN to the deficient Q column and lets it propagate
	// through the coefficients and later columns of the same matrix.
	RankNaN
)

// String returns the policy name.
func (p RankPolicy) String() string {
	switch p {
	case RankZero:
		return "zero"
	case RankNaN:
		return "nan"
	default:
		return fmt.Sprintf("RankPolicy(%d)", int(p))
	}
}

// ParseRankPolicy parses a policy name as returned by RankPolicy.String.
func ParseRankPolicy(s string) (RankPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return RankZero, nil
	case "nan":
		return RankNaN, nil
	}
	return RankZero, fmt.Errorf("qr: unknown rank policy %q", s)
}

// Observer is notified once per decomposed batch.
type Observer interface {
	ObserveBatch(shape Shape, kernel Kernel, elapsed time.Duration, report *Report)
}

// Option configures Decompose.
type Option func(*options)

type options struct {
	pool       *workerpool.Pool
	kernel     Kernel
	lanes      int
	tolerance  float64
	rankPolicy RankPolicy
	observer   Observer
}

// WithPool runs the groups of a batch on a persistent pool instead of
// transient goroutines.
func WithPool(pool *workerpool.Pool) Option {
	return func(o *options) { o.pool = pool }
}

// WithKernel forces a kernel. KernelAuto restores automatic selection.
func WithKernel(k Kernel) Option {
	return func(o *options) { o.kernel = k }
}

// WithLanes sets the number of lanes per group for KernelLanes.
// Values <= 0 select min(GOMAXPROCS, MaxLanesPerGroup). The count is always
// capped at Width.
func WithLanes(n int) Option {
	return func(o *options) { o.lanes = n }
}

// WithTolerance sets the relative tolerance below which a column norm is
// considered zero: column j is rank deficient when its norm after
// orthogonalisation is <= tol * ||X[j]||. Values < 0 select
// DefaultTolerance for the element type; 0 flags only exact zeros.
func WithTolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

// WithRankPolicy selects what is written to rank-deficient Q columns.
func WithRankPolicy(p RankPolicy) Option {
	return func(o *options) { o.rankPolicy = p }
}

// WithObserver registers an Observer notified after each batch.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

func newOptions(opts []Option) *options {
	o := &options{tolerance: -1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DefaultTolerance returns the relative rank tolerance for T: 1e-5 for
// float32 and 1e-12 for float64.
func DefaultTolerance[T hwy.Floats]() float64 {
	var zero T
	if unsafe.Sizeof(zero) == 4 {
		return 1e-5
	}
	return 1e-12
}

func tolerance[T hwy.Floats](o *options) float64 {
	if o.tolerance < 0 {
		return DefaultTolerance[T]()
	}
	return o.tolerance
}

// kernelFor resolves KernelAuto: KernelEnv first, then the shape.
func (o *options) kernelFor(shape Shape) Kernel {
	if o.kernel != KernelAuto {
		return o.kernel
	}
	if env := os.Getenv(KernelEnv); env != "" {
		if k, err := ParseKernel(env); err == nil && k != KernelAuto {
			return k
		}
	}
	workers := runtime.GOMAXPROCS(0)
	if o.pool != nil {
		workers = o.pool.NumWorkers()
	}
	if shape.Width >= LanesWidthThreshold && shape.NumMatrices < workers {
		return KernelLanes
	}
	return KernelSequential
}

func (o *options) lanesFor(shape Shape) int {
	lanes := o.lanes
	if lanes <= 0 {
		lanes = min(runtime.GOMAXPROCS(0), MaxLanesPerGroup)
	}
	return max(1, min(lanes, shape.Width))
}
