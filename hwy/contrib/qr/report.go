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
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// MatrixStatus is the numerical outcome of one matrix of a batch.
type MatrixStatus struct {
	// Index is the position of the matrix in the batch.
	Index int `json:"index" yaml:"index"`

	// DeficientColumns lists, in increasing order, the vectors whose norm
	// after orthogonalisation was zero, non-finite or below tolerance.
	DeficientColumns []int `json:"deficient_columns,omitempty" yaml:"deficient_columns,omitempty"`

	// MinNorm is the smallest diagonal entry of R.
	MinNorm float64 `json:"min_norm" yaml:"min_norm"`
}

// RankDeficient reports whether any column was flagged.
func (s MatrixStatus) RankDeficient() bool {
	return len(s.DeficientColumns) > 0
}

// Err returns an error wrapping ErrRankDeficient for a flagged matrix, nil otherwise.
func (s MatrixStatus) Err() error {
	if !s.RankDeficient() {
		return nil
	}
	return fmt.Errorf("matrix %d: columns %v: %w", s.Index, s.DeficientColumns, ErrRankDeficient)
}

// Report is the per-matrix outcome of a decomposed batch.
type Report struct {
	Shape    Shape          `json:"shape" yaml:"shape"`
	Kernel   Kernel         `json:"kernel" yaml:"kernel"`
	Lanes    int            `json:"lanes" yaml:"lanes"`
	Matrices []MatrixStatus `json:"matrices" yaml:"matrices"`
}

// RankDeficient reports whether any matrix of the batch was flagged.
func (r *Report) RankDeficient() bool {
	return lo.SomeBy(r.Matrices, MatrixStatus.RankDeficient)
}

// DeficientMatrices returns the indices of flagged matrices.
func (r *Report) DeficientMatrices() []int {
	return lo.FilterMap(r.Matrices, func(s MatrixStatus, _ int) (int, bool) {
		return s.Index, s.RankDeficient()
	})
}

// Err joins the errors of all flagged matrices; nil when none was flagged.
// Use errors.Is(err, ErrRankDeficient) to test for the condition.
func (r *Report) Err() error {
	return errors.Join(lo.FilterMap(r.Matrices, func(s MatrixStatus, _ int) (error, bool) {
		err := s.Err()
		return err, err != nil
	})...)
}
