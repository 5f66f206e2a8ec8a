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

package batchio

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ajroetker/go-batchqr/hwy"
	"github.com/ajroetker/go-batchqr/hwy/contrib/qr"
)

// Values is a float slice whose JSON form writes non-finite entries as null,
// which encoding/json cannot represent otherwise. null decodes back to NaN.
type Values []float64

// MarshalJSON implements json.Marshaler.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 2+len(v)*12)
	buf = append(buf, '[')
	for i, x := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, x, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Values) UnmarshalJSON(b []byte) error {
	var raw []*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*v = nil
		return nil
	}
	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	*v = out
	return nil
}

// Status is the rank report of one matrix.
type Status struct {
	Index            int   `json:"index" yaml:"index"`
	DeficientColumns []int `json:"deficient_columns,omitempty" yaml:"deficient_columns,omitempty"`

	// MinNorm is omitted when it is not finite.
	MinNorm *float64 `json:"min_norm,omitempty" yaml:"min_norm,omitempty"`
}

// Result is the outcome of decomposing a Document. Q has the layout of the
// input document. R is upper triangular: in row-major layout entry (j, k)
// holds the coefficient of vector k against q_j; in vector-major layout the
// same value sits at k*Width+j of each matrix.
type Result struct {
	Shape     qr.Shape `json:"shape" yaml:"shape"`
	Layout    string   `json:"layout" yaml:"layout"`
	Precision string   `json:"precision" yaml:"precision"`
	Kernel    string   `json:"kernel" yaml:"kernel"`
	Lanes     int      `json:"lanes" yaml:"lanes"`

	Q Values `json:"q" yaml:"q"`
	R Values `json:"r" yaml:"r"`

	Matrices      []Status `json:"matrices" yaml:"matrices"`
	RankDeficient []int    `json:"rank_deficient,omitempty" yaml:"rank_deficient,omitempty"`

	// Per-matrix verification errors, present when requested.
	Reconstruction Values `json:"reconstruction,omitempty" yaml:"reconstruction,omitempty"`
	Orthonormality Values `json:"orthonormality,omitempty" yaml:"orthonormality,omitempty"`

	Report *qr.Report `json:"-" yaml:"-"`
}

// RunConfig controls Run.
type RunConfig struct {
	// Precision used when the document does not name one.
	Precision string

	// Verify computes reconstruction and orthonormality errors.
	Verify bool

	Options []qr.Option
}

// Run validates doc and decomposes it in the document's precision.
func Run(doc *Document, cfg RunConfig) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	precision := doc.Precision
	if precision == "" {
		precision = precisionName(cfg.Precision)
	}
	lay, _ := layout(doc.Layout)

	shape := doc.Shape()
	x := doc.VectorMajor()

	var (
		res *Result
		err error
	)
	switch precision {
	case Float32:
		res, err = run(shape, toFloat32(x), cfg)
	case Float64:
		res, err = run(shape, x, cfg)
	default:
		return nil, fmt.Errorf("%w: precision %q", ErrFormat, precision)
	}
	if err != nil {
		return nil, err
	}

	res.Layout = lay
	res.Precision = precision
	if lay == LayoutRowMajor {
		res.Q = transposeBlocks(res.Q, shape.NumMatrices, shape.Width, shape.Height)
		res.R = transposeBlocks(res.R, shape.NumMatrices, shape.Width, shape.Width)
	}
	return res, nil
}

func run[T hwy.Floats](shape qr.Shape, x []T, cfg RunConfig) (*Result, error) {
	q := make([]T, shape.InputLen())
	r := make([]T, shape.RLen())
	report, err := qr.Decompose(shape, x, q, r, cfg.Options...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Shape:         shape,
		Kernel:        report.Kernel.String(),
		Lanes:         report.Lanes,
		Q:             toFloat64(q),
		R:             toFloat64(r),
		Matrices:      make([]Status, len(report.Matrices)),
		RankDeficient: report.DeficientMatrices(),
		Report:        report,
	}
	for i, m := range report.Matrices {
		res.Matrices[i] = Status{Index: m.Index, DeficientColumns: m.DeficientColumns}
		if !math.IsNaN(m.MinNorm) && !math.IsInf(m.MinNorm, 0) {
			minNorm := m.MinNorm
			res.Matrices[i].MinNorm = &minNorm
		}
	}
	if cfg.Verify {
		res.Reconstruction = qr.ReconstructionError(shape, x, q, r)
		res.Orthonormality = qr.OrthonormalityError(shape, q, report)
	}
	return res, nil
}

// Encode writes res in the given format. The raw format writes Q followed by
// R as little-endian floats of the result's precision.
func Encode(w io.Writer, format string, res *Result) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case FormatRaw:
		if err := WriteRaw(w, res.Q, res.Precision); err != nil {
			return err
		}
		return WriteRaw(w, res.R, res.Precision)
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}
