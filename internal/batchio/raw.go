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
	"fmt"
	"io"

	"github.com/ajroetker/go-batchqr/hwy"
	"github.com/ajroetker/go-batchqr/hwy/contrib/qr"
	"github.com/ajroetker/go-batchqr/hwy/contrib/vec"
)

// ElemSize returns the byte size of one value in the given precision.
func ElemSize(precision string) (int, error) {
	switch precision {
	case "", Float32:
		return 4, nil
	case Float64:
		return 8, nil
	}
	return 0, fmt.Errorf("%w: precision %q", ErrFormat, precision)
}

// ReadRaw reads a vector-major batch of little-endian floats. The input must
// hold exactly shape.InputLen() values.
func ReadRaw(r io.Reader, shape qr.Shape, precision string) (*Document, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	size, err := ElemSize(precision)
	if err != nil {
		return nil, err
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("batchio: read raw: %w", err)
	}
	n := shape.InputLen()
	if len(buf) != n*size {
		return nil, fmt.Errorf("%w: %s needs %d bytes of %s, got %d", ErrSize, shape, n*size, precisionName(precision), len(buf))
	}

	doc := &Document{
		NumMatrices: shape.NumMatrices,
		Height:      shape.Height,
		Width:       shape.Width,
		Layout:      LayoutVectorMajor,
		Precision:   precisionName(precision),
		Data:        make([]float64, n),
	}
	if size == 8 {
		vec.DecodeFloat64s(buf, doc.Data)
		return doc, nil
	}
	f32 := make([]float32, n)
	vec.DecodeFloat32s(buf, f32)
	for i, v := range f32 {
		doc.Data[i] = float64(v)
	}
	return doc, nil
}

// WriteRaw writes values as little-endian floats of the given precision.
func WriteRaw(w io.Writer, values []float64, precision string) error {
	size, err := ElemSize(precision)
	if err != nil {
		return err
	}
	buf := make([]byte, 0, len(values)*size)
	if size == 8 {
		buf = vec.AppendFloat64s(buf, values)
	} else {
		buf = vec.AppendFloat32s(buf, toFloat32(values))
	}
	_, err = w.Write(buf)
	return err
}

func precisionName(p string) string {
	if p == "" {
		return Float32
	}
	return p
}

func toFloat32(src []float64) []float32 {
	dst := make([]float32, len(src))
	for i, v := range src {
		dst[i] = float32(v)
	}
	return dst
}

func toFloat64[T hwy.Floats](src []T) []float64 {
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}
