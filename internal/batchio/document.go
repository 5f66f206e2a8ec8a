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

// Package batchio reads batches of matrices from JSON, YAML or raw
// little-endian files and writes decomposition results back out.
package batchio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajroetker/go-batchqr/hwy/contrib/qr"
)

// Formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatRaw  = "raw"
)

// Layouts of Document.Data.
const (
	// LayoutVectorMajor stores each matrix as Width consecutive vectors of
	// Height entries, the buffer layout of package qr.
	LayoutVectorMajor = "vector-major"

	// LayoutRowMajor stores each matrix as Height rows of Width entries.
	LayoutRowMajor = "row-major"
)

// Precisions.
const (
	Float32 = "float32"
	Float64 = "float64"
)

var (
	// ErrFormat is returned for an unknown format, layout or precision.
	ErrFormat = errors.New("batchio: unsupported format")

	// ErrSize is returned when the data does not match the declared shape.
	ErrSize = errors.New("batchio: data size does not match shape")
)

// Document is a batch of matrices as exchanged with the CLI and the HTTP API.
type Document struct {
	NumMatrices int       `json:"num_matrices" yaml:"num_matrices"`
	Height      int       `json:"height" yaml:"height"`
	Width       int       `json:"width" yaml:"width"`
	Layout      string    `json:"layout,omitempty" yaml:"layout,omitempty"`
	Precision   string    `json:"precision,omitempty" yaml:"precision,omitempty"`
	Data        []float64 `json:"data" yaml:"data"`
}

// Shape returns the batch shape of d.
func (d *Document) Shape() qr.Shape {
	return qr.Shape{NumMatrices: d.NumMatrices, Height: d.Height, Width: d.Width}
}

// Validate checks the shape, layout and precision of d and the length of
// its data.
func (d *Document) Validate() error {
	shape := d.Shape()
	if err := shape.Validate(); err != nil {
		return err
	}
	if len(d.Data) != shape.InputLen() {
		return fmt.Errorf("%w: %s needs %d values, got %d", ErrSize, shape, shape.InputLen(), len(d.Data))
	}
	if _, err := layout(d.Layout); err != nil {
		return err
	}
	switch d.Precision {
	case "", Float32, Float64:
	default:
		return fmt.Errorf("%w: precision %q", ErrFormat, d.Precision)
	}
	return nil
}

// VectorMajor returns the data of d in vector-major layout. The returned
// slice aliases d.Data when d is already vector-major.
func (d *Document) VectorMajor() []float64 {
	if l, _ := layout(d.Layout); l == LayoutRowMajor {
		return transposeBlocks(d.Data, d.NumMatrices, d.Height, d.Width)
	}
	return d.Data
}

func layout(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", LayoutVectorMajor:
		return LayoutVectorMajor, nil
	case LayoutRowMajor:
		return LayoutRowMajor, nil
	}
	return "", fmt.Errorf("%w: layout %q", ErrFormat, s)
}

// transposeBlocks transposes each rows×cols block of src, turning row-major
// matrices into vector-major ones.
func transposeBlocks(src []float64, blocks, rows, cols int) []float64 {
	dst := make([]float64, len(src))
	size := rows * cols
	for b := range blocks {
		s := src[b*size : (b+1)*size]
		d := dst[b*size : (b+1)*size]
		for i := range rows {
			for j := range cols {
				d[j*rows+i] = s[i*cols+j]
			}
		}
	}
	return dst
}

// Decode reads a document in the given format (json or yaml). Unknown
// fields are rejected.
func Decode(r io.Reader, format string) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("batchio: decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("batchio: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	return &doc, nil
}

// FormatFromPath guesses the format from a file extension, defaulting to
// json.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".bin", ".raw", ".f32", ".f64":
		return FormatRaw
	}
	return FormatJSON
}
