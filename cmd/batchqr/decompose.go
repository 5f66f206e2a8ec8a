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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/go-batchqr/hwy/contrib/qr"
	"github.com/ajroetker/go-batchqr/hwy/contrib/workerpool"
	"github.com/ajroetker/go-batchqr/internal/batchio"
	"github.com/ajroetker/go-batchqr/internal/config"
)

// shapeFlag parses "N,H,W" (or "NxHxW") into a qr.Shape.
type shapeFlag struct {
	shape qr.Shape
	set   bool
}

var _ pflag.Value = (*shapeFlag)(nil)

func (f *shapeFlag) String() string {
	if !f.set {
		return ""
	}
	return f.shape.String()
}

func (f *shapeFlag) Set(s string) error {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == 'x' })
	if len(parts) != 3 {
		return fmt.Errorf("shape %q: want N,H,W", s)
	}
	var dims [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("shape %q: %w", s, err)
		}
		dims[i] = n
	}
	f.shape = qr.Shape{NumMatrices: dims[0], Height: dims[1], Width: dims[2]}
	f.set = true
	return f.shape.Validate()
}

func (f *shapeFlag) Type() string { return "shape" }

type decomposeOptions struct {
	input        string
	format       string
	output       string
	outputFormat string
	shape        shapeFlag
	layout       string
	precision    string
	kernel       string
	lanes        int
	workers      int
	tolerance    float64
	rankPolicy   string
	verify       bool
	quiet        bool
}

func newDecomposeCmd(a *app) *cobra.Command {
	o := &decomposeOptions{}
	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Decompose a batch of matrices from a file",
		Long: `Decompose reads a batch (JSON, YAML or raw little-endian floats), computes
Q and R for every matrix and writes the result.

Example usage:
  batchqr decompose --input batch.json --verify
  batchqr decompose --input batch.yaml --output result.yaml
  batchqr decompose --input batch.f32 --shape 1024,8,8 --output q_r.f32`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDecompose(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "-", "input file, - for stdin")
	f.StringVar(&o.format, "format", "", "input format: json, yaml or raw (default from the file extension)")
	f.StringVarP(&o.output, "output", "o", "-", "output file, - for stdout")
	f.StringVar(&o.outputFormat, "output-format", "", "output format (default: the input format)")
	f.Var(&o.shape, "shape", "batch shape N,H,W (required for raw input)")
	f.StringVar(&o.layout, "layout", "", "layout of the input data: vector-major or row-major")
	f.StringVar(&o.precision, "precision", "", "float32 or float64")
	f.StringVar(&o.kernel, "kernel", "", "kernel: auto, sequential or lanes")
	f.IntVar(&o.lanes, "lanes", 0, "lanes per group for the lanes kernel")
	f.IntVar(&o.workers, "workers", 0, "worker goroutines (default GOMAXPROCS)")
	f.Float64Var(&o.tolerance, "tolerance", -1, "relative rank tolerance (negative: precision default)")
	f.StringVar(&o.rankPolicy, "rank-policy", "", "deficient columns: zero or nan")
	f.BoolVar(&o.verify, "verify", false, "report reconstruction and orthonormality errors")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "do not print the summary")
	return cmd
}

// settings applies the command-line overrides to a copy of the configuration.
func (o *decomposeOptions) settings(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	flags := cmd.Flags()
	if flags.Changed("precision") {
		cfg.Precision = o.precision
	}
	if flags.Changed("kernel") {
		cfg.Kernel = o.kernel
	}
	if flags.Changed("lanes") {
		cfg.Lanes = o.lanes
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = o.tolerance
	}
	if flags.Changed("rank-policy") {
		cfg.RankPolicy = o.rankPolicy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (a *app) runDecompose(cmd *cobra.Command, o *decomposeOptions) error {
	cfg, err := o.settings(cmd, a.cfg)
	if err != nil {
		return err
	}

	doc, format, err := o.read(cmd, cfg)
	if err != nil {
		return err
	}
	if o.layout != "" {
		doc.Layout = o.layout
	}
	if cmd.Flags().Changed("precision") {
		doc.Precision = cfg.Precision
	}

	pool := workerpool.New(cfg.Workers)
	defer pool.Close()

	start := time.Now()
	res, err := batchio.Run(doc, batchio.RunConfig{
		Precision: cfg.Precision,
		Verify:    o.verify,
		Options:   append(cfg.QROptions(), qr.WithPool(pool)),
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	a.log.Debug().
		Int("matrices", res.Shape.NumMatrices).
		Int("height", res.Shape.Height).
		Int("width", res.Shape.Width).
		Str("kernel", res.Kernel).
		Int("lanes", res.Lanes).
		Int("workers", pool.NumWorkers()).
		Dur("duration", elapsed).
		Msg("decomposed batch")
	if len(res.RankDeficient) > 0 {
		a.log.Warn().Ints("matrices", res.RankDeficient).Err(res.Report.Err()).Msg("rank deficient matrices")
	}

	outFormat := o.outputFormat
	if outFormat == "" {
		outFormat = format
		if o.output != "-" && !cmd.Flags().Changed("format") {
			outFormat = batchio.FormatFromPath(o.output)
		}
	}
	if err := o.write(cmd, outFormat, res); err != nil {
		return err
	}

	if !o.quiet {
		printSummary(cmd.ErrOrStderr(), res, elapsed)
	}
	return nil
}

func (o *decomposeOptions) read(cmd *cobra.Command, cfg *config.Config) (*batchio.Document, string, error) {
	format := o.format
	if format == "" {
		format = batchio.FormatFromPath(o.input)
	}

	var r io.Reader = cmd.InOrStdin()
	if o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		r = f
	}

	if format == batchio.FormatRaw {
		if !o.shape.set {
			return nil, "", errors.New("--shape is required for raw input")
		}
		doc, err := batchio.ReadRaw(r, o.shape.shape, cfg.Precision)
		return doc, format, err
	}
	doc, err := batchio.Decode(r, format)
	return doc, format, err
}

func (o *decomposeOptions) write(cmd *cobra.Command, format string, res *batchio.Result) error {
	if o.output == "-" {
		return batchio.Encode(cmd.OutOrStdout(), format, res)
	}
	f, err := os.Create(o.output)
	if err != nil {
		return err
	}
	if err := batchio.Encode(f, format, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, res *batchio.Result, elapsed time.Duration) {
	p := message.NewPrinter(language.English)
	s := res.Shape
	p.Fprintf(w, "%d matrices of %d×%d (%s) decomposed in %v with the %s kernel (%d lanes)\n",
		s.NumMatrices, s.Height, s.Width, res.Precision, elapsed.Round(time.Microsecond), res.Kernel, res.Lanes)
	if n := len(res.RankDeficient); n > 0 {
		p.Fprintf(w, "%d rank deficient matrices\n", n)
	}
	if len(res.Reconstruction) > 0 {
		p.Fprintf(w, "max reconstruction error %.3g, max orthonormality error %.3g\n",
			lo.Max(res.Reconstruction), lo.Max(res.Orthonormality))
	}
}
