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

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ajroetker/go-batchqr/hwy/contrib/qr"
	"github.com/ajroetker/go-batchqr/internal/batchio"
)

// handleDecompose decodes a JSON document, decomposes it and answers with
// the JSON result. ?verify=true adds the verification errors.
func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	doc, err := batchio.Decode(body, batchio.FormatJSON)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if doc.NumMatrices > s.cfg.Server.MaxMatrices {
		s.writeError(w, r, http.StatusRequestEntityTooLarge,
			fmt.Errorf("batch of %d matrices exceeds the limit of %d", doc.NumMatrices, s.cfg.Server.MaxMatrices))
		return
	}
	if err := doc.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	opts := s.cfg.QROptions()
	if s.pool != nil {
		opts = append(opts, qr.WithPool(s.pool))
	}
	if s.metrics != nil {
		opts = append(opts, qr.WithObserver(s.metrics))
	}
	cfg := batchio.RunConfig{
		Precision: s.cfg.Precision,
		Verify:    parseBool(r.URL.Query().Get("verify")),
		Options:   opts,
	}

	res, err := s.run(r.Context(), doc, cfg)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("decomposition timed out"))
		return
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ev := s.log.Debug()
	if len(res.RankDeficient) > 0 {
		ev = s.log.Warn().Ints("deficient_matrices", res.RankDeficient)
	}
	ev.Str("request_id", RequestID(r.Context())).
		Stringer("shape", res.Shape).
		Str("kernel", res.Kernel).
		Int("lanes", res.Lanes).
		Str("precision", res.Precision).
		Msg("decomposed batch")

	writeJSON(w, http.StatusOK, res)
}

// run decomposes doc, giving up when ctx is done. The decomposition writes
// only buffers it owns, so an abandoned run finishes harmlessly.
func (s *Server) run(ctx context.Context, doc *batchio.Document, cfg batchio.RunConfig) (*batchio.Result, error) {
	type outcome struct {
		res *batchio.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := batchio.Run(doc, cfg)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
