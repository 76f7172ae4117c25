// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package results models and persists experiment outcomes.
//
// Every run records enough to be reproduced exactly: the seed, the trial
// count, and the configuration that shaped it. Results are written as
// timestamped JSON files and optionally indexed in an embedded BadgerDB
// so past runs can be listed and compared without parsing a directory of
// files.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/CipherLab/services/experiment/nullmodel"
)

// Meta identifies one experiment run.
type Meta struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Experiment names the pipeline that produced the result, e.g.
	// "mod23" or "solve".
	Experiment string `json:"experiment"`

	// Timestamp is the run start time, UTC.
	Timestamp time.Time `json:"timestamp"`

	// Seed is the base seed. Reusing it reproduces the run bit for bit.
	Seed uint64 `json:"seed"`

	// Trials is the Monte Carlo trial count per null model.
	Trials int `json:"trials"`

	// Language is the Currier language filter applied to the corpus.
	Language string `json:"language,omitempty"`
}

// NewMeta stamps a fresh run identity.
func NewMeta(experiment string, seed uint64, trials int) Meta {
	return Meta{
		RunID:      uuid.NewString(),
		Experiment: experiment,
		Timestamp:  time.Now().UTC(),
		Seed:       seed,
		Trials:     trials,
	}
}

// MetricResult is one metric's observed value with its null comparisons.
type MetricResult struct {
	// Metric names the measured quantity.
	Metric string `json:"metric"`

	// Direction states which tail counts as extreme.
	Direction string `json:"direction"`

	// Null holds one summary per null model kind, keyed by kind name.
	Null map[string]nullmodel.Summary `json:"null"`

	// Samples optionally carries the raw null distributions, keyed by
	// kind name. Omitted unless the run asked to keep them.
	Samples map[string][]float64 `json:"samples,omitempty"`
}

// Result is a complete experiment outcome.
type Result struct {
	Meta Meta `json:"meta"`

	// DecodedChars is the length of the decoded text under test.
	DecodedChars int `json:"decoded_chars"`

	// CorpusLines and CorpusTokens describe the input.
	CorpusLines  int `json:"corpus_lines"`
	CorpusTokens int `json:"corpus_tokens"`

	// Metrics holds one entry per measured metric.
	Metrics []MetricResult `json:"metrics"`

	// Validation carries the train/test report for optimizer runs.
	// Nil for fixed-decoder experiments.
	Validation json.RawMessage `json:"validation,omitempty"`
}

// WriteJSON writes the result to dir as run_<timestamp>_<shortid>.json.
//
// Description:
//
//	Creates dir if needed. The filename embeds the UTC timestamp and the
//	first UUID segment so concurrent runs never collide and a directory
//	listing sorts chronologically.
//
// Inputs:
//
//	dir - Results directory.
//	r - Result to persist.
//
// Outputs:
//
//	string - Path of the written file.
//	error - Directory or write failure.
func WriteJSON(dir string, r *Result) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create results directory %s: %w", dir, err)
	}

	short := r.Meta.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("run_%s_%s.json", r.Meta.Timestamp.Format("20060102T150405Z"), short)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("write result file: %w", err)
	}
	return path, nil
}
