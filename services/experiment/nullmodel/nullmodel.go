// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package nullmodel builds Monte Carlo reference distributions for a
// metric under a stated "no effect" assumption.
//
// Three randomization kinds are supported, each holding everything fixed
// except one factor:
//
//   - TextShuffle permutes character order; tests whether the metric
//     depends on sequence structure.
//   - AlphabetShuffle applies a random letter bijection post hoc; tests
//     whether the metric depends on the specific output labels.
//   - GlyphMappingShuffle regenerates the glyph-to-symbol assignment at
//     random with the decode algorithm fixed; tests whether the specific
//     assignment is exceptional among assignments of that shape.
//
// Trials derive an independent random stream from (seed, trial index),
// so any single trial can be reproduced without replaying the others and
// trials parallelize without a shared generator.
package nullmodel

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Kind selects the randomization applied per trial.
type Kind int

const (
	TextShuffle Kind = iota
	AlphabetShuffle
	GlyphMappingShuffle
)

// String returns the canonical kind name used in result files.
func (k Kind) String() string {
	switch k {
	case TextShuffle:
		return "text_shuffle"
	case AlphabetShuffle:
		return "alphabet_shuffle"
	case GlyphMappingShuffle:
		return "glyph_mapping_shuffle"
	default:
		return "unknown"
	}
}

// MetricFn computes one null trial's metric value using the trial's
// private random stream. Implementations must not touch shared mutable
// state; base inputs are read-only.
type MetricFn func(rng *rand.Rand) (float64, error)

// Config configures a Monte Carlo run.
type Config struct {
	// Trials is the number of independent randomizations. Default: 1000.
	Trials int

	// Seed drives every trial stream. Trial i uses PCG(Seed, i).
	Seed uint64

	// Parallelism caps concurrent trials. Default: GOMAXPROCS.
	Parallelism int
}

// DefaultConfig returns the Monte Carlo defaults used by the CLI.
func DefaultConfig() Config {
	return Config{Trials: 1000, Parallelism: runtime.GOMAXPROCS(0)}
}

// Distribution is the ordered outcome of one Monte Carlo run.
// Samples[i] is trial i's value regardless of completion order, so a
// fixed seed reproduces the distribution bit for bit.
type Distribution struct {
	// Metric names the measured quantity, e.g. "trigram_cosine".
	Metric string

	// Kind is the randomization that produced the samples.
	Kind Kind

	// Seed is the base seed the run used.
	Seed uint64

	// Samples holds one value per trial, indexed by trial number.
	Samples []float64
}

// RunTrials executes cfg.Trials independent randomization trials.
//
// Description:
//
//	Trials are dispatched over an errgroup; each writes its slot in the
//	preallocated sample slice, so aggregation needs no ordering. The
//	first trial error cancels the remainder.
//
// Inputs:
//
//	ctx - Cancels outstanding trials.
//	metric - Name recorded on the distribution.
//	kind - Randomization kind recorded on the distribution.
//	cfg - Trial count, seed, parallelism.
//	fn - Per-trial metric computation.
//
// Outputs:
//
//	*Distribution - Ordered samples. Read-only once returned.
//	error - First trial error, if any.
func RunTrials(ctx context.Context, metric string, kind Kind, cfg Config, fn MetricFn) (*Distribution, error) {
	if cfg.Trials <= 0 {
		cfg.Trials = DefaultConfig().Trials
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}

	samples := make([]float64, cfg.Trials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)

	for i := 0; i < cfg.Trials; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
			v, err := fn(rng)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			samples[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Distribution{Metric: metric, Kind: kind, Seed: cfg.Seed, Samples: samples}, nil
}

// ShuffleText returns text with its characters randomly permuted.
// Destroys sequential structure while preserving character frequencies.
func ShuffleText(text string, rng *rand.Rand) string {
	chars := []rune(text)
	rng.Shuffle(len(chars), func(i, j int) {
		chars[i], chars[j] = chars[j], chars[i]
	})
	return string(chars)
}

// ShuffleAlphabet applies a random bijection of alphabet to text.
// Preserves the abstract structure (isomorphism class) while randomizing
// letter identities. Characters outside alphabet pass through unchanged.
func ShuffleAlphabet(text, alphabet string, rng *rand.Rand) string {
	letters := []rune(alphabet)
	shuffled := make([]rune, len(letters))
	copy(shuffled, letters)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	table := make(map[rune]rune, len(letters))
	for i, r := range letters {
		table[r] = shuffled[i]
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if sub, ok := table[r]; ok {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
