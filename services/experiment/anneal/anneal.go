// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package anneal searches the space of positional substitution mappings
// by simulated annealing.
//
// The proposal move is a transposition: swap the targets of two vocabulary
// tokens inside one position class. Transpositions generate the full
// permutation group of each class table, keep every candidate exactly one
// swap from its predecessor, and preserve bijectivity when the starting
// mapping has it.
package anneal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/AleutianAI/CipherLab/services/experiment/decode"
	"github.com/AleutianAI/CipherLab/services/experiment/metrics"
)

// Config holds the annealing schedule.
type Config struct {
	// Iterations is the number of proposal steps. Default: 100000.
	Iterations int

	// StartTemp is the initial temperature. Default: 2.0.
	StartTemp float64

	// EndTemp is the final temperature. Must be positive. Default: 0.001.
	EndTemp float64

	// Seed drives the proposal and acceptance stream.
	Seed uint64

	// ProgressEvery emits a progress log every N iterations. 0 disables.
	ProgressEvery int
}

// DefaultConfig returns the annealing defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		Iterations: 100000,
		StartTemp:  2.0,
		EndTemp:    0.001,
	}
}

// Temperature returns the geometric cooling temperature at step i of n.
//
// T(i) = T0 * (Tend/T0)^(i/n), so T(0) = T0 and T(n) = Tend. Geometric
// cooling spends comparable numbers of steps per order of magnitude of
// temperature instead of rushing through the hot phase.
func Temperature(cfg Config, i int) float64 {
	if cfg.Iterations <= 0 {
		return cfg.EndTemp
	}
	frac := float64(i) / float64(cfg.Iterations)
	return cfg.StartTemp * math.Pow(cfg.EndTemp/cfg.StartTemp, frac)
}

// MetropolisAccept reports whether a proposal with score change delta is
// accepted at temperature temp, given a uniform draw u in [0, 1).
//
// Improvements (delta >= 0) are always accepted. Worsening moves are
// accepted with probability exp(delta/temp), which decays toward zero as
// the system cools.
func MetropolisAccept(delta, temp, u float64) bool {
	if delta >= 0 {
		return true
	}
	if temp <= 0 {
		return false
	}
	return u < math.Exp(delta/temp)
}

// Result reports one annealing run.
type Result struct {
	// BestMaps is the highest-scoring mapping set seen at any step, not
	// necessarily the final state.
	BestMaps *decode.MappingSet

	// BestScore is the score of BestMaps.
	BestScore float64

	// InitialScore is the score of the random starting mapping set.
	InitialScore float64

	// Accepted counts accepted proposals, improvements included.
	Accepted int

	// Iterations is the number of proposal steps performed.
	Iterations int

	// Seed is the seed the run used.
	Seed uint64

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Optimizer anneals positional mappings against a fixed scoring corpus.
type Optimizer struct {
	vocabulary []string
	alphabet   string
	lines      [][]string
	profile    *metrics.TrigramProfile
	log        *slog.Logger
}

// NewOptimizer builds an optimizer.
//
// Inputs:
//
//	vocabulary - Tokens the mappings cover. Must be non-empty.
//	alphabet - Output letters dealt to tokens. Must be non-empty.
//	lines - Tokenized corpus lines to score against.
//	profile - Reference trigram profile. Built once by the caller and
//	          shared across restarts.
//	log - Optional; nil discards.
func NewOptimizer(vocabulary []string, alphabet string, lines [][]string, profile *metrics.TrigramProfile, log *slog.Logger) (*Optimizer, error) {
	if len(vocabulary) < 2 {
		return nil, fmt.Errorf("optimizer needs at least 2 vocabulary tokens, got %d", len(vocabulary))
	}
	if alphabet == "" {
		return nil, fmt.Errorf("optimizer needs a non-empty alphabet")
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("optimizer needs at least 1 corpus line")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Optimizer{
		vocabulary: vocabulary,
		alphabet:   alphabet,
		lines:      lines,
		profile:    profile,
		log:        log,
	}, nil
}

// Score decodes the corpus under ms and scores it against the reference
// profile.
func (o *Optimizer) Score(ms *decode.MappingSet) float64 {
	return o.profile.Similarity(decode.DecodeLines(ms, o.lines))
}

// Run anneals from a fresh random mapping set.
//
// Description:
//
//	Each step picks a position class and two distinct tokens, swaps their
//	targets, rescores the corpus, and applies the Metropolis rule. The
//	best mapping seen is snapshotted on every new high score, so the
//	reported best never regresses even when the walk does.
//
// Inputs:
//
//	ctx - Checked each step; cancellation returns the best so far with
//	      the context error.
//	cfg - Schedule. Zero fields take defaults.
//
// Outputs:
//
//	*Result - Populated even on cancellation.
//	error - Context error, or nil.
func (o *Optimizer) Run(ctx context.Context, cfg Config) (*Result, error) {
	def := DefaultConfig()
	if cfg.Iterations <= 0 {
		cfg.Iterations = def.Iterations
	}
	if cfg.StartTemp <= 0 {
		cfg.StartTemp = def.StartTemp
	}
	if cfg.EndTemp <= 0 {
		cfg.EndTemp = def.EndTemp
	}

	start := time.Now()
	rng := rand.New(rand.NewPCG(cfg.Seed, 0))

	current := decode.NewRandomMappingSet(o.vocabulary, o.alphabet, rng)
	currentScore := o.Score(&current)

	initial := current.Clone()
	res := &Result{
		BestMaps:     &initial,
		BestScore:    currentScore,
		InitialScore: currentScore,
		Iterations:   cfg.Iterations,
		Seed:         cfg.Seed,
	}

	o.log.Debug("annealing started",
		"iterations", cfg.Iterations,
		"start_temp", cfg.StartTemp,
		"end_temp", cfg.EndTemp,
		"initial_score", currentScore)

	classes := []decode.PositionClass{decode.Start, decode.Body, decode.End}

	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			res.Iterations = i
			res.Elapsed = time.Since(start)
			return res, err
		}

		class := classes[rng.IntN(len(classes))]
		a := o.vocabulary[rng.IntN(len(o.vocabulary))]
		b := o.vocabulary[rng.IntN(len(o.vocabulary))]
		if a == b {
			continue
		}

		m := current.For(class)
		m.Swap(a, b)

		score := o.Score(&current)
		temp := Temperature(cfg, i)

		if MetropolisAccept(score-currentScore, temp, rng.Float64()) {
			currentScore = score
			res.Accepted++
			if score > res.BestScore {
				res.BestScore = score
				snapshot := current.Clone()
				res.BestMaps = &snapshot
			}
		} else {
			// Transpositions are involutions; swapping back restores
			// the previous state exactly.
			m.Swap(a, b)
		}

		if cfg.ProgressEvery > 0 && i > 0 && i%cfg.ProgressEvery == 0 {
			o.log.Info("annealing progress",
				"iteration", i,
				"temperature", temp,
				"current_score", currentScore,
				"best_score", res.BestScore)
		}
	}

	res.Elapsed = time.Since(start)
	o.log.Debug("annealing finished",
		"best_score", res.BestScore,
		"accepted", res.Accepted,
		"elapsed", res.Elapsed)
	return res, nil
}
