// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validate runs the train/test protocol over the annealing
// optimizer.
//
// The mapping is fit on the training half only; the frozen best mapping
// is then scored once on the held-out half. A training score near the
// test score suggests real structure; a training score far above it is
// the signature of overfitting, which is the expected outcome when the
// optimizer is free to tune hundreds of token assignments against a few
// thousand characters.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/CipherLab/services/experiment/anneal"
	"github.com/AleutianAI/CipherLab/services/experiment/corpus"
	"github.com/AleutianAI/CipherLab/services/experiment/decode"
	"github.com/AleutianAI/CipherLab/services/experiment/metrics"
)

// Config configures a validation run.
type Config struct {
	// Anneal is the per-restart annealing schedule.
	Anneal anneal.Config

	// Restarts is the number of independent annealing runs. The best
	// training score wins. Default: 1.
	Restarts int

	// Split selects how lines divide into train and test.
	Split corpus.SplitMode

	// Seed drives the whole validation. Restart r anneals with seed
	// Seed + r.
	Seed uint64

	// Parallelism caps concurrent restarts. Default: Restarts.
	Parallelism int
}

// Report is the outcome of a validation run.
type Report struct {
	// TrainScore is the best training-half score across restarts.
	TrainScore float64 `json:"train_score"`

	// TestScore is the held-out score of the winning mapping. Reported
	// once, after training is finished.
	TestScore float64 `json:"test_score"`

	// InitialScore is the winning restart's random starting score.
	InitialScore float64 `json:"initial_score"`

	// BestMaps is the winning mapping set.
	BestMaps *decode.MappingSet `json:"-"`

	// Tables is the winning mapping rendered for serialization.
	Tables map[string]map[string]string `json:"tables"`

	// WinningRestart is the index of the restart that won.
	WinningRestart int `json:"winning_restart"`

	// Restarts is the number of restarts run.
	Restarts int `json:"restarts"`

	// TrainLines and TestLines are the split sizes.
	TrainLines int `json:"train_lines"`
	TestLines  int `json:"test_lines"`

	// Seed is the base seed.
	Seed uint64 `json:"seed"`

	// Elapsed is the wall-clock duration.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Validator holds the immutable inputs of a validation run.
type Validator struct {
	vocabulary []string
	alphabet   string
	profile    *metrics.TrigramProfile
	log        *slog.Logger
}

// New builds a validator. log may be nil.
func New(vocabulary []string, alphabet string, profile *metrics.TrigramProfile, log *slog.Logger) *Validator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Validator{
		vocabulary: vocabulary,
		alphabet:   alphabet,
		profile:    profile,
		log:        log,
	}
}

// Run splits lines, anneals on the training half, and scores the frozen
// winner on the test half.
//
// Description:
//
//	Restarts run concurrently over an errgroup, each with a derived seed,
//	and the winner is picked deterministically: highest training score,
//	lowest restart index on ties. The test half is never seen during
//	optimization.
//
// Inputs:
//
//	ctx - Cancels outstanding restarts.
//	lines - Corpus lines with assigned indices.
//	cfg - Validation configuration.
//
// Outputs:
//
//	*Report - Winning mapping with train and test scores.
//	error - Split or annealing failure.
func (v *Validator) Run(ctx context.Context, lines []corpus.Line, cfg Config) (*Report, error) {
	if cfg.Restarts <= 0 {
		cfg.Restarts = 1
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = cfg.Restarts
	}

	start := time.Now()

	train, test := corpus.Split(lines, cfg.Split)
	trainSeqs := tokenSequences(train)
	testSeqs := tokenSequences(test)

	opt, err := anneal.NewOptimizer(v.vocabulary, v.alphabet, trainSeqs, v.profile, v.log)
	if err != nil {
		return nil, fmt.Errorf("building optimizer: %w", err)
	}

	v.log.Info("validation started",
		"train_lines", len(train),
		"test_lines", len(test),
		"restarts", cfg.Restarts,
		"seed", cfg.Seed)

	results := make([]*anneal.Result, cfg.Restarts)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for r := 0; r < cfg.Restarts; r++ {
		g.Go(func() error {
			acfg := cfg.Anneal
			acfg.Seed = cfg.Seed + uint64(r)
			res, err := opt.Run(gctx, acfg)
			if err != nil {
				return fmt.Errorf("restart %d: %w", r, err)
			}
			mu.Lock()
			results[r] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	winner := 0
	for r := 1; r < cfg.Restarts; r++ {
		if results[r].BestScore > results[winner].BestScore {
			winner = r
		}
	}
	best := results[winner]

	testScore := 0.0
	if len(testSeqs) > 0 {
		testScore = v.profile.Similarity(decode.DecodeLines(best.BestMaps, testSeqs))
	}

	report := &Report{
		TrainScore:     best.BestScore,
		TestScore:      testScore,
		InitialScore:   best.InitialScore,
		BestMaps:       best.BestMaps,
		Tables:         best.BestMaps.Tables(),
		WinningRestart: winner,
		Restarts:       cfg.Restarts,
		TrainLines:     len(train),
		TestLines:      len(test),
		Seed:           cfg.Seed,
		Elapsed:        time.Since(start),
	}

	v.log.Info("validation finished",
		"train_score", report.TrainScore,
		"test_score", report.TestScore,
		"winning_restart", winner,
		"elapsed", report.Elapsed)
	return report, nil
}

func tokenSequences(lines []corpus.Line) [][]string {
	seqs := make([][]string, 0, len(lines))
	for _, l := range lines {
		seqs = append(seqs, l.Tokens)
	}
	return seqs
}
