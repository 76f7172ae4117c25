// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CipherLab/cmd/cipherlab/config"
	"github.com/AleutianAI/CipherLab/pkg/logging"
	"github.com/AleutianAI/CipherLab/pkg/ux"
	"github.com/AleutianAI/CipherLab/services/experiment/anneal"
	"github.com/AleutianAI/CipherLab/services/experiment/corpus"
	"github.com/AleutianAI/CipherLab/services/experiment/results"
	"github.com/AleutianAI/CipherLab/services/experiment/validate"
	"github.com/AleutianAI/CipherLab/services/experiment/vocab"
)

// runSolve learns (or loads) a vocabulary, anneals positional mappings on
// the training half, and reports the held-out test score.
func runSolve(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if restartsOverride > 0 {
		cfg.Anneal.Restarts = restartsOverride
	}
	if iterationsOverride > 0 {
		cfg.Anneal.Iterations = iterationsOverride
	}

	log := newLogger(cfg)
	defer log.Close()

	seed, err := resolveSeed(seedOverride, cfg.Seed, log)
	if err != nil {
		return err
	}

	c, err := loadCorpus(cfg, log)
	if err != nil {
		return err
	}
	reference, profile, err := loadReference(cfg, log)
	if err != nil {
		return err
	}

	tokens, warning, err := solveVocabulary(c, cfg, log)
	if err != nil {
		return err
	}
	if warning != nil {
		ux.Warning(warning.Error())
	}

	alphabet := distinctLetters(reference)
	log.Info("solver inputs ready",
		"vocabulary", len(tokens),
		"alphabet", alphabet,
		"restarts", cfg.Anneal.Restarts,
		"iterations", cfg.Anneal.Iterations)

	v := validate.New(tokens, alphabet, profile, log.Slog())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := v.Run(ctx, c.Lines, validate.Config{
		Anneal: anneal.Config{
			Iterations: cfg.Anneal.Iterations,
			StartTemp:  cfg.Anneal.StartTemp,
			EndTemp:    cfg.Anneal.EndTemp,
		},
		Restarts: cfg.Anneal.Restarts,
		Split:    cfg.SplitMode(),
		Seed:     seed,
	})
	if err != nil {
		return err
	}

	printSolveReport(report)

	validation, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal validation report: %w", err)
	}
	res := &results.Result{
		Meta:         results.NewMeta("solve", seed, 0),
		CorpusLines:  len(c.Lines),
		CorpusTokens: c.TokenCount(),
		Validation:   validation,
	}
	res.Meta.Language = cfg.Language

	return persistResult(cfg, res, log)
}

// solveVocabulary loads the vocabulary from --vocab, or learns one from
// the corpus. Returns the token list plus any degeneracy warning.
func solveVocabulary(c *corpus.Corpus, cfg config.ExperimentConfig, log *logging.Logger) ([]string, error, error) {
	if vocabPath != "" {
		tokens, err := corpus.LoadVocabulary(vocabPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("vocabulary loaded", "path", vocabPath, "tokens", len(tokens))
		return tokens, nil, nil
	}

	v, err := vocab.Learn(c.TokenSequences(), vocab.Config{
		Merges:      cfg.Vocab.Merges,
		MinPairFreq: cfg.Vocab.MinPairFreq,
	}, log.Slog())
	if err != nil {
		return nil, nil, err
	}
	log.Info("vocabulary learned", "tokens", len(v.Tokens), "merges", len(v.Merges))
	return v.Symbols(), v.Warning, nil
}

// distinctLetters returns the sorted distinct characters of text.
func distinctLetters(text string) string {
	seen := make(map[rune]bool)
	var letters []rune
	for _, r := range text {
		if !seen[r] {
			seen[r] = true
			letters = append(letters, r)
		}
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters)
}

// printSolveReport renders the train/test outcome.
//
// The gap between training and test score is the point of the whole
// protocol: a mapping that only looks good on the half it was tuned on
// has learned the noise, not a cipher.
func printSolveReport(r *validate.Report) {
	ux.Title("Positional substitution solve")
	ux.Info(fmt.Sprintf("train lines %d, test lines %d, restarts %d (winner %d), seed %d",
		r.TrainLines, r.TestLines, r.Restarts, r.WinningRestart, r.Seed))
	ux.Info(fmt.Sprintf("initial score %.4f", r.InitialScore))
	ux.Info(fmt.Sprintf("train score   %.4f", r.TrainScore))
	ux.Info(fmt.Sprintf("test score    %.4f", r.TestScore))

	if r.TestLines == 0 {
		ux.Muted("no holdout configured; train score is unvalidated")
		return
	}
	if r.TrainScore > 0 && r.TestScore < r.TrainScore*0.8 {
		ux.Warning("test score falls well below train score: the mapping is overfit")
	} else {
		ux.Success("test score holds up against the training score")
	}
}
