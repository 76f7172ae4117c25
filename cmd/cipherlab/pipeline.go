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
	crand "crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/AleutianAI/CipherLab/cmd/cipherlab/config"
	"github.com/AleutianAI/CipherLab/pkg/logging"
	"github.com/AleutianAI/CipherLab/pkg/ux"
	"github.com/AleutianAI/CipherLab/services/experiment/corpus"
	"github.com/AleutianAI/CipherLab/services/experiment/metrics"
	"github.com/AleutianAI/CipherLab/services/experiment/results"
)

// newLogger builds the run logger from the config and the --log-level flag.
func newLogger(cfg config.ExperimentConfig) *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(logLevel),
		LogDir:  cfg.Paths.LogDir,
		Service: "cipherlab",
	})
}

// resolveSeed picks the effective base seed.
//
// Priority: --seed flag, then config, then a fresh draw from the OS
// entropy source. The chosen seed is always recorded in the result, so a
// run without an explicit seed is still reproducible afterwards.
func resolveSeed(flagSeed, cfgSeed uint64, log *logging.Logger) (uint64, error) {
	if flagSeed != 0 {
		return flagSeed, nil
	}
	if cfgSeed != 0 {
		return cfgSeed, nil
	}
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("draw seed from entropy: %w", err)
	}
	seed := binary.LittleEndian.Uint64(buf[:])
	log.Info("no seed configured, drew one from entropy", "seed", seed)
	return seed, nil
}

// loadCorpus loads the interlinear corpus and enforces the size guard.
func loadCorpus(cfg config.ExperimentConfig, log *logging.Logger) (*corpus.Corpus, error) {
	c, err := corpus.LoadInterlinear(cfg.Paths.Interlinear, cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	if err := corpus.CheckMinimum("corpus tokens", c.TokenCount(), cfg.Guards.MinCorpusTokens); err != nil {
		return nil, err
	}
	log.Info("corpus loaded",
		"path", cfg.Paths.Interlinear,
		"language", cfg.Language,
		"lines", len(c.Lines),
		"tokens", c.TokenCount())
	return c, nil
}

// loadReference loads the reference text and builds its trigram profile.
func loadReference(cfg config.ExperimentConfig, log *logging.Logger) (string, *metrics.TrigramProfile, error) {
	text, err := corpus.LoadReference(cfg.Paths.Reference)
	if err != nil {
		return "", nil, fmt.Errorf("loading reference: %w", err)
	}
	if err := corpus.CheckMinimum("reference chars", len(text), cfg.Guards.MinReferenceChars); err != nil {
		return "", nil, err
	}
	profile := metrics.NewTrigramProfile(text)
	log.Info("reference loaded",
		"path", cfg.Paths.Reference,
		"chars", len(text),
		"distinct_trigrams", profile.TrigramCount())
	return text, profile, nil
}

// persistResult writes the result file and, when a store directory is
// configured, indexes the run.
func persistResult(cfg config.ExperimentConfig, r *results.Result, log *logging.Logger) error {
	path, err := results.WriteJSON(cfg.Paths.ResultsDir, r)
	if err != nil {
		return err
	}
	log.Info("result written", "path", path, "run_id", r.Meta.RunID)

	if cfg.Paths.StoreDir != "" {
		store, err := results.OpenStore(results.DefaultStoreConfig(cfg.Paths.StoreDir))
		if err != nil {
			return fmt.Errorf("opening run index: %w", err)
		}
		defer store.Close()
		if err := store.Put(r); err != nil {
			return err
		}
		log.Debug("run indexed", "run_id", r.Meta.RunID)
	}

	ux.Muted("result: " + path)
	return nil
}
