// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"

	"github.com/AleutianAI/CipherLab/services/experiment/corpus"
)

type ExperimentConfig struct {
	// Paths: input corpora and output locations
	Paths PathsConfig `yaml:"paths"`

	// Language: Currier language filter for the interlinear corpus ("A" or "B")
	Language string `yaml:"language"`

	// Trials: Monte Carlo trial count per null model
	Trials int `yaml:"trials"`

	// Seed: base seed; 0 means generate one from entropy and record it
	Seed uint64 `yaml:"seed"`

	// Guards: minimum input sizes before any statistic is computed
	Guards GuardsConfig `yaml:"guards"`

	// Vocab: BPE vocabulary learning parameters
	Vocab VocabConfig `yaml:"vocab"`

	// Anneal: optimizer schedule
	Anneal AnnealConfig `yaml:"anneal"`

	// Split: train/test split mode ("interleaved" or "none")
	Split string `yaml:"split"`

	// SaveRawSamples: keep the raw null distributions in the result file
	SaveRawSamples bool `yaml:"save_raw_samples"`
}

type PathsConfig struct {
	Interlinear string `yaml:"interlinear"` // e.g. data/interlinear.csv
	Reference   string `yaml:"reference"`   // e.g. data/latin_reference.txt
	ResultsDir  string `yaml:"results_dir"` // e.g. results
	StoreDir    string `yaml:"store_dir"`   // run index; empty disables it
	LogDir      string `yaml:"log_dir"`     // structured log files; empty disables
}

type GuardsConfig struct {
	MinCorpusTokens   int `yaml:"min_corpus_tokens"`
	MinReferenceChars int `yaml:"min_reference_chars"`
}

type VocabConfig struct {
	Merges      int `yaml:"merges"`
	MinPairFreq int `yaml:"min_pair_freq"`
}

type AnnealConfig struct {
	Iterations int     `yaml:"iterations"`
	StartTemp  float64 `yaml:"start_temp"`
	EndTemp    float64 `yaml:"end_temp"`
	Restarts   int     `yaml:"restarts"`
}

// DefaultConfig returns the experiment defaults.
func DefaultConfig() ExperimentConfig {
	return ExperimentConfig{
		Paths: PathsConfig{
			Interlinear: "data/interlinear.csv",
			Reference:   "data/latin_reference.txt",
			ResultsDir:  "results",
		},
		Language: "B",
		Trials:   1000,
		Guards: GuardsConfig{
			MinCorpusTokens:   100,
			MinReferenceChars: 1000,
		},
		Vocab: VocabConfig{
			Merges:      25,
			MinPairFreq: 2,
		},
		Anneal: AnnealConfig{
			Iterations: 100000,
			StartTemp:  2.0,
			EndTemp:    0.001,
			Restarts:   1,
		},
		Split: string(corpus.SplitInterleaved),
	}
}

// Validate rejects configurations that would produce meaningless runs.
func (c *ExperimentConfig) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.Anneal.Iterations <= 0 {
		return fmt.Errorf("anneal.iterations must be positive, got %d", c.Anneal.Iterations)
	}
	if c.Anneal.StartTemp <= 0 || c.Anneal.EndTemp <= 0 {
		return fmt.Errorf("anneal temperatures must be positive, got start %v end %v",
			c.Anneal.StartTemp, c.Anneal.EndTemp)
	}
	if c.Anneal.EndTemp >= c.Anneal.StartTemp {
		return fmt.Errorf("anneal.end_temp %v must be below anneal.start_temp %v",
			c.Anneal.EndTemp, c.Anneal.StartTemp)
	}
	if c.Anneal.Restarts <= 0 {
		return fmt.Errorf("anneal.restarts must be positive, got %d", c.Anneal.Restarts)
	}
	if c.Vocab.Merges < 0 {
		return fmt.Errorf("vocab.merges must be non-negative, got %d", c.Vocab.Merges)
	}
	switch corpus.SplitMode(c.Split) {
	case corpus.SplitInterleaved, corpus.SplitNone:
	default:
		return fmt.Errorf("split must be %q or %q, got %q",
			corpus.SplitInterleaved, corpus.SplitNone, c.Split)
	}
	return nil
}

// SplitMode returns the validated split mode.
func (c *ExperimentConfig) SplitMode() corpus.SplitMode {
	return corpus.SplitMode(c.Split)
}
