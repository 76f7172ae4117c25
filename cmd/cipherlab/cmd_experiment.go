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
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CipherLab/cmd/cipherlab/config"
	"github.com/AleutianAI/CipherLab/pkg/logging"
	"github.com/AleutianAI/CipherLab/pkg/ux"
	"github.com/AleutianAI/CipherLab/services/experiment/corpus"
	"github.com/AleutianAI/CipherLab/services/experiment/decode"
	"github.com/AleutianAI/CipherLab/services/experiment/metrics"
	"github.com/AleutianAI/CipherLab/services/experiment/nullmodel"
	"github.com/AleutianAI/CipherLab/services/experiment/results"
)

// metricSpec binds a metric to its extremeness direction and the null
// models it is tested against.
type metricSpec struct {
	name  string
	dir   nullmodel.Direction
	fn    func(text string) (float64, error)
	kinds []nullmodel.Kind
}

// runMod23Experiment decodes the corpus under the fixed mod-23 inverse
// cipher and tests each metric against its null models.
func runMod23Experiment(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if trialsOverride > 0 {
		cfg.Trials = trialsOverride
	}
	if saveSamples {
		cfg.SaveRawSamples = true
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
	_, profile, err := loadReference(cfg, log)
	if err != nil {
		return err
	}

	mod23 := decode.DefaultMod23Config()
	decoded, words, skipped := decodeMod23Corpus(c, mod23, log)
	if decoded == "" {
		return fmt.Errorf("no corpus word decoded under the mod-23 table")
	}

	specs := []metricSpec{
		{
			name: "trigram_cosine",
			dir:  nullmodel.Greater,
			fn:   func(t string) (float64, error) { return profile.Similarity(t), nil },
			kinds: []nullmodel.Kind{
				nullmodel.TextShuffle, nullmodel.AlphabetShuffle, nullmodel.GlyphMappingShuffle,
			},
		},
		{
			name: "gzip_size",
			dir:  nullmodel.Smaller,
			fn: func(t string) (float64, error) {
				n, err := metrics.GzipSize(t)
				return float64(n), err
			},
			kinds: []nullmodel.Kind{nullmodel.TextShuffle, nullmodel.GlyphMappingShuffle},
		},
		{
			name:  "bigram_entropy",
			dir:   nullmodel.Smaller,
			fn:    func(t string) (float64, error) { return metrics.KGramEntropy(t, 2), nil },
			kinds: []nullmodel.Kind{nullmodel.TextShuffle, nullmodel.GlyphMappingShuffle},
		},
		{
			name:  "index_of_coincidence",
			dir:   nullmodel.Greater,
			fn:    func(t string) (float64, error) { return metrics.IndexOfCoincidence(t), nil },
			kinds: []nullmodel.Kind{nullmodel.TextShuffle, nullmodel.GlyphMappingShuffle},
		},
	}

	res := &results.Result{
		Meta:         results.NewMeta("mod23", seed, cfg.Trials),
		DecodedChars: len(decoded),
		CorpusLines:  len(c.Lines),
		CorpusTokens: c.TokenCount(),
	}
	res.Meta.Language = cfg.Language

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, spec := range specs {
		mr, err := evaluateMetric(ctx, spec, decoded, words, mod23, seed, cfg, log)
		if err != nil {
			return err
		}
		res.Metrics = append(res.Metrics, *mr)
	}

	if skipped > 0 {
		ux.Warning(fmt.Sprintf("%d words skipped (glyphs outside the mod-23 table)", skipped))
	}
	fmt.Print(ux.RenderResult(res))

	return persistResult(cfg, res, log)
}

// decodeMod23Corpus decodes every corpus word, skipping words whose
// glyphs fall outside the table. Skipped words are counted, never
// silently dropped from the logs.
func decodeMod23Corpus(c *corpus.Corpus, m *decode.Mod23Config, log *logging.Logger) (string, []string, int) {
	var decoded []byte
	var words []string
	skipped := 0
	for _, line := range c.Lines {
		for _, w := range line.Tokens {
			out, err := m.DecodeWord(w)
			if err != nil {
				skipped++
				log.Debug("word skipped", "word", w, "error", err)
				continue
			}
			decoded = append(decoded, out...)
			words = append(words, w)
		}
	}
	log.Info("corpus decoded", "chars", len(decoded), "words", len(words), "skipped", skipped)
	return string(decoded), words, skipped
}

// evaluateMetric measures one metric on the decoded text and runs its
// null models.
//
// Each null kind maps to a randomized rendition of the decoded text:
// shuffled characters, relabeled letters, or a full re-decode under a
// shuffled glyph assignment. The same per-trial stream drives the
// randomization, so the whole experiment reproduces from one seed.
func evaluateMetric(ctx context.Context, spec metricSpec, decoded string, words []string, mod23 *decode.Mod23Config, seed uint64, cfg config.ExperimentConfig, log *logging.Logger) (*results.MetricResult, error) {
	observed, err := spec.fn(decoded)
	if err != nil {
		return nil, fmt.Errorf("metric %s: %w", spec.name, err)
	}
	log.Info("observed metric", "metric", spec.name, "value", observed)

	mr := &results.MetricResult{
		Metric:    spec.name,
		Direction: spec.dir.String(),
		Null:      make(map[string]nullmodel.Summary, len(spec.kinds)),
	}
	if cfg.SaveRawSamples {
		mr.Samples = make(map[string][]float64, len(spec.kinds))
	}

	for _, kind := range spec.kinds {
		trial := nullTrialFn(spec, kind, decoded, words, mod23)
		dist, err := nullmodel.RunTrials(ctx, spec.name, kind, nullmodel.Config{
			Trials: cfg.Trials,
			Seed:   seed,
		}, trial)
		if err != nil {
			return nil, fmt.Errorf("null model %s for %s: %w", kind, spec.name, err)
		}

		summary := nullmodel.Evaluate(observed, dist.Samples, spec.dir)
		mr.Null[kind.String()] = summary
		if cfg.SaveRawSamples {
			mr.Samples[kind.String()] = dist.Samples
		}
		log.Info("null model evaluated",
			"metric", spec.name,
			"kind", kind.String(),
			"null_mean", summary.Mean,
			"z_score", summary.ZScore,
			"p_value", summary.PValue)
	}
	return mr, nil
}

// nullTrialFn builds the per-trial metric closure for one null kind.
func nullTrialFn(spec metricSpec, kind nullmodel.Kind, decoded string, words []string, mod23 *decode.Mod23Config) nullmodel.MetricFn {
	return func(rng *rand.Rand) (float64, error) {
		var text string
		switch kind {
		case nullmodel.TextShuffle:
			text = nullmodel.ShuffleText(decoded, rng)
		case nullmodel.AlphabetShuffle:
			text = nullmodel.ShuffleAlphabet(decoded, mod23.Alphabet(), rng)
		case nullmodel.GlyphMappingShuffle:
			shuffled := mod23.WithShuffledAssignment(rng)
			var err error
			text, err = shuffled.DecodeWords(words)
			if err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("unhandled null kind %v", kind)
		}
		return spec.fn(text)
	}
}
