// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/CipherLab/services/experiment/nullmodel"
	"github.com/AleutianAI/CipherLab/services/experiment/results"
)

func sampleResult() *results.Result {
	return &results.Result{
		Meta: results.Meta{
			RunID:      "abc-123",
			Experiment: "mod23",
			Seed:       42,
			Trials:     1000,
		},
		DecodedChars: 500,
		CorpusLines:  80,
		CorpusTokens: 400,
		Metrics: []results.MetricResult{
			{
				Metric:    "trigram_cosine",
				Direction: nullmodel.Greater.String(),
				Null: map[string]nullmodel.Summary{
					"text_shuffle":     {Observed: 0.31, Mean: 0.22, Std: 0.02, ZScore: 4.5, PValue: 0.001, N: 1000},
					"alphabet_shuffle": {Observed: 0.31, Mean: 0.30, Std: 0.02, ZScore: 0.5, PValue: 0.4, N: 1000},
				},
			},
		},
	}
}

func TestRenderResult_ContainsHeaderAndMetrics(t *testing.T) {
	SetPlain(true)
	out := RenderResult(sampleResult())

	assert.Contains(t, out, "abc-123")
	assert.Contains(t, out, "mod23")
	assert.Contains(t, out, "seed 42")
	assert.Contains(t, out, "trigram_cosine")
	assert.Contains(t, out, "text_shuffle")
	assert.Contains(t, out, "alphabet_shuffle")
	assert.Contains(t, out, "p 0.0010")
}

func TestRenderResult_StableNullModelOrder(t *testing.T) {
	SetPlain(true)
	out := RenderResult(sampleResult())
	// Sorted by kind name: alphabet_shuffle before text_shuffle.
	assert.Less(t, strings.Index(out, "alphabet_shuffle"), strings.Index(out, "text_shuffle"))
}

func TestRenderResult_MarksSignificance(t *testing.T) {
	SetPlain(true)
	out := RenderResult(sampleResult())

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "text_shuffle") {
			assert.Contains(t, line, string(IconSuccess))
		}
		if strings.Contains(line, "alphabet_shuffle") {
			assert.NotContains(t, line, string(IconSuccess))
		}
	}
}

func TestRenderVerdict(t *testing.T) {
	assert.Contains(t, RenderVerdict("gzip_size", "text_shuffle", 0.01), "departs")
	assert.Contains(t, RenderVerdict("gzip_size", "text_shuffle", 0.5), "consistent")
}
