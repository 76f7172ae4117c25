// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nullmodel

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// RunTrials Tests
// =============================================================================

func TestRunTrials_SeedReproducible(t *testing.T) {
	cfg := Config{Trials: 64, Seed: 42, Parallelism: 8}
	fn := func(rng *rand.Rand) (float64, error) {
		return rng.Float64(), nil
	}

	d1, err := RunTrials(context.Background(), "m", TextShuffle, cfg, fn)
	require.NoError(t, err)
	d2, err := RunTrials(context.Background(), "m", TextShuffle, cfg, fn)
	require.NoError(t, err)

	// Bit for bit identical regardless of scheduling order.
	assert.Equal(t, d1.Samples, d2.Samples)
}

func TestRunTrials_DifferentSeedsDiffer(t *testing.T) {
	fn := func(rng *rand.Rand) (float64, error) {
		return rng.Float64(), nil
	}
	d1, err := RunTrials(context.Background(), "m", TextShuffle, Config{Trials: 16, Seed: 1}, fn)
	require.NoError(t, err)
	d2, err := RunTrials(context.Background(), "m", TextShuffle, Config{Trials: 16, Seed: 2}, fn)
	require.NoError(t, err)
	assert.NotEqual(t, d1.Samples, d2.Samples)
}

func TestRunTrials_TrialStreamsIndependent(t *testing.T) {
	fn := func(rng *rand.Rand) (float64, error) {
		return rng.Float64(), nil
	}
	d, err := RunTrials(context.Background(), "m", TextShuffle, Config{Trials: 32, Seed: 7}, fn)
	require.NoError(t, err)

	seen := make(map[float64]bool)
	for _, v := range d.Samples {
		assert.False(t, seen[v], "duplicate trial value %v", v)
		seen[v] = true
	}
}

func TestRunTrials_ErrorCancelsRun(t *testing.T) {
	wantErr := errors.New("metric failed")
	fn := func(rng *rand.Rand) (float64, error) {
		return 0, wantErr
	}
	_, err := RunTrials(context.Background(), "m", TextShuffle, Config{Trials: 8, Seed: 1}, fn)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestRunTrials_DefaultsApplied(t *testing.T) {
	fn := func(rng *rand.Rand) (float64, error) { return 1, nil }
	d, err := RunTrials(context.Background(), "m", AlphabetShuffle, Config{}, fn)
	require.NoError(t, err)
	assert.Len(t, d.Samples, DefaultConfig().Trials)
	assert.Equal(t, AlphabetShuffle, d.Kind)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "text_shuffle", TextShuffle.String())
	assert.Equal(t, "alphabet_shuffle", AlphabetShuffle.String())
	assert.Equal(t, "glyph_mapping_shuffle", GlyphMappingShuffle.String())
}

// =============================================================================
// Shuffle Tests
// =============================================================================

func TestShuffleText_PreservesCharacterFrequencies(t *testing.T) {
	text := "AVEMARIAGRATIAPLENA"
	shuffled := ShuffleText(text, rand.New(rand.NewPCG(5, 0)))

	assert.Len(t, shuffled, len(text))
	assert.Equal(t, sortedChars(text), sortedChars(shuffled))
}

func TestShuffleText_SeedReproducible(t *testing.T) {
	text := "PATERNOSTERQUIESINCAELIS"
	s1 := ShuffleText(text, rand.New(rand.NewPCG(11, 0)))
	s2 := ShuffleText(text, rand.New(rand.NewPCG(11, 0)))
	assert.Equal(t, s1, s2)
}

func TestShuffleAlphabet_IsBijectiveRelabeling(t *testing.T) {
	text := "ABCABC"
	got := ShuffleAlphabet(text, "ABC", rand.New(rand.NewPCG(3, 0)))

	// Same positions still carry the same (relabeled) letter.
	assert.Len(t, got, len(text))
	assert.Equal(t, got[0], got[3])
	assert.Equal(t, got[1], got[4])
	assert.Equal(t, got[2], got[5])

	// Distinct letters stay distinct.
	assert.NotEqual(t, got[0], got[1])
	assert.NotEqual(t, got[1], got[2])
	assert.NotEqual(t, got[0], got[2])
}

func TestShuffleAlphabet_LeavesForeignCharacters(t *testing.T) {
	got := ShuffleAlphabet("A.B", "AB", rand.New(rand.NewPCG(1, 0)))
	assert.Equal(t, byte('.'), got[1])
}

func TestShuffleAlphabet_PreservesStructure(t *testing.T) {
	// Index of coincidence is invariant under bijective relabeling, so the
	// repeat pattern must survive even though letters change.
	text := "AABBAABB"
	got := ShuffleAlphabet(text, "AB", rand.New(rand.NewPCG(8, 0)))
	assert.Equal(t, strings.Count(text, text[:1]), strings.Count(got, got[:1]))
}

func sortedChars(s string) string {
	chars := strings.Split(s, "")
	sort.Strings(chars)
	return strings.Join(chars, "")
}

// =============================================================================
// Evaluate Tests
// =============================================================================

func TestEvaluate_MeanAndStd(t *testing.T) {
	s := Evaluate(4, []float64{1, 2, 3}, Greater)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	// Population std of {1,2,3} is sqrt(2/3).
	assert.InDelta(t, 0.8164965809, s.Std, 1e-9)
	assert.Equal(t, 3, s.N)
}

func TestEvaluate_PValueAddOneSmoothed(t *testing.T) {
	samples := []float64{1, 2, 3, 4}

	// Observed above every sample: k=0, p = 1/5.
	s := Evaluate(10, samples, Greater)
	assert.InDelta(t, 0.2, s.PValue, 1e-12)

	// Observed below every sample: k=4, p = 5/5.
	s = Evaluate(0, samples, Greater)
	assert.InDelta(t, 1.0, s.PValue, 1e-12)
}

func TestEvaluate_PValueNeverZero(t *testing.T) {
	samples := make([]float64, 1000)
	s := Evaluate(1e9, samples, Greater)
	assert.Greater(t, s.PValue, 0.0)
}

func TestEvaluate_EqualSampleCountsAsExtreme(t *testing.T) {
	s := Evaluate(2, []float64{1, 2, 3}, Greater)
	// k = 2 (samples 2 and 3), p = 3/4.
	assert.InDelta(t, 0.75, s.PValue, 1e-12)
}

func TestEvaluate_SmallerDirection(t *testing.T) {
	samples := []float64{10, 20, 30, 40}

	// Smaller is extreme: observed below all samples gives p = 1/5.
	s := Evaluate(5, samples, Smaller)
	assert.InDelta(t, 0.2, s.PValue, 1e-12)

	// Z-score keeps its sign: observed below the mean is negative.
	assert.Less(t, s.ZScore, 0.0)
}

func TestEvaluate_ZeroStdGivesZeroZ(t *testing.T) {
	s := Evaluate(5, []float64{2, 2, 2}, Greater)
	assert.Equal(t, 0.0, s.ZScore)
	assert.Equal(t, 0.0, s.Std)
}

func TestEvaluate_EmptySamples(t *testing.T) {
	s := Evaluate(1, nil, Greater)
	assert.Equal(t, 0, s.N)
	assert.Equal(t, 0.0, s.PValue)
}
