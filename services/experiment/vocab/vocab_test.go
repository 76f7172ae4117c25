// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package vocab

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Learn Tests
// =============================================================================

func TestLearn_MergesMostFrequentPair(t *testing.T) {
	// "ch" is the dominant adjacent pair across the corpus.
	lines := [][]string{
		{"chedy", "chol"},
		{"chedy", "chor"},
		{"chedy"},
	}
	v, err := Learn(lines, Config{Merges: 1, MinPairFreq: 2, MinTokens: 2}, nil)
	require.NoError(t, err)

	require.Len(t, v.Merges, 1)
	assert.Equal(t, [2]string{"c", "h"}, v.Merges[0])

	syms := v.Symbols()
	assert.Contains(t, syms, "ch")
	assert.NotContains(t, syms, "c")
	assert.NotContains(t, syms, "h")
}

func TestLearn_SuccessiveMergesBuildLongerTokens(t *testing.T) {
	lines := [][]string{
		{"chedy", "chedy", "chedy", "chedy"},
	}
	v, err := Learn(lines, Config{Merges: 4, MinPairFreq: 2, MinTokens: 1}, nil)
	require.NoError(t, err)

	// Four merges over a single repeated word collapse it entirely.
	require.Len(t, v.Merges, 4)
	assert.Equal(t, []string{"chedy"}, v.Symbols())
	assert.Equal(t, 4, v.Tokens[0].Freq)
}

func TestLearn_DeterministicTieBreak(t *testing.T) {
	// "ab" and "cd" both occur twice; "ab" wins lexicographically.
	lines := [][]string{{"ab", "cd", "ab", "cd"}}
	v1, err := Learn(lines, Config{Merges: 1, MinPairFreq: 2, MinTokens: 1}, nil)
	require.NoError(t, err)
	require.Len(t, v1.Merges, 1)
	assert.Equal(t, [2]string{"a", "b"}, v1.Merges[0])

	// Same corpus, same result, every time.
	for i := 0; i < 5; i++ {
		v2, err := Learn(lines, Config{Merges: 1, MinPairFreq: 2, MinTokens: 1}, nil)
		require.NoError(t, err)
		assert.Equal(t, v1.Symbols(), v2.Symbols())
		assert.Equal(t, v1.Merges, v2.Merges)
	}
}

func TestLearn_StopsBelowPairFrequencyThreshold(t *testing.T) {
	// Every adjacent pair occurs exactly once.
	lines := [][]string{{"abcd"}}
	v, err := Learn(lines, Config{Merges: 10, MinPairFreq: 2, MinTokens: 1}, nil)
	require.NoError(t, err)
	assert.Empty(t, v.Merges)
	assert.Equal(t, []string{"a", "b", "c", "d"}, v.Symbols())
}

func TestLearn_MergeRanks(t *testing.T) {
	lines := [][]string{{"chch", "chch"}}
	v, err := Learn(lines, Config{Merges: 2, MinPairFreq: 2, MinTokens: 1}, nil)
	require.NoError(t, err)

	ranks := make(map[string]int)
	for _, tok := range v.Tokens {
		ranks[tok.Symbol] = tok.MergeRank
	}
	// "ch" from merge 0, "chch" from merge 1; atomic glyphs are gone.
	assert.Equal(t, map[string]int{"chch": 1}, ranks)
}

// =============================================================================
// Failure and Degeneracy Tests
// =============================================================================

func TestLearn_EmptyCorpus(t *testing.T) {
	_, err := Learn(nil, Config{}, nil)
	assert.Error(t, err)

	_, err = Learn([][]string{{}, {}}, Config{}, nil)
	assert.Error(t, err)
}

func TestLearn_DegenerateVocabularyFlagged(t *testing.T) {
	// A corpus of one repeated single glyph collapses to one token.
	lines := [][]string{{"a", "a", "a"}}
	v, err := Learn(lines, Config{Merges: 5, MinPairFreq: 2, MinTokens: 2}, nil)
	require.NoError(t, err)

	require.Error(t, v.Warning)
	var degen *DegenerateVocabularyError
	require.True(t, errors.As(v.Warning, &degen))
	assert.Equal(t, 1, degen.Size)
	assert.Equal(t, 2, degen.Min)

	// Degeneracy is a warning: the vocabulary itself is still usable.
	assert.Equal(t, []string{"a"}, v.Symbols())
}

func TestLearn_DefaultsApplied(t *testing.T) {
	lines := [][]string{{"daiin", "daiin", "chol"}}
	v, err := Learn(lines, Config{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, v.Tokens)
	assert.NoError(t, v.Warning)
}
