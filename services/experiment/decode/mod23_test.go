// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package decode

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Tokenizer Tests
// =============================================================================

func TestTokenizeEVA_GreedyLongestMatch(t *testing.T) {
	c := DefaultMod23Config()

	tests := []struct {
		word string
		want []string
	}{
		{"qokeedy", []string{"qokeedy"}},
		{"daiin", []string{"daiin"}},
		{"qo", []string{"q", "o"}},
		{"chedyqo", []string{"chedy", "q", "o"}},
	}
	for _, tt := range tests {
		got, err := c.TokenizeEVA(tt.word)
		require.NoError(t, err, "word %q", tt.word)
		assert.Equal(t, tt.want, got, "word %q", tt.word)
	}
}

func TestTokenizeEVA_UnknownGlyph(t *testing.T) {
	c := DefaultMod23Config()
	_, err := c.TokenizeEVA("q*o")
	require.Error(t, err)

	var unknown *UnknownGlyphError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, byte('*'), unknown.Glyph)
	assert.Equal(t, 1, unknown.Position)
	assert.Contains(t, err.Error(), `unknown glyph "*"`)
}

// =============================================================================
// Decode Tests
// =============================================================================

func TestDecodeWord_KnownValues(t *testing.T) {
	c := DefaultMod23Config()

	// q -> 1, inv(1) = 1 -> 'A'
	got, err := c.DecodeWord("q")
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	// o -> 2, inv(2) = 12 (2*12 = 24 ≡ 1 mod 23) -> 'M'
	got, err = c.DecodeWord("o")
	require.NoError(t, err)
	assert.Equal(t, "M", got)

	// z -> 23 ≡ 0, not invertible, maps to itself -> 'Z'
	got, err = c.DecodeWord("z")
	require.NoError(t, err)
	assert.Equal(t, "Z", got)
}

func TestDecodeWords_Concatenates(t *testing.T) {
	c := DefaultMod23Config()
	got, err := c.DecodeWords([]string{"q", "o"})
	require.NoError(t, err)
	assert.Equal(t, "AM", got)
}

func TestDecodeWords_PropagatesUnknownGlyph(t *testing.T) {
	c := DefaultMod23Config()
	_, err := c.DecodeWords([]string{"q", "q*o"})
	require.Error(t, err)
	var unknown *UnknownGlyphError
	assert.True(t, errors.As(err, &unknown))
}

func TestMod23Config_AlphabetSize(t *testing.T) {
	c := DefaultMod23Config()
	assert.Len(t, c.Alphabet(), Mod23Modulus)
}

// =============================================================================
// Shuffled Assignment Tests
// =============================================================================

func TestWithShuffledAssignment_Reproducible(t *testing.T) {
	c := DefaultMod23Config()

	s1 := c.WithShuffledAssignment(rand.New(rand.NewPCG(9, 0)))
	s2 := c.WithShuffledAssignment(rand.New(rand.NewPCG(9, 0)))

	words := []string{"qokeedy", "daiin", "chol", "qo"}
	d1, err := s1.DecodeWords(words)
	require.NoError(t, err)
	d2, err := s2.DecodeWords(words)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestWithShuffledAssignment_DoesNotMutateOriginal(t *testing.T) {
	c := DefaultMod23Config()
	before, err := c.DecodeWord("q")
	require.NoError(t, err)

	_ = c.WithShuffledAssignment(rand.New(rand.NewPCG(1, 0)))

	after, err := c.DecodeWord("q")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWithShuffledAssignment_PreservesSharedNumbers(t *testing.T) {
	c := DefaultMod23Config()
	s := c.WithShuffledAssignment(rand.New(rand.NewPCG(3, 0)))

	// "dar" and "ar" share number 19 in the default table; a bijective
	// relabeling keeps them identical.
	d1, err := s.DecodeWord("dar")
	require.NoError(t, err)
	d2, err := s.DecodeWord("ar")
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}
