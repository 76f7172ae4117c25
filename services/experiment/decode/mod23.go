// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package decode

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// Latin23 is the classical 23-letter Latin alphabet (J, U, W omitted).
const Latin23 = "ABCDEFGHIKLMNOPQRSTVXYZ"

// Mod23Modulus is the prime modulus of the legacy cipher hypothesis.
const Mod23Modulus = 23

// UnknownGlyphError reports a character the glyph tokenizer cannot match.
type UnknownGlyphError struct {
	// Glyph is the offending character.
	Glyph byte

	// Position is its byte offset within Word.
	Position int

	// Word is the EVA word being tokenized.
	Word string
}

// Error returns a formatted message locating the bad glyph.
func (e *UnknownGlyphError) Error() string {
	return fmt.Sprintf("unknown glyph %q at position %d in EVA word %q", string(e.Glyph), e.Position, e.Word)
}

// Mod23Config is the immutable configuration of the legacy decoder: a
// glyph-to-number table, the output alphabet, and precomputed modular
// inverses. Build one with NewMod23Config and treat it as read-only;
// the decode functions are pure with respect to it.
type Mod23Config struct {
	glyphToNum map[string]int
	alphabet   []rune
	byLength   []string // glyphs sorted longest-first for greedy matching
	inverse    [Mod23Modulus + 1]int
}

// defaultGlyphToNum is the hand-built assignment under test, multigraphs
// included. Multigraphs must come before their prefixes during greedy
// matching, which NewMod23Config guarantees by sorting on length.
var defaultGlyphToNum = map[string]int{
	// Multigraphs
	"qokeedy": 1, "qokedy": 2, "chedy": 3, "shedy": 4, "qoty": 5,
	"daiin": 7, "chol": 9, "shol": 10, "cheedy": 11, "chody": 12,
	"chedal": 13, "aiin": 17, "dar": 19, "air": 18, "ar": 19, "oty": 6,

	// Single glyphs
	"q": 1, "o": 2, "k": 3, "e": 4, "d": 5, "y": 6,
	"a": 7, "i": 8, "r": 9, "s": 10, "h": 11, "c": 12,
	"t": 13, "l": 14, "n": 15, "m": 16, "p": 17, "g": 18,
	"f": 19, "x": 20, "b": 21, "v": 22, "z": 23,
}

// DefaultMod23Config returns the decoder configuration with the default
// glyph-to-number table.
func DefaultMod23Config() *Mod23Config {
	return NewMod23Config(defaultGlyphToNum)
}

// NewMod23Config builds an immutable decoder configuration.
//
// Description:
//
//	Copies the glyph table, sorts glyphs longest-first for the greedy
//	tokenizer, and precomputes every modular inverse. Numbers must lie
//	in 1..23; 23 (≡ 0) has no inverse and maps to itself.
func NewMod23Config(glyphToNum map[string]int) *Mod23Config {
	c := &Mod23Config{
		glyphToNum: make(map[string]int, len(glyphToNum)),
		alphabet:   []rune(Latin23),
	}
	for g, n := range glyphToNum {
		c.glyphToNum[g] = n
		c.byLength = append(c.byLength, g)
	}
	sort.Slice(c.byLength, func(i, j int) bool {
		if len(c.byLength[i]) != len(c.byLength[j]) {
			return len(c.byLength[i]) > len(c.byLength[j])
		}
		return c.byLength[i] < c.byLength[j]
	})
	for n := 1; n <= Mod23Modulus; n++ {
		c.inverse[n] = modInverse(n, Mod23Modulus)
	}
	return c
}

// modInverse returns n⁻¹ (mod m) for prime m, or n when not invertible.
func modInverse(n, m int) int {
	r := n % m
	if r == 0 {
		return n
	}
	// Fermat: n⁻¹ ≡ n^(m-2) (mod m) for prime m.
	result := 1
	base := r
	for exp := m - 2; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			result = result * base % m
		}
		base = base * base % m
	}
	return result
}

// Alphabet returns the output alphabet string.
func (c *Mod23Config) Alphabet() string { return string(c.alphabet) }

// WithShuffledAssignment returns a copy whose glyph-to-number assignment
// has been relabeled through a random bijection of 1..23.
//
// Description:
//
//	Used by the glyph-mapping-shuffle null model: the decode algorithm
//	(inverse then letter lookup) is held fixed while the specific number
//	assignment is randomized, so the null distribution answers whether
//	the hand-built assignment is exceptional among all assignments of
//	the same shape. Glyphs sharing a number keep sharing one.
func (c *Mod23Config) WithShuffledAssignment(rng *rand.Rand) *Mod23Config {
	perm := rng.Perm(Mod23Modulus)
	shuffled := make(map[string]int, len(c.glyphToNum))
	for g, n := range c.glyphToNum {
		shuffled[g] = perm[n-1] + 1
	}
	return NewMod23Config(shuffled)
}

// TokenizeEVA splits an EVA word into glyphs by greedy longest match.
func (c *Mod23Config) TokenizeEVA(word string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(word) {
		matched := ""
		for _, g := range c.byLength {
			if strings.HasPrefix(word[i:], g) {
				matched = g
				break
			}
		}
		if matched == "" {
			return nil, &UnknownGlyphError{Glyph: word[i], Position: i, Word: word}
		}
		tokens = append(tokens, matched)
		i += len(matched)
	}
	return tokens, nil
}

// DecodeWord decodes one EVA word: tokenize, map to numbers, take the
// modular inverse of each, and emit the corresponding Latin letters.
func (c *Mod23Config) DecodeWord(word string) (string, error) {
	tokens, err := c.TokenizeEVA(word)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(tokens))
	for _, tok := range tokens {
		inv := c.inverse[c.glyphToNum[tok]]
		if inv >= 1 && inv <= len(c.alphabet) {
			b.WriteRune(c.alphabet[inv-1])
		} else {
			b.WriteRune(FallbackSymbol)
		}
	}
	return b.String(), nil
}

// DecodeWords decodes a word list into one flat string.
func (c *Mod23Config) DecodeWords(words []string) (string, error) {
	var b strings.Builder
	for _, w := range words {
		d, err := c.DecodeWord(w)
		if err != nil {
			return "", fmt.Errorf("decode word %q: %w", w, err)
		}
		b.WriteString(d)
	}
	return b.String(), nil
}
