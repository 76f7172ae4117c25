// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package decode turns token sequences into candidate plaintext.
//
// Two decoders live here: the positional substitution decoder driven by
// the optimizer (one mapping table per line position) and the legacy
// fixed mod-23 inverse decoder (mod23.go).
package decode

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// FallbackSymbol replaces tokens absent from the active mapping's domain.
// Out-of-vocabulary tokens are never dropped: dropping would shift every
// downstream trigram and silently corrupt scores.
const FallbackSymbol = '?'

// PositionClass is the structural role of a token within its line.
type PositionClass int

const (
	// Start is the first token of a line. Start wins over End when a line
	// has a single token; this precedence is fixed because it changes
	// which table decodes the token and therefore every downstream score.
	Start PositionClass = iota

	// Body is any token that is neither first nor last.
	Body

	// End is the last token of a line with at least two tokens.
	End
)

// String returns the class name.
func (p PositionClass) String() string {
	switch p {
	case Start:
		return "start"
	case Body:
		return "body"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Classify returns the PositionClass for token index i in a line of n tokens.
func Classify(i, n int) PositionClass {
	switch {
	case i == 0:
		return Start
	case i == n-1:
		return End
	default:
		return Body
	}
}

// Mapping is a substitution table from vocabulary tokens to output letters.
//
// When the vocabulary is no larger than the alphabet the table is a
// permutation: each letter used at most once. With a larger vocabulary the
// initial assignment cycles the alphabet, so the map is many-to-one. Either
// way a Swap of two entries is exactly reversible by swapping again, which
// is what the optimizer's propose/revert cycle relies on.
type Mapping map[string]rune

// Clone returns an independent copy of the table.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Swap exchanges the letters assigned to tokens a and b.
// Calling Swap twice with the same arguments restores the table.
func (m Mapping) Swap(a, b string) {
	m[a], m[b] = m[b], m[a]
}

// IsPermutation reports whether no output letter is used twice.
func (m Mapping) IsPermutation() bool {
	seen := make(map[rune]bool, len(m))
	for _, r := range m {
		if seen[r] {
			return false
		}
		seen[r] = true
	}
	return true
}

// InvalidMappingError reports a mapping that cannot decode the vocabulary
// it is paired with. It is fatal: decoding through a broken table would
// produce a confidently wrong score.
type InvalidMappingError struct {
	// Class is the position the broken table serves.
	Class PositionClass

	// Reason describes the mismatch.
	Reason string
}

// Error returns a formatted message naming the broken table.
func (e *InvalidMappingError) Error() string {
	return fmt.Sprintf("invalid %s mapping: %s", e.Class, e.Reason)
}

// MappingSet is the triple of positional tables mutated by the optimizer.
type MappingSet struct {
	Start Mapping
	Body  Mapping
	End   Mapping
}

// For returns the table serving the given class.
func (ms *MappingSet) For(class PositionClass) Mapping {
	switch class {
	case Start:
		return ms.Start
	case End:
		return ms.End
	default:
		return ms.Body
	}
}

// Clone deep-copies all three tables.
func (ms *MappingSet) Clone() MappingSet {
	return MappingSet{
		Start: ms.Start.Clone(),
		Body:  ms.Body.Clone(),
		End:   ms.End.Clone(),
	}
}

// Validate checks that every table covers the vocabulary.
func (ms *MappingSet) Validate(vocabulary []string) error {
	for _, class := range []PositionClass{Start, Body, End} {
		m := ms.For(class)
		if len(m) == 0 {
			return &InvalidMappingError{Class: class, Reason: "empty table"}
		}
		for _, tok := range vocabulary {
			if _, ok := m[tok]; !ok {
				return &InvalidMappingError{
					Class:  class,
					Reason: fmt.Sprintf("token %q missing from domain", tok),
				}
			}
		}
	}
	return nil
}

// Tables exports the set as plain string maps for serialization.
func (ms *MappingSet) Tables() map[string]map[string]string {
	out := make(map[string]map[string]string, 3)
	for _, class := range []PositionClass{Start, Body, End} {
		t := make(map[string]string, len(ms.For(class)))
		for tok, letter := range ms.For(class) {
			t[tok] = string(letter)
		}
		out[class.String()] = t
	}
	return out
}

// NewRandomMapping assigns every vocabulary token a letter from the
// alphabet.
//
// Description:
//
//	Letters are dealt from a shuffled alphabet; when the vocabulary is
//	larger than the alphabet the deck is reshuffled and dealt again, so
//	coverage stays even but the map becomes many-to-one. With vocabulary
//	size at most the alphabet size the result is injective.
func NewRandomMapping(vocabulary []string, alphabet string, rng *rand.Rand) Mapping {
	letters := []rune(alphabet)
	m := make(Mapping, len(vocabulary))
	for i, tok := range vocabulary {
		if i%len(letters) == 0 {
			rng.Shuffle(len(letters), func(a, b int) {
				letters[a], letters[b] = letters[b], letters[a]
			})
		}
		m[tok] = letters[i%len(letters)]
	}
	return m
}

// NewRandomMappingSet builds three independent random tables.
func NewRandomMappingSet(vocabulary []string, alphabet string, rng *rand.Rand) MappingSet {
	return MappingSet{
		Start: NewRandomMapping(vocabulary, alphabet, rng),
		Body:  NewRandomMapping(vocabulary, alphabet, rng),
		End:   NewRandomMapping(vocabulary, alphabet, rng),
	}
}

// DecodeLine decodes one token sequence, one output letter per token.
// Tokens outside the active table's domain become FallbackSymbol.
func DecodeLine(ms *MappingSet, tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(tokens))
	for i, tok := range tokens {
		m := ms.For(Classify(i, len(tokens)))
		if letter, ok := m[tok]; ok {
			b.WriteRune(letter)
		} else {
			b.WriteRune(FallbackSymbol)
		}
	}
	return b.String()
}

// DecodeLines decodes a whole corpus into one flat string.
func DecodeLines(ms *MappingSet, lines [][]string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(DecodeLine(ms, line))
	}
	return b.String()
}
