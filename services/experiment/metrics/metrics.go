// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package metrics measures linguistic structure in decoded text.
//
// Single-character Shannon entropy is invariant under one-to-one
// substitution, so the discriminating metrics here are k-gram entropy,
// trigram cosine similarity against a reference profile, index of
// coincidence, and compressed size.
package metrics

import (
	"bytes"
	"fmt"
	"math"

	"github.com/klauspost/compress/gzip"
)

// NGramCounts returns the overlapping character n-gram counts of text.
// Texts shorter than n yield an empty map.
func NGramCounts(text string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(text); i++ {
		counts[text[i:i+n]]++
	}
	return counts
}

// CosineSimilarity computes the cosine of two count vectors.
// Returns 0 when either vector is empty or zero.
func CosineSimilarity(a, b map[string]int) float64 {
	var dot, normA, normB float64
	for k, va := range a {
		normA += float64(va) * float64(va)
		if vb, ok := b[k]; ok {
			dot += float64(va) * float64(vb)
		}
	}
	for _, vb := range b {
		normB += float64(vb) * float64(vb)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ShannonEntropy returns the character-level entropy of text in bits
// per symbol.
func ShannonEntropy(text string) float64 {
	if text == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range text {
		counts[r]++
		total++
	}
	h := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// KGramEntropy returns Shannon entropy over overlapping k-grams, in bits
// per k-gram. Texts shorter than k score 0.
func KGramEntropy(text string, k int) float64 {
	counts := NGramCounts(text, k)
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// IndexOfCoincidence returns the probability that two randomly chosen
// characters of text are equal. Texts shorter than 2 score 0.
func IndexOfCoincidence(text string) float64 {
	if len(text) < 2 {
		return 0
	}
	counts := make(map[rune]int)
	n := 0
	for _, r := range text {
		counts[r]++
		n++
	}
	num := 0
	for _, c := range counts {
		num += c * (c - 1)
	}
	return float64(num) / float64(n*(n-1))
}

// GzipSize returns the byte size of text after gzip compression.
//
// Description:
//
//	Smaller output means more repeating structure. The header carries no
//	name and a zero modification time, so identical input always yields
//	an identical (and identically sized) stream.
func GzipSize(text string) (int, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(text)); err != nil {
		return 0, fmt.Errorf("gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Len(), nil
}
