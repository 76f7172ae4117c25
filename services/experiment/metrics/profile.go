// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import "math"

// TrigramProfile is a reference-language trigram frequency vector with a
// precomputed norm.
//
// Build it once per reference corpus and reuse it for every scoring call:
// the optimizer scores tens of thousands of candidate decodings against
// the same reference, and recounting the reference per call would dominate
// the hot loop. Immutable after construction; safe for concurrent reads.
type TrigramProfile struct {
	counts map[string]int
	norm   float64
}

// NewTrigramProfile counts the trigrams of the reference text.
func NewTrigramProfile(reference string) *TrigramProfile {
	counts := NGramCounts(reference, 3)
	var norm float64
	for _, c := range counts {
		norm += float64(c) * float64(c)
	}
	return &TrigramProfile{counts: counts, norm: math.Sqrt(norm)}
}

// TrigramCount returns the number of distinct trigrams in the profile.
func (p *TrigramProfile) TrigramCount() int { return len(p.counts) }

// Similarity scores text against the profile: cosine similarity of the
// trigram count vectors, in [0, 1].
//
// Texts shorter than three characters cannot produce a trigram and score
// the defined minimum of 0 rather than failing.
func (p *TrigramProfile) Similarity(text string) float64 {
	if len(text) < 3 || p.norm == 0 {
		return 0
	}
	var dot, norm float64
	for gram, c := range NGramCounts(text, 3) {
		norm += float64(c) * float64(c)
		if rc, ok := p.counts[gram]; ok {
			dot += float64(c) * float64(rc)
		}
	}
	if norm == 0 {
		return 0
	}
	return dot / (math.Sqrt(norm) * p.norm)
}
