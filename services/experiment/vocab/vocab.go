// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package vocab learns an atomic symbol vocabulary from glyph sequences by
// iterative pair merging (byte-pair-encoding over word-internal glyphs).
//
// Training starts from single characters and repeatedly merges the most
// frequent adjacent pair across the corpus until the merge budget is spent
// or no pair clears the frequency threshold. Ties break lexicographically
// so a fixed corpus always yields the same vocabulary.
package vocab

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Token is one learned vocabulary unit.
type Token struct {
	// Symbol is the merged glyph string, e.g. "aiin".
	Symbol string

	// Freq is the number of occurrences across the corpus after training.
	Freq int

	// MergeRank is the merge iteration that produced this token,
	// or -1 for atomic single-glyph tokens.
	MergeRank int
}

// Vocabulary is the immutable result of a training run.
type Vocabulary struct {
	// Tokens holds every surviving unit, sorted by symbol.
	Tokens []Token

	// Merges records the pairs merged, in order.
	Merges [][2]string

	// Warning is non-nil when the vocabulary is degenerate (see Config.MinTokens).
	// Degeneracy does not block execution; callers surface it in results.
	Warning error
}

// Symbols returns the sorted token symbols.
func (v *Vocabulary) Symbols() []string {
	out := make([]string, len(v.Tokens))
	for i, t := range v.Tokens {
		out[i] = t.Symbol
	}
	return out
}

// DegenerateVocabularyError flags a vocabulary too small to carry signal.
type DegenerateVocabularyError struct {
	// Size is the learned vocabulary size.
	Size int

	// Min is the configured minimum.
	Min int
}

// Error returns a formatted message with both sizes.
func (e *DegenerateVocabularyError) Error() string {
	return fmt.Sprintf("degenerate vocabulary: %d tokens, minimum is %d", e.Size, e.Min)
}

// Config configures vocabulary training.
type Config struct {
	// Merges is the pair-merge budget. Default: 25.
	Merges int

	// MinPairFreq stops merging when the best pair occurs fewer times.
	// Default: 2 (merging a once-seen pair cannot generalize).
	MinPairFreq int

	// MinTokens marks the vocabulary degenerate below this size.
	// Default: 2.
	MinTokens int
}

// DefaultConfig returns the training defaults used by the CLI.
func DefaultConfig() Config {
	return Config{Merges: 25, MinPairFreq: 2, MinTokens: 2}
}

// word is a mutable training record: one distinct corpus word as a
// sequence of current symbols plus its frequency.
type word struct {
	syms []string
	freq int
}

// Learn trains a vocabulary over the given token sequences.
//
// Description:
//
//	Each corpus word is split into single glyphs, then the most frequent
//	adjacent symbol pair is merged repeatedly. On equal frequency the
//	lexicographically smallest pair wins, keeping runs reproducible.
//
// Inputs:
//
//	lines - Corpus lines as word-token sequences.
//	cfg - Training parameters; zero values take defaults.
//	logger - Optional; merge progress logs at debug level.
//
// Outputs:
//
//	*Vocabulary - Learned tokens. Warning is set when degenerate.
//	error - Non-nil only for an empty corpus.
func Learn(lines [][]string, cfg Config, logger *slog.Logger) (*Vocabulary, error) {
	if cfg.Merges == 0 {
		cfg.Merges = DefaultConfig().Merges
	}
	if cfg.MinPairFreq == 0 {
		cfg.MinPairFreq = DefaultConfig().MinPairFreq
	}
	if cfg.MinTokens == 0 {
		cfg.MinTokens = DefaultConfig().MinTokens
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	words := collectWords(lines)
	if len(words) == 0 {
		return nil, fmt.Errorf("cannot learn vocabulary from an empty corpus")
	}

	v := &Vocabulary{}
	for i := 0; i < cfg.Merges; i++ {
		best, freq := bestPair(words)
		if freq < cfg.MinPairFreq {
			logger.Debug("merge loop stopped early", "merge", i, "best_freq", freq)
			break
		}
		mergePair(words, best)
		v.Merges = append(v.Merges, best)
		logger.Debug("merged pair", "merge", i+1, "left", best[0], "right", best[1], "freq", freq)
	}

	v.Tokens = extractTokens(words, v.Merges)
	if len(v.Tokens) < cfg.MinTokens {
		v.Warning = &DegenerateVocabularyError{Size: len(v.Tokens), Min: cfg.MinTokens}
	}
	return v, nil
}

// collectWords folds the corpus into distinct words with frequencies,
// each split into single-glyph symbols.
func collectWords(lines [][]string) []*word {
	freq := make(map[string]int)
	order := make([]string, 0)
	for _, line := range lines {
		for _, w := range line {
			if w == "" {
				continue
			}
			if _, seen := freq[w]; !seen {
				order = append(order, w)
			}
			freq[w]++
		}
	}
	// Deterministic iteration order regardless of corpus ordering.
	sort.Strings(order)

	words := make([]*word, 0, len(order))
	for _, w := range order {
		words = append(words, &word{syms: strings.Split(w, ""), freq: freq[w]})
	}
	return words
}

// bestPair returns the most frequent adjacent symbol pair and its count.
// Ties break on the lexicographically smaller (left, right) pair.
func bestPair(words []*word) ([2]string, int) {
	counts := make(map[[2]string]int)
	for _, w := range words {
		for i := 0; i+1 < len(w.syms); i++ {
			counts[[2]string{w.syms[i], w.syms[i+1]}] += w.freq
		}
	}

	var best [2]string
	bestFreq := 0
	for p, c := range counts {
		if c > bestFreq {
			best, bestFreq = p, c
			continue
		}
		if c == bestFreq && bestFreq > 0 {
			if p[0] < best[0] || (p[0] == best[0] && p[1] < best[1]) {
				best = p
			}
		}
	}
	return best, bestFreq
}

// mergePair rewrites every occurrence of the pair into its concatenation.
func mergePair(words []*word, pair [2]string) {
	merged := pair[0] + pair[1]
	for _, w := range words {
		out := w.syms[:0:0]
		for i := 0; i < len(w.syms); i++ {
			if i+1 < len(w.syms) && w.syms[i] == pair[0] && w.syms[i+1] == pair[1] {
				out = append(out, merged)
				i++
				continue
			}
			out = append(out, w.syms[i])
		}
		w.syms = out
	}
}

// extractTokens gathers the surviving symbols with frequencies and ranks.
func extractTokens(words []*word, merges [][2]string) []Token {
	rank := make(map[string]int, len(merges))
	for i, m := range merges {
		rank[m[0]+m[1]] = i
	}

	freq := make(map[string]int)
	for _, w := range words {
		for _, s := range w.syms {
			freq[s] += w.freq
		}
	}

	symbols := make([]string, 0, len(freq))
	for s := range freq {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	tokens := make([]Token, len(symbols))
	for i, s := range symbols {
		r, ok := rank[s]
		if !ok {
			r = -1
		}
		tokens[i] = Token{Symbol: s, Freq: freq[s], MergeRank: r}
	}
	return tokens
}
