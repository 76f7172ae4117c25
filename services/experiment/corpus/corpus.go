// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package corpus loads and models the glyph corpus consumed by the engine.
//
// A corpus is an ordered list of Lines, each a sequence of EVA words tied
// to its folio and line number. Lines are read-only once loaded; every
// downstream component (vocabulary learning, decoding, validation) shares
// the same immutable slice.
package corpus

import (
	"fmt"
)

// Line is one manuscript line: an ordered token sequence plus its source
// location. Index is the global position after folio ordering and drives
// the interleaved train/test split.
type Line struct {
	// Folio identifies the manuscript page, e.g. "f1r".
	Folio string

	// Number is the line number within the folio. Kept as a string because
	// the interlinear transcription uses fractional numbers like "14.1".
	Number string

	// Index is the zero-based global position of the line in corpus order.
	Index int

	// Tokens are the EVA words of the line, in reading order.
	Tokens []string
}

// Corpus is an immutable, ordered collection of Lines.
type Corpus struct {
	// Language is the Currier language filter applied at load time ("A" or "B").
	Language string

	// Lines holds every line in folio order. Treat as read-only.
	Lines []Line
}

// TokenCount returns the total number of word tokens across all lines.
func (c *Corpus) TokenCount() int {
	n := 0
	for _, l := range c.Lines {
		n += len(l.Tokens)
	}
	return n
}

// TokenSequences returns the lines as bare token slices, dropping source
// metadata. The inner slices alias corpus storage and must not be mutated.
func (c *Corpus) TokenSequences() [][]string {
	seqs := make([][]string, len(c.Lines))
	for i, l := range c.Lines {
		seqs[i] = l.Tokens
	}
	return seqs
}

// SplitMode selects how Split partitions lines.
type SplitMode string

const (
	// SplitInterleaved assigns even-indexed lines to training and
	// odd-indexed lines to testing. Deterministic: the same corpus always
	// produces the same partition.
	SplitInterleaved SplitMode = "interleaved"

	// SplitNone puts every line in the training set and leaves the test
	// set empty. Used for exploratory runs where no holdout is wanted.
	SplitNone SplitMode = "none"
)

// Split partitions lines by global index parity.
//
// Description:
//
//	Even indices train, odd indices test. The split is a pure function of
//	line order, never of randomness, so reruns over the same corpus are
//	identical and every line lands in exactly one partition.
func Split(lines []Line, mode SplitMode) (train, test []Line) {
	if mode == SplitNone {
		return lines, nil
	}
	train = make([]Line, 0, (len(lines)+1)/2)
	test = make([]Line, 0, len(lines)/2)
	for _, l := range lines {
		if l.Index%2 == 0 {
			train = append(train, l)
		} else {
			test = append(test, l)
		}
	}
	return train, test
}

// InsufficientDataError reports a corpus or reference below its configured
// minimum size. It is fatal: statistics over undersized inputs are noise
// and must never reach a result file.
type InsufficientDataError struct {
	// What names the undersized input ("corpus tokens", "reference chars").
	What string

	// Have is the observed size.
	Have int

	// Need is the configured minimum.
	Need int
}

// Error returns a formatted message including both sizes.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s has %d, minimum is %d", e.What, e.Have, e.Need)
}

// CheckMinimum returns an InsufficientDataError when have < need.
// A non-positive need disables the guard.
func CheckMinimum(what string, have, need int) error {
	if need > 0 && have < need {
		return &InsufficientDataError{What: what, Have: have, Need: need}
	}
	return nil
}
