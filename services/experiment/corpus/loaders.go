// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package corpus

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	lowercaseWord = regexp.MustCompile(`^[a-z]+$`)
	nonLetter     = regexp.MustCompile(`[^A-Z]`)
)

// LoadEVAWords loads a flat whitespace-delimited EVA transcription,
// keeping only clean lowercase words.
func LoadEVAWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open EVA file: %w", err)
	}
	raw := strings.Fields(string(data))
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if lowercaseWord.MatchString(w) {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("EVA file %s contains no usable words", path)
	}
	return words, nil
}

// LoadReference loads a reference-language corpus as an uppercase,
// letters-only string ready for trigram profiling.
func LoadReference(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("open reference file: %w", err)
	}
	text := nonLetter.ReplaceAllString(strings.ToUpper(string(data)), "")
	if text == "" {
		return "", fmt.Errorf("reference file %s contains no letters", path)
	}
	return text, nil
}

// LoadVocabulary reads a learned vocabulary file, one token per line.
func LoadVocabulary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file: %w", err)
	}
	var tokens []string
	for _, line := range strings.Split(string(data), "\n") {
		tok := strings.TrimSpace(line)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("vocabulary file %s is empty", path)
	}
	return tokens, nil
}
