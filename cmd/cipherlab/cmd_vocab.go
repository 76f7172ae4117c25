// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CipherLab/cmd/cipherlab/config"
	"github.com/AleutianAI/CipherLab/pkg/ux"
	"github.com/AleutianAI/CipherLab/services/experiment/vocab"
)

// runVocab learns a BPE vocabulary from the corpus and prints it, most
// frequent token first.
func runVocab(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer log.Close()

	c, err := loadCorpus(cfg, log)
	if err != nil {
		return err
	}

	v, err := vocab.Learn(c.TokenSequences(), vocab.Config{
		Merges:      cfg.Vocab.Merges,
		MinPairFreq: cfg.Vocab.MinPairFreq,
	}, log.Slog())
	if err != nil {
		return err
	}
	if v.Warning != nil {
		ux.Warning(v.Warning.Error())
	}

	ux.Title(fmt.Sprintf("Learned vocabulary: %d tokens, %d merges", len(v.Tokens), len(v.Merges)))

	byFreq := make([]vocab.Token, len(v.Tokens))
	copy(byFreq, v.Tokens)
	sort.Slice(byFreq, func(i, j int) bool {
		if byFreq[i].Freq != byFreq[j].Freq {
			return byFreq[i].Freq > byFreq[j].Freq
		}
		return byFreq[i].Symbol < byFreq[j].Symbol
	})
	for _, tok := range byFreq {
		kind := "atomic"
		if tok.MergeRank >= 0 {
			kind = fmt.Sprintf("merge %d", tok.MergeRank+1)
		}
		ux.Info(fmt.Sprintf("%-8s freq %-6d %s", tok.Symbol, tok.Freq, kind))
	}

	if vocabOutPath != "" {
		if err := writeVocabulary(vocabOutPath, v); err != nil {
			return err
		}
		ux.Success("vocabulary written to " + vocabOutPath)
	}
	return nil
}

// writeVocabulary saves the token symbols, one per line, in the format
// LoadVocabulary reads back.
func writeVocabulary(path string, v *vocab.Vocabulary) error {
	var b strings.Builder
	for _, tok := range v.Tokens {
		b.WriteString(tok.Symbol)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0640); err != nil {
		return fmt.Errorf("write vocabulary file: %w", err)
	}
	return nil
}
