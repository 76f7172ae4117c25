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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/CipherLab/pkg/ux"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	plainMode  bool

	// experiment overrides
	trialsOverride int
	seedOverride   uint64
	saveSamples    bool

	// solve overrides
	restartsOverride   int
	iterationsOverride int
	vocabPath          string

	// vocab output
	vocabOutPath string

	rootCmd = &cobra.Command{
		Use:   "cipherlab",
		Short: "A cli to test cipher hypotheses against the Voynich manuscript",
		Long: `CipherLab decodes the Voynich EVA transcription under candidate
cipher schemes and asks whether the output carries more linguistic
structure than chance allows. Every run is seeded and reproducible.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if plainMode {
				ux.SetPlain(true)
			}
		},
	}

	// --- Experiments ---
	experimentCmd = &cobra.Command{
		Use:   "experiment",
		Short: "Run a fixed-decoder significance experiment",
	}

	experimentMod23Cmd = &cobra.Command{
		Use:   "mod23",
		Short: "Decode via the mod-23 inverse cipher and test against null models",
		RunE:  runMod23Experiment,
	}

	// --- Solver ---
	solveCmd = &cobra.Command{
		Use:   "solve",
		Short: "Optimize a positional substitution mapping with train/test validation",
		RunE:  runSolve,
	}

	// --- Vocabulary ---
	vocabCmd = &cobra.Command{
		Use:   "vocab",
		Short: "Learn a BPE token vocabulary from the corpus",
		RunE:  runVocab,
	}

	// --- Past Runs ---
	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "Inspect past experiment runs",
	}

	runsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List indexed runs, newest first",
		RunE:  runRunsList,
	}

	runsShowCmd = &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a stored run in full",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to an experiment YAML config (defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().BoolVar(&plainMode, "plain", false,
		"Disable styled output (useful for scripting)")

	rootCmd.AddCommand(experimentCmd)
	experimentCmd.AddCommand(experimentMod23Cmd)
	experimentMod23Cmd.Flags().IntVar(&trialsOverride, "trials", 0,
		"Override the Monte Carlo trial count")
	experimentMod23Cmd.Flags().Uint64Var(&seedOverride, "seed", 0,
		"Override the base seed (0 draws one from entropy)")
	experimentMod23Cmd.Flags().BoolVar(&saveSamples, "save-samples", false,
		"Keep raw null distributions in the result file")

	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().Uint64Var(&seedOverride, "seed", 0,
		"Override the base seed (0 draws one from entropy)")
	solveCmd.Flags().IntVar(&restartsOverride, "restarts", 0,
		"Override the annealing restart count")
	solveCmd.Flags().IntVar(&iterationsOverride, "iterations", 0,
		"Override the annealing iteration count")
	solveCmd.Flags().StringVar(&vocabPath, "vocab", "",
		"Load the vocabulary from a file instead of learning it")

	rootCmd.AddCommand(vocabCmd)
	vocabCmd.Flags().StringVarP(&vocabOutPath, "out", "o", "",
		"Write the learned tokens to a file, one per line")

	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}
