// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CipherLab/services/experiment/corpus"
)

// =============================================================================
// Loader Tests
// =============================================================================

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: 250\nlanguage: A\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Trials)
	assert.Equal(t, "A", cfg.Language)
	// Unmentioned fields keep defaults.
	assert.Equal(t, DefaultConfig().Anneal.Iterations, cfg.Anneal.Iterations)
	assert.Equal(t, DefaultConfig().Paths.Reference, cfg.Paths.Reference)
}

func TestLoad_NestedOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := `
anneal:
  iterations: 5000
  start_temp: 1.5
  end_temp: 0.01
  restarts: 4
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Anneal.Iterations)
	assert.Equal(t, 4, cfg.Anneal.Restarts)
	assert.Equal(t, 1.5, cfg.Anneal.StartTemp)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: [not a number\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: -5\n"), 0644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trials")
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate_TemperatureOrdering(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Anneal.StartTemp = 0.001
	cfg.Anneal.EndTemp = 2.0
	assert.Error(t, cfg.Validate())
}

func TestValidate_SplitMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Split = "random"
	assert.Error(t, cfg.Validate())

	cfg.Split = string(corpus.SplitNone)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, corpus.SplitInterleaved, cfg.SplitMode())
}
