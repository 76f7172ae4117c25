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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CipherLab/cmd/cipherlab/config"
	"github.com/AleutianAI/CipherLab/pkg/ux"
	"github.com/AleutianAI/CipherLab/services/experiment/results"
)

func openRunStore() (*results.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Paths.StoreDir == "" {
		return nil, fmt.Errorf("no run index configured: set paths.store_dir in the config")
	}
	return results.OpenStore(results.DefaultStoreConfig(cfg.Paths.StoreDir))
}

// runRunsList prints the indexed runs, newest first.
func runRunsList(cmd *cobra.Command, _ []string) error {
	store, err := openRunStore()
	if err != nil {
		return err
	}
	defer store.Close()

	metas, err := store.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		ux.Muted("no runs indexed yet")
		return nil
	}

	ux.Title(fmt.Sprintf("%d indexed runs", len(metas)))
	for _, m := range metas {
		ux.Info(fmt.Sprintf("%s  %-8s %s  seed %d  trials %d",
			m.Timestamp.Format("2006-01-02 15:04:05"), m.Experiment, m.RunID, m.Seed, m.Trials))
	}
	return nil
}

// runRunsShow prints one stored run in full.
func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openRunStore()
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := store.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Print(ux.RenderResult(r))
	if len(r.Validation) > 0 {
		ux.Muted(string(r.Validation))
	}
	return nil
}
