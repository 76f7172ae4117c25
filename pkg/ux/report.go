// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/CipherLab/services/experiment/results"
)

// significanceThreshold marks p-values worth calling out in the summary.
const significanceThreshold = 0.05

// RenderResult formats an experiment result as a terminal summary.
//
// Description:
//
//	One block per metric: the observed value, then one line per null
//	model with mean, std, z-score, and p-value. Null model lines are
//	sorted by kind name so the layout is stable across runs. The caller
//	prints the returned string.
func RenderResult(r *results.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s (%s)\n", r.Meta.RunID, r.Meta.Experiment)
	fmt.Fprintf(&b, "  seed %d, %d trials, %d lines, %d tokens, %d decoded chars\n",
		r.Meta.Seed, r.Meta.Trials, r.CorpusLines, r.CorpusTokens, r.DecodedChars)

	for _, m := range r.Metrics {
		fmt.Fprintf(&b, "\n%s (%s is more extreme)\n", m.Metric, m.Direction)

		kinds := make([]string, 0, len(m.Null))
		for k := range m.Null {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)

		for _, k := range kinds {
			s := m.Null[k]
			marker := " "
			if s.PValue < significanceThreshold {
				marker = string(IconSuccess)
			}
			fmt.Fprintf(&b, "  %s %-24s observed %.4f  null %.4f ± %.4f  z %+.2f  p %.4f\n",
				marker, k, s.Observed, s.Mean, s.Std, s.ZScore, s.PValue)
		}
	}
	return b.String()
}

// RenderVerdict formats the one-line conclusion for a metric summary.
func RenderVerdict(metric, kind string, p float64) string {
	if p < significanceThreshold {
		return fmt.Sprintf("%s departs from the %s null (p = %.4f)", metric, kind, p)
	}
	return fmt.Sprintf("%s is consistent with the %s null (p = %.4f)", metric, kind, p)
}
