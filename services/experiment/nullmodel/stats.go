// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nullmodel

import "math"

// Direction states which tail of the null distribution counts as
// "at least as extreme" for a metric.
type Direction int

const (
	// Greater means larger observed values are more extreme, e.g.
	// similarity scores.
	Greater Direction = iota

	// Smaller means smaller observed values are more extreme, e.g.
	// compressed size.
	Smaller
)

// String returns the direction name used in result files.
func (d Direction) String() string {
	if d == Smaller {
		return "smaller"
	}
	return "greater"
}

// Summary compares an observed metric value against a null distribution.
type Summary struct {
	// Observed is the value measured on the real data.
	Observed float64 `json:"observed"`

	// Mean is the null distribution mean.
	Mean float64 `json:"null_mean"`

	// Std is the null distribution population standard deviation.
	Std float64 `json:"null_std"`

	// ZScore is (Observed - Mean) / Std, or 0 when Std is 0.
	ZScore float64 `json:"z_score"`

	// PValue is the add-one smoothed empirical p-value (k+1)/(n+1),
	// where k counts null samples at least as extreme as Observed.
	// Never exactly 0: n trials cannot rule out rarer outcomes.
	PValue float64 `json:"p_value"`

	// N is the number of null samples.
	N int `json:"n"`
}

// Evaluate summarizes observed against the null samples.
//
// Description:
//
//	Uses the population standard deviation since the samples are the
//	entire simulated distribution, not a subsample of one. Extremeness
//	is direction-aware and the comparison is inclusive: a null sample
//	exactly equal to the observed value counts as at least as extreme.
//
// Inputs:
//
//	observed - Metric value on the real data.
//	samples - Null distribution values. Must be non-empty.
//	dir - Which tail is extreme.
//
// Outputs:
//
//	Summary - Zero value if samples is empty.
func Evaluate(observed float64, samples []float64, dir Direction) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{Observed: observed}
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range samples {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n))

	extreme := 0
	for _, v := range samples {
		if dir == Smaller {
			if v <= observed {
				extreme++
			}
		} else if v >= observed {
			extreme++
		}
	}

	s := Summary{
		Observed: observed,
		Mean:     mean,
		Std:      std,
		PValue:   float64(extreme+1) / float64(n+1),
		N:        n,
	}
	if std > 0 {
		s.ZScore = (observed - mean) / std
	}
	return s
}
