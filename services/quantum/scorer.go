// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package quantum

import "math"

// DefaultPassThreshold is the similarity score at or above which a
// challenge submission counts as completed. It is an untuned product
// constant; callers take the effective value from configuration.
const DefaultPassThreshold = 0.90

// Score computes the Bhattacharyya coefficient between two probability
// distributions: sum over the union of outcomes of sqrt(p_target * p_sub),
// treating absent outcomes as probability zero.
//
// The coefficient is symmetric and bounded to [0, 1]: exactly 1 for
// identical distributions, exactly 0 for disjoint support, and tolerant
// of sampling noise in between, which is what makes partial credit work.
func Score(target, submitted map[string]float64) float64 {
	sum := 0.0
	for k, p := range target {
		if q, ok := submitted[k]; ok {
			sum += math.Sqrt(p * q)
		}
	}
	// Rounding can push the coefficient a hair past 1 for identical
	// inputs; cap it so the range contract holds.
	return math.Min(sum, 1.0)
}
