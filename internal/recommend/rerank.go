// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package recommend

import "math"

// mmrRerank applies Maximal Marginal Relevance reranking to diversify
// an already relevance-sorted feed, using interest-set Jaccard as the
// item-item similarity.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// lambda 1.0 is pure relevance (the input order), 0.0 pure diversity.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
func mmrRerank(items []ScoredBuzz, lambda float64, k int) []ScoredBuzz {
	if len(items) == 0 || k <= 0 {
		return items
	}
	if k > len(items) {
		k = len(items)
	}

	if lambda >= 1.0 {
		return items[:k]
	}
	if lambda < 0 {
		lambda = 0
	}

	n := len(items)
	similarities := make([][]float64, n)
	for i := range similarities {
		similarities[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := JaccardInterests(items[i].Buzz.Interests, items[j].Buzz.Interests)
			similarities[i][j] = sim
			similarities[j][i] = sim
		}
	}

	selected := make([]ScoredBuzz, 0, k)
	selectedIdx := make(map[int]struct{}, k)

	for len(selected) < k {
		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i, item := range items {
			if _, ok := selectedIdx[i]; ok {
				continue
			}

			maxSim := 0.0
			for j := range selectedIdx {
				if similarities[i][j] > maxSim {
					maxSim = similarities[i][j]
				}
			}

			mmrScore := lambda*item.Score - (1-lambda)*maxSim
			if mmrScore > bestMMR {
				bestMMR = mmrScore
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}

		selected = append(selected, items[bestIdx])
		selectedIdx[bestIdx] = struct{}{}
	}

	return selected
}
