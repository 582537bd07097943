package services

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"daytrip-itinerary-service/internal/domain"

	"github.com/google/uuid"
)

// exactSearchLimit is the largest number of freely orderable stops handled by
// the exact subset-DP search. Above this the sequencer falls back to a greedy
// nearest-neighbor construction plus time-budgeted 2-opt improvement.
const exactSearchLimit = 10

// improvementBudget bounds the 2-opt improvement phase for large stop sets.
const improvementBudget = 150 * time.Millisecond

// SequenceStops orders stops into a travel sequence.
//
// With optimize=false the input order is preserved, except that a stop tagged
// origin is forced first and a destination forced last. With optimize=true the
// remaining stops are reordered to minimize total travel duration, subject to:
// origin/destination stay pinned at the ends, and stops carrying a fixed
// scheduled arrival keep their relative chronological order. durations[i][j]
// is the travel duration in seconds from stops[i] to stops[j] and is required
// when optimize is true.
//
// The input slice is never mutated. Ties break on original input order, so
// the result is deterministic while travel metrics are unchanged.
func SequenceStops(stops []domain.Stop, optimize bool, durations [][]int) ([]domain.Stop, error) {
	if len(stops) == 0 {
		return []domain.Stop{}, nil
	}

	originIdx, destIdx := -1, -1
	for i, s := range stops {
		switch s.StopType {
		case domain.StopTypeOrigin:
			if originIdx >= 0 {
				return nil, &domain.SequencingError{
					Reason:  "multiple stops marked origin",
					StopIDs: []uuid.UUID{stops[originIdx].ID, s.ID},
				}
			}
			originIdx = i
		case domain.StopTypeDestination:
			if destIdx >= 0 {
				return nil, &domain.SequencingError{
					Reason:  "multiple stops marked destination",
					StopIDs: []uuid.UUID{stops[destIdx].ID, s.ID},
				}
			}
			destIdx = i
		}
	}

	middle := make([]int, 0, len(stops))
	for i := range stops {
		if i != originIdx && i != destIdx {
			middle = append(middle, i)
		}
	}

	ordered := middle
	if optimize && len(middle) >= 2 {
		if len(durations) != len(stops) {
			return nil, fmt.Errorf("sequence stops: duration matrix has %d rows for %d stops", len(durations), len(stops))
		}
		rank := precedenceRanks(stops, middle)
		if len(middle) <= exactSearchLimit {
			ordered = exactOrder(middle, originIdx, destIdx, durations, rank)
		} else {
			ordered = greedyOrder(middle, originIdx, destIdx, durations, rank)
			ordered = twoOptImprove(ordered, originIdx, destIdx, durations, rank)
		}
	}

	out := make([]domain.Stop, 0, len(stops))
	if originIdx >= 0 {
		out = append(out, stops[originIdx])
	}
	for _, i := range ordered {
		out = append(out, stops[i])
	}
	if destIdx >= 0 {
		out = append(out, stops[destIdx])
	}
	for i := range out {
		out[i].Sequence = i
	}
	return out, nil
}

// precedenceRanks assigns each fixed-time middle stop its position in
// chronological scheduled-arrival order. Equal arrivals keep input order.
// Free stops are absent from the map and may be placed anywhere.
func precedenceRanks(stops []domain.Stop, middle []int) map[int]int {
	fixed := make([]int, 0, len(middle))
	for _, i := range middle {
		if stops[i].HasFixedArrival() {
			fixed = append(fixed, i)
		}
	}
	sort.SliceStable(fixed, func(a, b int) bool {
		return stops[fixed[a]].ScheduledArrival.Before(*stops[fixed[b]].ScheduledArrival)
	})
	rank := make(map[int]int, len(fixed))
	for r, i := range fixed {
		rank[i] = r
	}
	return rank
}

const infDuration = math.MaxInt / 2

// exactOrder solves the open-path ordering problem with a Held-Karp style
// dynamic program over stop subsets. Placing a fixed-time stop is only
// allowed once every fixed-time stop scheduled before it is already placed.
//
// The DP runs backward, computing the cheapest remaining path from each
// (visited set, current stop) state. Reconstruction then walks forward,
// taking the lowest input index whose completion still meets the optimum,
// so equal-cost orders collapse to the one closest to input order.
func exactOrder(middle []int, originIdx, destIdx int, durations [][]int, rank map[int]int) []int {
	n := len(middle)
	full := (1 << n) - 1

	// feasible reports whether middle[k] may be appended to a path that has
	// already placed exactly the stops in mask.
	feasible := func(mask, k int) bool {
		rk, isFixed := rank[middle[k]]
		if !isFixed {
			return true
		}
		for j := 0; j < n; j++ {
			if j == k {
				continue
			}
			if rj, ok := rank[middle[j]]; ok && rj < rk && mask&(1<<j) == 0 {
				return false
			}
		}
		return true
	}

	stepOut := func(k int) int {
		if destIdx >= 0 {
			return durations[middle[k]][destIdx]
		}
		return 0
	}
	stepIn := func(k int) int {
		if originIdx >= 0 {
			return durations[originIdx][middle[k]]
		}
		return 0
	}

	// costToGo[mask][k] is the cheapest way to visit the stops outside mask
	// and reach the destination, standing at middle[k] with mask visited.
	costToGo := make([][]int, 1<<n)
	for m := range costToGo {
		costToGo[m] = make([]int, n)
		for k := range costToGo[m] {
			costToGo[m][k] = infDuration
		}
	}
	// Supersets have larger mask values, so descending order visits them first.
	for mask := full; mask >= 1; mask-- {
		for k := 0; k < n; k++ {
			if mask&(1<<k) == 0 {
				continue
			}
			if mask == full {
				costToGo[mask][k] = stepOut(k)
				continue
			}
			best := infDuration
			for next := 0; next < n; next++ {
				if mask&(1<<next) != 0 || !feasible(mask, next) {
					continue
				}
				if rest := costToGo[mask|1<<next][next]; rest < infDuration {
					if cost := durations[middle[k]][middle[next]] + rest; cost < best {
						best = cost
					}
				}
			}
			costToGo[mask][k] = best
		}
	}

	bestCost := infDuration
	for k := 0; k < n; k++ {
		if !feasible(0, k) || costToGo[1<<k][k] >= infDuration {
			continue
		}
		if cost := stepIn(k) + costToGo[1<<k][k]; cost < bestCost {
			bestCost = cost
		}
	}
	if bestCost >= infDuration {
		// Chronological precedence is always satisfiable, so this only
		// guards against a malformed matrix. Fall back to input order.
		return slices.Clone(middle)
	}

	order := make([]int, 0, n)
	mask, last, remaining := 0, -1, bestCost
	for len(order) < n {
		for next := 0; next < n; next++ {
			if mask&(1<<next) != 0 || !feasible(mask, next) {
				continue
			}
			step := stepIn(next)
			if last >= 0 {
				step = durations[middle[last]][middle[next]]
			}
			if step+costToGo[mask|1<<next][next] != remaining {
				continue
			}
			order = append(order, middle[next])
			mask |= 1 << next
			last = next
			remaining -= step
			break
		}
	}
	return order
}

// greedyOrder builds a sequence by repeatedly taking the reachable stop with
// the smallest travel duration from the current position. Fixed-time stops
// become eligible only in chronological order.
func greedyOrder(middle []int, originIdx, destIdx int, durations [][]int, rank map[int]int) []int {
	_ = destIdx

	order := make([]int, 0, len(middle))
	used := make([]bool, len(middle))
	current := originIdx
	placedFixed := 0

	for len(order) < len(middle) {
		best, bestCost := -1, math.MaxInt
		for pos, idx := range middle {
			if used[pos] {
				continue
			}
			if r, ok := rank[idx]; ok && r != placedFixed {
				continue
			}
			cost := 0
			if current >= 0 {
				cost = durations[current][idx]
			}
			// Strict comparison keeps the earliest input stop on ties.
			if cost < bestCost {
				bestCost = cost
				best = pos
			}
		}
		if best < 0 {
			for pos := range middle {
				if !used[pos] {
					best = pos
					break
				}
			}
		}
		used[best] = true
		idx := middle[best]
		if _, ok := rank[idx]; ok {
			placedFixed++
		}
		order = append(order, idx)
		current = idx
	}
	return order
}

// twoOptImprove applies segment-reversal improvements until no strictly
// better ordering is found or the time budget is exhausted. Reversals that
// contain more than one fixed-time stop would invert their chronological
// order and are skipped.
func twoOptImprove(order []int, originIdx, destIdx int, durations [][]int, rank map[int]int) []int {
	n := len(order)
	if n < 3 {
		return order
	}

	deadline := time.Now().Add(improvementBudget)
	best := pathDuration(order, originIdx, destIdx, durations)

	improved := true
	for improved && time.Now().Before(deadline) {
		improved = false
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				if countFixed(order[i:j+1], rank) > 1 {
					continue
				}
				candidate := slices.Clone(order)
				slices.Reverse(candidate[i : j+1])
				if cost := pathDuration(candidate, originIdx, destIdx, durations); cost < best {
					order = candidate
					best = cost
					improved = true
				}
			}
		}
	}
	return order
}

func pathDuration(order []int, originIdx, destIdx int, durations [][]int) int {
	if len(order) == 0 {
		return 0
	}
	total := 0
	if originIdx >= 0 {
		total += durations[originIdx][order[0]]
	}
	for i := 0; i+1 < len(order); i++ {
		total += durations[order[i]][order[i+1]]
	}
	if destIdx >= 0 {
		total += durations[order[len(order)-1]][destIdx]
	}
	return total
}

func countFixed(segment []int, rank map[int]int) int {
	n := 0
	for _, idx := range segment {
		if _, ok := rank[idx]; ok {
			n++
		}
	}
	return n
}
