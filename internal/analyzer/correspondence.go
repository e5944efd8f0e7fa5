package analyzer

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/ludo-technologies/variscan/internal/parser"
	"github.com/ludo-technologies/variscan/internal/similarity"
)

// CheckerFactory creates a checker owned by a single goroutine
type CheckerFactory func() *similarity.Checker

// FindCorrespondences pairs every left node with the first unpaired right
// node it is similar to, in document order. The result holds the right
// index for each left node, or -1.
//
// Similarity verdicts are computed on a bounded worker pool where each
// worker owns its checker; the pairing itself is sequential, so the result
// equals a fully sequential run.
func FindCorrespondences(lefts, rights []*parser.Node, newChecker CheckerFactory, maxWorkers int) []int {
	candidates := similarityCandidates(lefts, rights, newChecker, maxWorkers)
	return assignGreedy(len(lefts), len(rights), candidates)
}

// similarityCandidates returns, for each left node, the ascending indices of
// the right nodes it is similar to
func similarityCandidates(lefts, rights []*parser.Node, newChecker CheckerFactory, maxWorkers int) [][]int {
	candidates := make([][]int, len(lefts))
	if len(lefts) == 0 || len(rights) == 0 {
		return candidates
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	chunk := (len(lefts) + maxWorkers - 1) / maxWorkers

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for start := 0; start < len(lefts); start += chunk {
		end := min(start+chunk, len(lefts))
		p.Go(func() {
			checker := newChecker()
			for i := start; i < end; i++ {
				for j, r := range rights {
					if checker.IsSimilar(lefts[i], r).IsSimilar() {
						candidates[i] = append(candidates[i], j)
					}
				}
			}
		})
	}
	p.Wait()

	return candidates
}

func assignGreedy(nLeft, nRight int, candidates [][]int) []int {
	result := make([]int, nLeft)
	taken := make([]bool, nRight)
	for i := range result {
		result[i] = -1
		for _, j := range candidates[i] {
			if !taken[j] {
				taken[j] = true
				result[i] = j
				break
			}
		}
	}
	return result
}
