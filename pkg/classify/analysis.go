package classify

import (
	"sync"

	"github.com/popgenlab/cladefreq/pkg/freq"
)

// Params are the thresholds a run applies across the classifiers.
type Params struct {
	MissTolerance  float64
	ErrorTolerance float64
	TopLoci        int
}

// Results collects every classifier's output for one run.
type Results struct {
	Fixed           []FixedLocus
	UniqueFixed     []FixedLocus
	Private         []PrivateLocus
	PrivateSites    []PrivateSite
	UniquelyMissing []MissingSite
	Divergence      []Divergence
	TopDivergent    []Divergence
}

// Run executes all analyses over the table. The four chains are independent
// and read-only over the table, so they run concurrently; each goroutine
// writes only its own result fields and the output does not depend on
// scheduling. TopLoci is taken as given, a zero count means an empty
// ranking; defaulting is the argument parser's job.
func Run(t *freq.Table, p Params) Results {
	var res Results
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		res.Fixed = IdentifyFixed(t, p.MissTolerance, p.ErrorTolerance)
		res.UniqueFixed = FindUniqueFixed(res.Fixed)
	}()
	go func() {
		defer wg.Done()
		res.Private = IdentifyPrivate(t, p.ErrorTolerance)
	}()
	go func() {
		defer wg.Done()
		res.PrivateSites, res.UniquelyMissing = FindPrivateSites(t)
	}()
	go func() {
		defer wg.Done()
		res.Divergence = ScoreDivergence(t)
		res.TopDivergent = SelectTop(res.Divergence, p.TopLoci)
	}()

	wg.Wait()
	return res
}
