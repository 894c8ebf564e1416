// Divergence scoring: how far apart the clades' allele frequencies are at
// each locus, and the ranked top-N selection.

package classify

import (
	"math"
	"sort"

	"github.com/popgenlab/cladefreq/pkg/freq"
)

// DefaultTopLoci is how many divergent loci the selector keeps when the
// caller gives no count.
const DefaultTopLoci = 200

type Divergence struct {
	Locus        freq.Locus
	Score        float64
	AvgGenotyped float64
}

// ScoreDivergence scores every locus with at least two clade records, in
// table order. The score sums, over the union of alleles seen at the locus,
// the spread between the highest and lowest clade frequency; a clade that
// never reported an allele counts as frequency 0 for it. NaN frequencies
// propagate into the score and are dealt with at selection time, not here.
func ScoreDivergence(t *freq.Table) []Divergence {
	var out []Divergence

	for _, locus := range t.Loci() {
		lc := t.Clades(locus)
		if lc.Len() < 2 {
			continue
		}

		var alleles []string
		seen := make(map[string]bool)
		totalGenotyped := 0.0
		for _, clade := range lc.Names() {
			rec, _ := lc.Get(clade)
			totalGenotyped += rec.GenotypedFrac
			for _, af := range rec.Freqs {
				if !seen[af.Allele] {
					seen[af.Allele] = true
					alleles = append(alleles, af.Allele)
				}
			}
		}

		score := 0.0
		for _, allele := range alleles {
			score += spread(lc, allele)
		}

		out = append(out, Divergence{
			Locus:        locus,
			Score:        score,
			AvgGenotyped: totalGenotyped / float64(lc.Len()),
		})
	}

	return out
}

// spread is max - min of the allele's frequency across the locus's clades,
// absent treated as 0.
func spread(lc *freq.LocusClades, allele string) float64 {
	first := true
	var lo, hi float64
	for _, clade := range lc.Names() {
		rec, _ := lc.Get(clade)
		f, ok := rec.Freq(allele)
		if !ok {
			f = 0
		}
		if first {
			lo, hi = f, f
			first = false
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return hi - lo
}

// SelectTop drops NaN scores, sorts descending by score rounded to six
// decimal places and returns the first n entries. The sort is stable, so
// ties keep table order. n <= 0 returns nothing.
func SelectTop(scores []Divergence, n int) []Divergence {
	ranked := make([]Divergence, 0, len(scores))
	for _, d := range scores {
		if math.IsNaN(d.Score) {
			continue
		}
		ranked = append(ranked, d)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return round6(ranked[i].Score) > round6(ranked[j].Score)
	})

	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
