// Fixed-allele detection: which clades are (nearly) fixed for a single
// allele at each locus, and at which loci every fixed clade picked a
// different allele.

package classify

import (
	"github.com/popgenlab/cladefreq/pkg/freq"
)

// FixedClade is one clade that passed the fixation test at a locus. The full
// frequency list is kept, not just the fixed allele, so reports can show the
// residual frequencies.
type FixedClade struct {
	Clade string
	Freqs []freq.AlleleFreq
}

// FixedAllele is the allele this clade is fixed for.
func (fc FixedClade) FixedAllele() freq.AlleleFreq {
	return freq.MaxAllele(fc.Freqs)
}

type FixedLocus struct {
	Locus  freq.Locus
	Clades []FixedClade
}

// IdentifyFixed returns every locus with at least one fixed clade, in table
// order. A clade is fixed when it is genotyped well enough (missTolerance)
// and its top allele reaches 1 - errTolerance. Clades with NaN frequencies
// never pass the threshold test.
func IdentifyFixed(t *freq.Table, missTolerance, errTolerance float64) []FixedLocus {
	var out []FixedLocus

	for _, locus := range t.Loci() {
		lc := t.Clades(locus)

		var fixed []FixedClade
		for _, clade := range lc.Names() {
			rec, _ := lc.Get(clade)
			if len(rec.Freqs) == 0 {
				continue
			}
			if rec.GenotypedFrac >= missTolerance && rec.MaxAllele().Freq >= 1-errTolerance {
				fixed = append(fixed, FixedClade{Clade: clade, Freqs: rec.Freqs})
			}
		}

		if len(fixed) > 0 {
			out = append(out, FixedLocus{Locus: locus, Clades: fixed})
		}
	}

	return out
}

// FindUniqueFixed keeps the loci where the fixed clades disagree: either a
// single clade is fixed, or every fixed clade settled on a different allele.
// Loci with any shared fixed allele are dropped entirely.
func FindUniqueFixed(fixed []FixedLocus) []FixedLocus {
	var out []FixedLocus

	for _, fl := range fixed {
		if len(fl.Clades) == 1 {
			out = append(out, fl)
			continue
		}

		seen := make(map[string]bool, len(fl.Clades))
		duplicate := false
		for _, fc := range fl.Clades {
			allele := fc.FixedAllele().Allele
			if seen[allele] {
				duplicate = true
				break
			}
			seen[allele] = true
		}

		if !duplicate {
			out = append(out, fl)
		}
	}

	return out
}
