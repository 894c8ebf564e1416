// Private-allele detection: alleles carried above threshold by exactly one
// clade at a locus.

package classify

import (
	"math"

	"github.com/popgenlab/cladefreq/pkg/freq"
)

type PrivateAllele struct {
	Allele        string
	Freq          float64
	GenotypedFrac float64
}

type PrivateClade struct {
	Clade   string
	Alleles []PrivateAllele
}

type PrivateLocus struct {
	Locus  freq.Locus
	Clades []PrivateClade
}

// IdentifyPrivate returns, in table order, every locus where some clade
// carries an allele above errTolerance that no other clade carries above
// errTolerance. A locus is skipped outright when any of its clades has a
// zero genotyped fraction or a NaN frequency: private calls need evidence
// from every clade, and those clades contributed none.
func IdentifyPrivate(t *freq.Table, errTolerance float64) []PrivateLocus {
	var out []PrivateLocus

	for _, locus := range t.Loci() {
		lc := t.Clades(locus)
		if unusableLocus(lc) {
			continue
		}

		var clades []PrivateClade
		for _, clade := range lc.Names() {
			rec, _ := lc.Get(clade)

			var private []PrivateAllele
			for _, af := range rec.Freqs {
				if af.Freq <= errTolerance {
					continue
				}
				if alleleSeenElsewhere(lc, clade, af.Allele, errTolerance) {
					continue
				}
				private = append(private, PrivateAllele{
					Allele:        af.Allele,
					Freq:          af.Freq,
					GenotypedFrac: rec.GenotypedFrac,
				})
			}

			if len(private) > 0 {
				clades = append(clades, PrivateClade{Clade: clade, Alleles: private})
			}
		}

		if len(clades) > 0 {
			out = append(out, PrivateLocus{Locus: locus, Clades: clades})
		}
	}

	return out
}

// unusableLocus reports whether any clade at the locus was not genotyped at
// all or carries a NaN frequency sentinel.
func unusableLocus(lc *freq.LocusClades) bool {
	for _, clade := range lc.Names() {
		rec, _ := lc.Get(clade)
		if rec.GenotypedFrac == 0 {
			return true
		}
		for _, af := range rec.Freqs {
			if math.IsNaN(af.Freq) {
				return true
			}
		}
	}
	return false
}

func alleleSeenElsewhere(lc *freq.LocusClades, clade, allele string, errTolerance float64) bool {
	for _, other := range lc.Names() {
		if other == clade {
			continue
		}
		rec, _ := lc.Get(other)
		if f, ok := rec.Freq(allele); ok && f > errTolerance {
			return true
		}
	}
	return false
}
