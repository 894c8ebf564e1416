// Site-level presence classification: loci genotyped in only one clade, and
// loci missing from exactly one clade.

package classify

import (
	"github.com/popgenlab/cladefreq/pkg/freq"
)

// PrivateSite is a locus genotyped in a single clade while at least one
// other clade reported zero genotyped individuals.
type PrivateSite struct {
	Locus         freq.Locus
	Clade         string
	GenotypedFrac float64
}

// CladeFrac pairs a clade with its genotyped fraction at some locus.
type CladeFrac struct {
	Clade         string
	GenotypedFrac float64
}

// MissingSite is a locus where exactly one clade is missing and the rest
// are genotyped. Genotyped keeps the clades in table order.
type MissingSite struct {
	Locus     freq.Locus
	Genotyped []CladeFrac
}

// FindPrivateSites partitions each locus's clades into genotyped
// (fraction > 0) and missing (fraction == 0) and records the two interesting
// shapes. The outcomes are mutually exclusive per locus: a locus with one
// genotyped clade cannot also have more than one. Clades absent from the
// table for a locus count as neither genotyped nor missing.
func FindPrivateSites(t *freq.Table) ([]PrivateSite, []MissingSite) {
	var private []PrivateSite
	var missing []MissingSite

	for _, locus := range t.Loci() {
		lc := t.Clades(locus)

		var genotyped []CladeFrac
		nMissing := 0
		for _, clade := range lc.Names() {
			rec, _ := lc.Get(clade)
			if rec.GenotypedFrac > 0 {
				genotyped = append(genotyped, CladeFrac{Clade: clade, GenotypedFrac: rec.GenotypedFrac})
			} else if rec.GenotypedFrac == 0 {
				nMissing++
			}
		}

		if len(genotyped) == 1 && nMissing > 0 {
			private = append(private, PrivateSite{
				Locus:         locus,
				Clade:         genotyped[0].Clade,
				GenotypedFrac: genotyped[0].GenotypedFrac,
			})
		}

		if len(genotyped) > 1 && nMissing == 1 {
			missing = append(missing, MissingSite{Locus: locus, Genotyped: genotyped})
		}
	}

	return private, missing
}
