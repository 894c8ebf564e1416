package classify

import (
	"github.com/popgenlab/cladefreq/pkg/freq"
)

type cladeEntry struct {
	clade string
	frac  float64
	freqs []freq.AlleleFreq
}

type tableRow struct {
	locus  freq.Locus
	clades []cladeEntry
}

func makeTable(rows []tableRow) *freq.Table {
	t := freq.NewTable()
	for _, r := range rows {
		for _, c := range r.clades {
			t.Set(r.locus, c.clade, freq.CladeRecord{GenotypedFrac: c.frac, Freqs: c.freqs})
		}
	}
	return t
}

func af(allele string, f float64) freq.AlleleFreq {
	return freq.AlleleFreq{Allele: allele, Freq: f}
}
