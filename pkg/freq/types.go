package freq

// Locus is a genomic coordinate shared across all clades.
type Locus struct {
	Chrom string
	Pos   int
}

// AlleleFreq is one allele observed in one clade at one locus. The frequency
// may be NaN when the source file carried a nan sentinel for missing data.
type AlleleFreq struct {
	Allele string
	Freq   float64
}

// CladeRecord holds what one clade reported for one locus. Freqs keeps the
// column order of the source file, which also decides ties when picking the
// most frequent allele.
type CladeRecord struct {
	GenotypedFrac float64
	Freqs         []AlleleFreq
}

// Freq looks up an allele's frequency. The second return is false when the
// clade never reported that allele, which is different from reporting zero.
func (r CladeRecord) Freq(allele string) (float64, bool) {
	for _, af := range r.Freqs {
		if af.Allele == allele {
			return af.Freq, true
		}
	}
	return 0, false
}

// MaxAllele returns the highest-frequency allele, first one wins on ties.
func (r CladeRecord) MaxAllele() AlleleFreq {
	return MaxAllele(r.Freqs)
}

// MaxAllele picks the highest-frequency entry from a non-empty list, first
// one wins on ties. With NaN frequencies no comparison succeeds, so a leading
// NaN entry stays selected and the caller's threshold test fails as expected.
func MaxAllele(freqs []AlleleFreq) AlleleFreq {
	best := freqs[0]
	for _, af := range freqs[1:] {
		if af.Freq > best.Freq {
			best = af
		}
	}
	return best
}

// LocusClades maps clade names to their records for a single locus, keeping
// clades in the order they were first seen. Setting an existing clade again
// replaces the record but keeps its position.
type LocusClades struct {
	names   []string
	records map[string]CladeRecord
}

func NewLocusClades() *LocusClades {
	return &LocusClades{records: make(map[string]CladeRecord)}
}

func (lc *LocusClades) Set(clade string, rec CladeRecord) {
	if _, ok := lc.records[clade]; !ok {
		lc.names = append(lc.names, clade)
	}
	lc.records[clade] = rec
}

func (lc *LocusClades) Get(clade string) (CladeRecord, bool) {
	rec, ok := lc.records[clade]
	return rec, ok
}

// Names returns the clade names in first-seen order.
func (lc *LocusClades) Names() []string {
	return lc.names
}

func (lc *LocusClades) Len() int {
	return len(lc.names)
}

// Table is the aggregated view of every input file: locus -> clade -> record.
// Loci keep the order they were first seen in, so every downstream analysis
// and report iterates deterministically. A (locus, clade) pair that never
// appeared in any input is simply absent, not a zero record.
type Table struct {
	order []Locus
	loci  map[Locus]*LocusClades
}

func NewTable() *Table {
	return &Table{loci: make(map[Locus]*LocusClades)}
}

func (t *Table) Set(l Locus, clade string, rec CladeRecord) {
	lc, ok := t.loci[l]
	if !ok {
		lc = NewLocusClades()
		t.loci[l] = lc
		t.order = append(t.order, l)
	}
	lc.Set(clade, rec)
}

// Clades returns the clade records at a locus, or nil if the locus is unknown.
func (t *Table) Clades(l Locus) *LocusClades {
	return t.loci[l]
}

// Loci returns every locus in first-seen order.
func (t *Table) Loci() []Locus {
	return t.order
}

func (t *Table) Len() int {
	return len(t.order)
}
