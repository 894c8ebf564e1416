// Loader for per-clade allele frequency tables, as produced by
// vcftools --freq (one file per clade, tab-delimited, header row).

package freq

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path"
	"strconv"
	"strings"
)

// MalformedRecordError reports an input file that cannot be parsed, with
// enough context to find the offending line. Any such error aborts the run.
type MalformedRecordError struct {
	Path string
	Line int // 1-based, 0 when the problem is not tied to a line
	Msg  string
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed record in %s line %d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("malformed record in %s: %s", e.Path, e.Msg)
}

// CladeInput names one frequency file and the number of individuals the
// clade's genotyped fraction is measured against.
type CladeInput struct {
	Path  string
	NIndv int
}

// CladeName derives the clade name from the file path base, without the
// .frq suffix vcftools attaches.
func (in CladeInput) CladeName() string {
	return strings.TrimSuffix(path.Base(in.Path), ".frq")
}

// Column names located in the header row. Order in the file does not matter.
const (
	colChrom      = "CHROM"
	colPos        = "POS"
	colNAlleles   = "N_ALLELES"
	colNChr       = "N_CHR"
	colAlleleFreq = "{ALLELE:FREQ}"
)

type headerIndex struct {
	chrom, pos, nAlleles, nChr, alleleFreq int
}

func indexHeader(fields []string) (headerIndex, error) {
	idx := headerIndex{chrom: -1, pos: -1, nAlleles: -1, nChr: -1, alleleFreq: -1}
	for i, name := range fields {
		switch name {
		case colChrom:
			idx.chrom = i
		case colPos:
			idx.pos = i
		case colNAlleles:
			idx.nAlleles = i
		case colNChr:
			idx.nChr = i
		case colAlleleFreq:
			idx.alleleFreq = i
		}
	}
	for _, c := range []struct {
		name string
		pos  int
	}{
		{colChrom, idx.chrom},
		{colPos, idx.pos},
		{colNAlleles, idx.nAlleles},
		{colNChr, idx.nChr},
		{colAlleleFreq, idx.alleleFreq},
	} {
		if c.pos < 0 {
			return idx, fmt.Errorf("missing column %s", c.name)
		}
	}
	return idx, nil
}

// parseFreq parses a frequency cell value. vcftools writes -nan (and on some
// platforms nan) for sites with no genotyped individuals; strconv rejects the
// signed form, so the sentinel is handled before ParseFloat.
func parseFreq(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "nan", "-nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// LoadCladeFile reads one clade's frequency table into locus -> record form,
// keeping loci in file order. nIndv must be positive: the genotyped fraction
// divides by it, and a silent division by zero would poison every analysis
// downstream.
func LoadCladeFile(p string, nIndv int) (map[Locus]CladeRecord, []Locus, error) {
	if nIndv <= 0 {
		return nil, nil, &MalformedRecordError{
			Path: p,
			Msg:  fmt.Sprintf("expected individual count must be positive, got %d", nIndv),
		}
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, &MalformedRecordError{Path: p, Line: 1, Msg: "empty file, no header row"}
	}

	idx, err := indexHeader(strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t"))
	if err != nil {
		return nil, nil, &MalformedRecordError{Path: p, Line: 1, Msg: err.Error()}
	}

	records := make(map[Locus]CladeRecord)
	var order []Locus

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")

		locus, rec, err := parseRow(fields, idx, nIndv)
		if err != nil {
			return nil, nil, &MalformedRecordError{Path: p, Line: lineNo, Msg: err.Error()}
		}

		if _, seen := records[locus]; !seen {
			order = append(order, locus)
		}
		records[locus] = rec
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	return records, order, nil
}

func parseRow(fields []string, idx headerIndex, nIndv int) (Locus, CladeRecord, error) {
	var locus Locus
	var rec CladeRecord

	need := idx.chrom
	for _, i := range []int{idx.pos, idx.nAlleles, idx.nChr, idx.alleleFreq} {
		if i > need {
			need = i
		}
	}
	if len(fields) <= need {
		return locus, rec, fmt.Errorf("expected at least %d columns, got %d", need+1, len(fields))
	}

	locus.Chrom = fields[idx.chrom]

	pos, err := strconv.Atoi(fields[idx.pos])
	if err != nil {
		return locus, rec, fmt.Errorf("bad %s value %q", colPos, fields[idx.pos])
	}
	locus.Pos = pos

	nAlleles, err := strconv.Atoi(fields[idx.nAlleles])
	if err != nil || nAlleles < 0 {
		return locus, rec, fmt.Errorf("bad %s value %q", colNAlleles, fields[idx.nAlleles])
	}

	nChr, err := strconv.Atoi(fields[idx.nChr])
	if err != nil || nChr < 0 {
		return locus, rec, fmt.Errorf("bad %s value %q", colNChr, fields[idx.nChr])
	}

	if len(fields) < idx.alleleFreq+nAlleles {
		return locus, rec, fmt.Errorf("row declares %d alleles but carries %d cells",
			nAlleles, len(fields)-idx.alleleFreq)
	}

	rec.Freqs = make([]AlleleFreq, 0, nAlleles)
	for j := 0; j < nAlleles; j++ {
		cell := fields[idx.alleleFreq+j]
		sep := strings.LastIndex(cell, ":")
		if sep < 0 {
			return locus, rec, fmt.Errorf("bad allele cell %q, want allele:freq", cell)
		}
		fval, err := parseFreq(cell[sep+1:])
		if err != nil {
			return locus, rec, fmt.Errorf("bad frequency in cell %q", cell)
		}
		rec.Freqs = append(rec.Freqs, AlleleFreq{Allele: cell[:sep], Freq: fval})
	}

	// Diploid individuals, so two chromosomes each.
	rec.GenotypedFrac = float64(nChr) / 2 / float64(nIndv)

	return locus, rec, nil
}
