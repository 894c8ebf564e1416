package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/popgenlab/cladefreq/pkg/classify"
	"github.com/popgenlab/cladefreq/pkg/freq"
)

func af(allele string, f float64) freq.AlleleFreq {
	return freq.AlleleFreq{Allele: allele, Freq: f}
}

func TestWriteMostDivergent(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMostDivergent(&buf, []classify.Divergence{
		{Locus: freq.Locus{Chrom: "1", Pos: 100}, Score: 2, AvgGenotyped: 1},
		{Locus: freq.Locus{Chrom: "2", Pos: 50}, Score: 0.123456, AvgGenotyped: 0.6789},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "Chrom\tPos\tDivergence_Score\tAvg_Perc_Genotyped\n" +
		"1\t100\t2.0000\t1.00\n" +
		"2\t50\t0.1235\t0.68\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteFixedAlleles(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFixedAlleles(&buf, []classify.FixedLocus{
		{
			Locus: freq.Locus{Chrom: "1", Pos: 100},
			Clades: []classify.FixedClade{
				{Clade: "north", Freqs: []freq.AlleleFreq{af("A", 1), af("T", 0)}},
				{Clade: "south", Freqs: []freq.AlleleFreq{af("A", 0), af("T", 1)}},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "Chrom Pos Clade Allele Freq\n" +
		"1 100 north A 1 north T 0 south A 0 south T 1\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteUniqueFixedAlleles(t *testing.T) {
	var buf bytes.Buffer
	err := WriteUniqueFixedAlleles(&buf, []classify.FixedLocus{
		{
			Locus: freq.Locus{Chrom: "1", Pos: 100},
			Clades: []classify.FixedClade{
				{Clade: "north", Freqs: []freq.AlleleFreq{af("A", 0.99), af("T", 0.01)}},
				{Clade: "south", Freqs: []freq.AlleleFreq{af("A", 0), af("T", 1)}},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Only the fixed allele per clade, not the full list.
	want := "Chrom Pos Clade Allele Freq\n" +
		"1 100 north A 0.99 south T 1\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWritePrivateAlleles(t *testing.T) {
	var buf bytes.Buffer
	err := WritePrivateAlleles(&buf, []classify.PrivateLocus{
		{
			Locus: freq.Locus{Chrom: "1", Pos: 100},
			Clades: []classify.PrivateClade{
				{Clade: "north", Alleles: []classify.PrivateAllele{
					{Allele: "T", Freq: 0.3, GenotypedFrac: 1},
				}},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "Chrom Pos Clade Allele Freq Perc_Genotyped\n" +
		"1 100 north T 0.3 1\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteSiteReports(t *testing.T) {
	var buf bytes.Buffer
	err := WritePrivateSites(&buf, []classify.PrivateSite{
		{Locus: freq.Locus{Chrom: "1", Pos: 100}, Clade: "north", GenotypedFrac: 0.8},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "Chrom Pos Clade Perc_Genotyped\n1 100 north 0.8\n"
	if buf.String() != want {
		t.Errorf("private sites:\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	err = WriteUniquelyMissingSites(&buf, []classify.MissingSite{
		{Locus: freq.Locus{Chrom: "1", Pos: 200}, Genotyped: []classify.CladeFrac{
			{Clade: "north", GenotypedFrac: 1},
			{Clade: "east", GenotypedFrac: 0.6},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want = "Chrom Pos Clade Perc_Genotyped\n1 200 north 1 east 0.6\n"
	if buf.String() != want {
		t.Errorf("uniquely missing sites:\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteAll(t *testing.T) {
	outBase := filepath.Join(t.TempDir(), "run1")
	var res classify.Results

	written, err := WriteAll(outBase, res, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 5 {
		t.Errorf("2 clades: wrote %d files, want 5", len(written))
	}
	if _, err := os.Stat(outBase + SuffixUniquelyMissing); err == nil {
		t.Error("2 clades: uniquely missing report should not exist")
	}

	written, err = WriteAll(outBase, res, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 6 {
		t.Errorf("3 clades: wrote %d files, want 6", len(written))
	}
	for _, p := range written {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing report %s: %v", p, err)
		}
	}
}
