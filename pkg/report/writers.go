// Flat-file reports, one per classifier. Layouts follow the frequency
// comparison convention: a header row, then one row per locus with the
// per-clade entries joined on the same line.

package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/popgenlab/cladefreq/pkg/classify"
)

// fmtFloat renders a frequency or fraction with shortest round-trip
// precision, so 1.0 stays distinguishable from 0.9999999.
func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteMostDivergent writes the ranked divergent loci, tab-delimited.
func WriteMostDivergent(w io.Writer, top []classify.Divergence) error {
	if _, err := fmt.Fprintln(w, "Chrom\tPos\tDivergence_Score\tAvg_Perc_Genotyped"); err != nil {
		return err
	}
	for _, d := range top {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%.4f\t%.2f\n",
			d.Locus.Chrom, d.Locus.Pos, d.Score, d.AvgGenotyped); err != nil {
			return err
		}
	}
	return nil
}

// WriteFixedAlleles writes every fixed clade with its full frequency list.
func WriteFixedAlleles(w io.Writer, fixed []classify.FixedLocus) error {
	if _, err := fmt.Fprintln(w, "Chrom Pos Clade Allele Freq"); err != nil {
		return err
	}
	for _, fl := range fixed {
		if _, err := fmt.Fprintf(w, "%s %d", fl.Locus.Chrom, fl.Locus.Pos); err != nil {
			return err
		}
		for _, fc := range fl.Clades {
			for _, af := range fc.Freqs {
				if _, err := fmt.Fprintf(w, " %s %s %s", fc.Clade, af.Allele, fmtFloat(af.Freq)); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteUniqueFixedAlleles writes only the fixed allele per clade.
func WriteUniqueFixedAlleles(w io.Writer, unique []classify.FixedLocus) error {
	if _, err := fmt.Fprintln(w, "Chrom Pos Clade Allele Freq"); err != nil {
		return err
	}
	for _, fl := range unique {
		if _, err := fmt.Fprintf(w, "%s %d", fl.Locus.Chrom, fl.Locus.Pos); err != nil {
			return err
		}
		for _, fc := range fl.Clades {
			af := fc.FixedAllele()
			if _, err := fmt.Fprintf(w, " %s %s %s", fc.Clade, af.Allele, fmtFloat(af.Freq)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func WritePrivateAlleles(w io.Writer, private []classify.PrivateLocus) error {
	if _, err := fmt.Fprintln(w, "Chrom Pos Clade Allele Freq Perc_Genotyped"); err != nil {
		return err
	}
	for _, pl := range private {
		if _, err := fmt.Fprintf(w, "%s %d", pl.Locus.Chrom, pl.Locus.Pos); err != nil {
			return err
		}
		for _, pc := range pl.Clades {
			for _, pa := range pc.Alleles {
				if _, err := fmt.Fprintf(w, " %s %s %s %s",
					pc.Clade, pa.Allele, fmtFloat(pa.Freq), fmtFloat(pa.GenotypedFrac)); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func WritePrivateSites(w io.Writer, sites []classify.PrivateSite) error {
	if _, err := fmt.Fprintln(w, "Chrom Pos Clade Perc_Genotyped"); err != nil {
		return err
	}
	for _, ps := range sites {
		if _, err := fmt.Fprintf(w, "%s %d %s %s\n",
			ps.Locus.Chrom, ps.Locus.Pos, ps.Clade, fmtFloat(ps.GenotypedFrac)); err != nil {
			return err
		}
	}
	return nil
}

func WriteUniquelyMissingSites(w io.Writer, sites []classify.MissingSite) error {
	if _, err := fmt.Fprintln(w, "Chrom Pos Clade Perc_Genotyped"); err != nil {
		return err
	}
	for _, ms := range sites {
		if _, err := fmt.Fprintf(w, "%s %d", ms.Locus.Chrom, ms.Locus.Pos); err != nil {
			return err
		}
		for _, cf := range ms.Genotyped {
			if _, err := fmt.Fprintf(w, " %s %s", cf.Clade, fmtFloat(cf.GenotypedFrac)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// Suffixes of the report files, appended to the run's output base name.
const (
	SuffixMostDivergent   = "_most_divergent_loci.txt"
	SuffixFixed           = "_fixed_alleles.txt"
	SuffixUniqueFixed     = "_unique_fixed_alleles.txt"
	SuffixPrivate         = "_private_alleles.txt"
	SuffixPrivateSites    = "_private_sites.txt"
	SuffixUniquelyMissing = "_uniquely_missing_sites.txt"
)

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteAll writes the report files next to outBase and returns their paths.
// The uniquely-missing report only makes sense with more than two clades
// (with two, a missing clade always makes the site private instead), so it
// is skipped for smaller runs.
func WriteAll(outBase string, res classify.Results, nClades int) ([]string, error) {
	type reportFile struct {
		suffix string
		write  func(io.Writer) error
	}

	files := []reportFile{
		{SuffixMostDivergent, func(w io.Writer) error { return WriteMostDivergent(w, res.TopDivergent) }},
		{SuffixFixed, func(w io.Writer) error { return WriteFixedAlleles(w, res.Fixed) }},
		{SuffixUniqueFixed, func(w io.Writer) error { return WriteUniqueFixedAlleles(w, res.UniqueFixed) }},
		{SuffixPrivate, func(w io.Writer) error { return WritePrivateAlleles(w, res.Private) }},
		{SuffixPrivateSites, func(w io.Writer) error { return WritePrivateSites(w, res.PrivateSites) }},
	}
	if nClades > 2 {
		files = append(files,
			reportFile{SuffixUniquelyMissing, func(w io.Writer) error { return WriteUniquelyMissingSites(w, res.UniquelyMissing) }})
	}

	var written []string
	for _, out := range files {
		p := outBase + out.suffix
		if err := writeFile(p, out.write); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}
