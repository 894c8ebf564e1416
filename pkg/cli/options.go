// Command line parsing. The surface is purely positional:
//
//	cladefreq FILE N_INDV [FILE N_INDV ...] MISS_TOL ERR_TOL OUT_NAME [NUM_DIV_LOCI]
//	cladefreq MANIFEST MISS_TOL ERR_TOL OUT_NAME [NUM_DIV_LOCI]
//
// where MANIFEST is a two-column whitespace file of (path, individual count).

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/popgenlab/cladefreq/internal/util"
	"github.com/popgenlab/cladefreq/pkg/classify"
	"github.com/popgenlab/cladefreq/pkg/freq"
)

// UsageError marks input the user has to fix, as opposed to bad data files.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

type Options struct {
	Inputs         []freq.CladeInput
	MissTolerance  float64
	ErrorTolerance float64
	OutName        string
	TopLoci        int
	ManifestMode   bool
}

func Usage() string {
	return strings.TrimLeft(`
Usage:
  cladefreq FILE N_INDV [FILE N_INDV ...] MISS_TOL ERR_TOL OUT_NAME [NUM_DIV_LOCI]
  cladefreq MANIFEST MISS_TOL ERR_TOL OUT_NAME [NUM_DIV_LOCI]

Inputs are vcftools --freq tables, one per clade, each paired with the
number of individuals in that clade. A single existing file is read as a
manifest with one "path count" pair per line. MISS_TOL is the minimum
genotyped fraction for the fixed-allele test, ERR_TOL the allowed distance
from full fixation, OUT_NAME the base name of the report files and
NUM_DIV_LOCI the size of the divergence ranking (default 200).
`, "\n")
}

// Parse resolves the positional arguments into Options. The trailing locus
// count is optional: it is taken only when the final token is an integer and
// the tokens before the three fixed positionals still form a valid file
// specification.
func Parse(args []string) (*Options, error) {
	if len(args) < 4 {
		return nil, usageErrorf("expected at least 4 arguments, got %d", len(args))
	}

	head := args[:len(args)-3]
	missTok, errTok, outName := args[len(args)-3], args[len(args)-2], args[len(args)-1]
	topLoci := classify.DefaultTopLoci

	if len(args) >= 5 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil && validFileSpec(args[:len(args)-4]) {
			head = args[:len(args)-4]
			missTok, errTok, outName = args[len(args)-4], args[len(args)-3], args[len(args)-2]
			topLoci = n
		}
	}

	missTolerance, err := strconv.ParseFloat(missTok, 64)
	if err != nil {
		return nil, usageErrorf("bad missing-data tolerance %q", missTok)
	}
	errTolerance, err := strconv.ParseFloat(errTok, 64)
	if err != nil {
		return nil, usageErrorf("bad error tolerance %q", errTok)
	}

	opts := &Options{
		MissTolerance:  missTolerance,
		ErrorTolerance: errTolerance,
		OutName:        outName,
		TopLoci:        topLoci,
	}

	if len(head) == 1 && util.FileExists(head[0]) {
		opts.ManifestMode = true
		opts.Inputs, err = readManifest(head[0])
		if err != nil {
			return nil, err
		}
		return opts, nil
	}

	opts.Inputs, err = pairInputs(head)
	if err != nil {
		return nil, err
	}
	return opts, nil
}

func validFileSpec(head []string) bool {
	if len(head) == 1 {
		return util.FileExists(head[0])
	}
	return len(head) > 0 && len(head)%2 == 0
}

func pairInputs(head []string) ([]freq.CladeInput, error) {
	if len(head) == 0 || len(head)%2 != 0 {
		return nil, usageErrorf("file list must contain pairs of (filename, number of individuals)")
	}

	inputs := make([]freq.CladeInput, 0, len(head)/2)
	for i := 0; i < len(head); i += 2 {
		n, err := strconv.Atoi(head[i+1])
		if err != nil {
			return nil, usageErrorf("bad individual count %q for %s", head[i+1], head[i])
		}
		inputs = append(inputs, freq.CladeInput{Path: head[i], NIndv: n})
	}
	return inputs, nil
}

func readManifest(path string) ([]freq.CladeInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var inputs []freq.CladeInput

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, usageErrorf("%s line %d: each manifest line must contain a filename and a number of individuals", path, lineNo)
		}

		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, usageErrorf("%s line %d: bad individual count %q", path, lineNo, parts[1])
		}
		inputs = append(inputs, freq.CladeInput{Path: parts[0], NIndv: n})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(inputs) == 0 {
		return nil, usageErrorf("manifest %s lists no input files", path)
	}
	return inputs, nil
}
