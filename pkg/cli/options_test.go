package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/popgenlab/cladefreq/pkg/classify"
)

func TestParseFlatPairs(t *testing.T) {
	opts, err := Parse([]string{"north.frq", "5", "south.frq", "8", "1.0", "0", "out"})
	if err != nil {
		t.Fatal(err)
	}

	if opts.ManifestMode {
		t.Error("flat pairs parsed as manifest mode")
	}
	if len(opts.Inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(opts.Inputs))
	}
	if opts.Inputs[0].Path != "north.frq" || opts.Inputs[0].NIndv != 5 {
		t.Errorf("input[0] = %+v", opts.Inputs[0])
	}
	if opts.Inputs[1].Path != "south.frq" || opts.Inputs[1].NIndv != 8 {
		t.Errorf("input[1] = %+v", opts.Inputs[1])
	}
	if opts.MissTolerance != 1.0 || opts.ErrorTolerance != 0 || opts.OutName != "out" {
		t.Errorf("thresholds = %+v", opts)
	}
	if opts.TopLoci != classify.DefaultTopLoci {
		t.Errorf("TopLoci = %d, want default %d", opts.TopLoci, classify.DefaultTopLoci)
	}
}

func TestParseTrailingLocusCount(t *testing.T) {
	opts, err := Parse([]string{"north.frq", "5", "south.frq", "8", "0.9", "0.01", "out", "50"})
	if err != nil {
		t.Fatal(err)
	}

	if opts.TopLoci != 50 {
		t.Errorf("TopLoci = %d, want 50", opts.TopLoci)
	}
	if opts.OutName != "out" || len(opts.Inputs) != 2 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestParseManifest(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "clades.txt")
	content := "north.frq 5\nsouth.frq 8\n\neast.frq 3\n"
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := Parse([]string{manifest, "1.0", "0", "out", "100"})
	if err != nil {
		t.Fatal(err)
	}

	if !opts.ManifestMode {
		t.Error("existing single file should trigger manifest mode")
	}
	if len(opts.Inputs) != 3 {
		t.Fatalf("got %d inputs, want 3", len(opts.Inputs))
	}
	if opts.Inputs[2].Path != "east.frq" || opts.Inputs[2].NIndv != 3 {
		t.Errorf("input[2] = %+v", opts.Inputs[2])
	}
	if opts.TopLoci != 100 {
		t.Errorf("TopLoci = %d, want 100", opts.TopLoci)
	}
}

func TestParseUsageErrors(t *testing.T) {
	badManifest := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(badManifest, []byte("north.frq 5 extra\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		args []string
	}{
		{"too few arguments", []string{"north.frq", "1.0", "out"}},
		{"odd flat list", []string{"north.frq", "5", "south.frq", "1.0", "0", "out"}},
		{"bad individual count", []string{"north.frq", "five", "1.0", "0", "out"}},
		{"bad miss tolerance", []string{"north.frq", "5", "south.frq", "8", "high", "0", "out"}},
		{"bad error tolerance", []string{"north.frq", "5", "south.frq", "8", "1.0", "low", "out"}},
		{"manifest line with three tokens", []string{badManifest, "1.0", "0", "out"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.args)
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Fatalf("got %v, want UsageError", err)
			}
		})
	}
}

func TestParseNumericOutName(t *testing.T) {
	// A numeric final token is only taken as the locus count when the
	// remaining head still forms a valid file list; here it cannot, so the
	// token stays the output name.
	opts, err := Parse([]string{"north.frq", "5", "1.0", "0", "42"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.OutName != "42" {
		t.Errorf("OutName = %q, want 42", opts.OutName)
	}
	if opts.TopLoci != classify.DefaultTopLoci {
		t.Errorf("TopLoci = %d, want default", opts.TopLoci)
	}
}
