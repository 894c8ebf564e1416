// cladefreq compares per-clade allele frequency tables (vcftools --freq
// output) to find fixed alleles, uniquely fixed alleles, private alleles,
// single-clade sites and the most divergent loci.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/popgenlab/cladefreq/internal/util"
	"github.com/popgenlab/cladefreq/logger"
	"github.com/popgenlab/cladefreq/pkg/cli"
	"github.com/popgenlab/cladefreq/pkg/classify"
	mydb "github.com/popgenlab/cladefreq/pkg/db"
	"github.com/popgenlab/cladefreq/pkg/freq"
	"github.com/popgenlab/cladefreq/pkg/report"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

func main() {

	VERSION := "0.1.0"

	// Try load env before the logger so CLADEFREQ_LOG_LEVEL can come from .env
	dotenvErr := godotenv.Load()

	if err := logger.InitLogger(logger.ParseLevel(os.Getenv("CLADEFREQ_LOG_LEVEL"))); err != nil {
		panic(err)
	}

	defer logger.Sync() // Make sure that the buffered is flushed.

	if dotenvErr != nil {
		logger.Warn("No .env found, using local environment")
	}

	opts, err := cli.Parse(os.Args[1:])
	if err != nil {
		var uerr *cli.UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(os.Stderr, "cladefreq: %s\n\n%s", uerr.Msg, cli.Usage())
			os.Exit(2)
		}
		logger.Fatal("Reading arguments failed", zap.Error(err))
	}

	runID := uuid.New().String()
	logger.Info("Start:", zap.String("Version", VERSION), zap.String("run_id", runID))

	if opts.ManifestMode {
		logger.Info("Detected input as a manifest file", zap.Int("clades", len(opts.Inputs)))
	} else {
		logger.Info("Detected input as direct arguments", zap.Int("clades", len(opts.Inputs)))
	}

	outDir := os.Getenv("CLADEFREQ_DATA")
	if outDir == "" {
		outDir = "."
	} else if !util.DirExists(outDir) {
		logger.Fatal("Output directory does not exist", zap.String("CLADEFREQ_DATA", outDir))
	}

	table, err := freq.Aggregate(opts.Inputs)
	if err != nil {
		logger.Fatal("Loading frequency files failed", zap.Error(err))
	}
	logger.Info("Aggregated frequency tables", zap.Int("loci", table.Len()))

	params := classify.Params{
		MissTolerance:  opts.MissTolerance,
		ErrorTolerance: opts.ErrorTolerance,
		TopLoci:        opts.TopLoci,
	}
	res := classify.Run(table, params)

	logger.Info("Classification done",
		zap.Int("fixed_loci", len(res.Fixed)),
		zap.Int("unique_fixed_loci", len(res.UniqueFixed)),
		zap.Int("private_allele_loci", len(res.Private)),
		zap.Int("private_sites", len(res.PrivateSites)),
		zap.Int("uniquely_missing_sites", len(res.UniquelyMissing)),
		zap.Int("top_divergent", len(res.TopDivergent)))

	if len(opts.Inputs) > 2 {
		logger.Info("More than 2 clades: writing uniquely missing sites report")
	}

	written, err := report.WriteAll(filepath.Join(outDir, opts.OutName), res, len(opts.Inputs))
	if err != nil {
		logger.Fatal("Writing reports failed", zap.Error(err))
	}
	for _, p := range written {
		logger.Info("Wrote report", zap.String("path", p))
	}

	if dbPath := os.Getenv("CLADEFREQ_DB"); dbPath != "" {
		archiveRun(dbPath, runID, opts, params, res)
	}

	logger.Info("Files written successfully.")
}

// archiveRun stores the run in the sqlite archive named by CLADEFREQ_DB.
// Archive failures are fatal, even though the flat files are already on disk.
func archiveRun(dbPath, runID string, opts *cli.Options, params classify.Params, res classify.Results) {
	sqldb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		logger.Fatal("Opening archive database failed", zap.String("path", dbPath), zap.Error(err))
	}
	defer sqldb.Close()

	archive, err := mydb.NewArchive(sqldb)
	if err != nil {
		logger.Fatal("Preparing archive schema failed", zap.String("path", dbPath), zap.Error(err))
	}

	clades := make([]string, 0, len(opts.Inputs))
	for _, in := range opts.Inputs {
		clades = append(clades, in.CladeName())
	}

	if err := archive.SaveRun(context.Background(), runID, clades, params, res); err != nil {
		logger.Fatal("Archiving run failed", zap.String("path", dbPath), zap.Error(err))
	}

	logger.Info("Archived run", zap.String("path", dbPath), zap.String("run_id", runID))
}
