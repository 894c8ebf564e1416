// SQLite archive of run results. The flat-file reports are the primary
// output; the archive keeps the same result sets queryable across runs.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/popgenlab/cladefreq/pkg/classify"
)

// Archive wraps the connection to a results database. The caller owns the
// *sql.DB and its driver registration.
type Archive struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		miss_tolerance REAL NOT NULL,
		error_tolerance REAL NOT NULL,
		top_loci INTEGER NOT NULL,
		clades TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS fixed_alleles (
		run_id TEXT NOT NULL,
		chrom TEXT NOT NULL,
		pos INTEGER NOT NULL,
		clade TEXT NOT NULL,
		allele TEXT NOT NULL,
		freq REAL,
		is_unique INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS private_alleles (
		run_id TEXT NOT NULL,
		chrom TEXT NOT NULL,
		pos INTEGER NOT NULL,
		clade TEXT NOT NULL,
		allele TEXT NOT NULL,
		freq REAL,
		genotyped_frac REAL
	);`,
	`CREATE TABLE IF NOT EXISTS private_sites (
		run_id TEXT NOT NULL,
		chrom TEXT NOT NULL,
		pos INTEGER NOT NULL,
		clade TEXT NOT NULL,
		genotyped_frac REAL
	);`,
	`CREATE TABLE IF NOT EXISTS uniquely_missing_sites (
		run_id TEXT NOT NULL,
		chrom TEXT NOT NULL,
		pos INTEGER NOT NULL,
		clade TEXT NOT NULL,
		genotyped_frac REAL
	);`,
	`CREATE TABLE IF NOT EXISTS divergent_loci (
		run_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		chrom TEXT NOT NULL,
		pos INTEGER NOT NULL,
		score REAL,
		avg_genotyped REAL
	);`,
}

// NewArchive prepares the schema on an open connection.
func NewArchive(sqldb *sql.DB) (*Archive, error) {
	ctx := context.TODO()
	for _, stmt := range schema {
		if _, err := sqldb.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating archive schema: %w", err)
		}
	}
	return &Archive{db: sqldb}, nil
}

// SaveRun stores one run's parameters and every result set in a single
// transaction, so a failed archive never leaves a half-written run behind.
func (a *Archive) SaveRun(ctx context.Context, runID string, clades []string, p classify.Params, res classify.Results) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, miss_tolerance, error_tolerance, top_loci, clades)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339),
		p.MissTolerance, p.ErrorTolerance, p.TopLoci, strings.Join(clades, ","))
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", runID, err)
	}

	if err := insertFixed(ctx, tx, runID, res); err != nil {
		return err
	}
	if err := insertPrivate(ctx, tx, runID, res.Private); err != nil {
		return err
	}
	if err := insertSites(ctx, tx, runID, res.PrivateSites, res.UniquelyMissing); err != nil {
		return err
	}
	if err := insertDivergent(ctx, tx, runID, res.TopDivergent); err != nil {
		return err
	}

	return tx.Commit()
}

func insertFixed(ctx context.Context, tx *sql.Tx, runID string, res classify.Results) error {
	// Unique-fixed membership is a flag on the fixed rows rather than a
	// separate table; the unique report derives from the same loci.
	type fixedKey struct {
		chrom string
		pos   int
		clade string
	}
	unique := make(map[fixedKey]bool)
	for _, fl := range res.UniqueFixed {
		for _, fc := range fl.Clades {
			unique[fixedKey{fl.Locus.Chrom, fl.Locus.Pos, fc.Clade}] = true
		}
	}

	stm, err := tx.PrepareContext(ctx,
		`INSERT INTO fixed_alleles (run_id, chrom, pos, clade, allele, freq, is_unique)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stm.Close()

	for _, fl := range res.Fixed {
		for _, fc := range fl.Clades {
			af := fc.FixedAllele()
			isUnique := unique[fixedKey{fl.Locus.Chrom, fl.Locus.Pos, fc.Clade}]
			if _, err := stm.ExecContext(ctx,
				runID, fl.Locus.Chrom, fl.Locus.Pos, fc.Clade, af.Allele, af.Freq, isUnique); err != nil {
				return fmt.Errorf("inserting fixed allele: %w", err)
			}
		}
	}
	return nil
}

func insertPrivate(ctx context.Context, tx *sql.Tx, runID string, private []classify.PrivateLocus) error {
	stm, err := tx.PrepareContext(ctx,
		`INSERT INTO private_alleles (run_id, chrom, pos, clade, allele, freq, genotyped_frac)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stm.Close()

	for _, pl := range private {
		for _, pc := range pl.Clades {
			for _, pa := range pc.Alleles {
				if _, err := stm.ExecContext(ctx,
					runID, pl.Locus.Chrom, pl.Locus.Pos, pc.Clade, pa.Allele, pa.Freq, pa.GenotypedFrac); err != nil {
					return fmt.Errorf("inserting private allele: %w", err)
				}
			}
		}
	}
	return nil
}

func insertSites(ctx context.Context, tx *sql.Tx, runID string, private []classify.PrivateSite, missing []classify.MissingSite) error {
	stm, err := tx.PrepareContext(ctx,
		`INSERT INTO private_sites (run_id, chrom, pos, clade, genotyped_frac)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, ps := range private {
		if _, err := stm.ExecContext(ctx, runID, ps.Locus.Chrom, ps.Locus.Pos, ps.Clade, ps.GenotypedFrac); err != nil {
			stm.Close()
			return fmt.Errorf("inserting private site: %w", err)
		}
	}
	stm.Close()

	stm, err = tx.PrepareContext(ctx,
		`INSERT INTO uniquely_missing_sites (run_id, chrom, pos, clade, genotyped_frac)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stm.Close()

	for _, ms := range missing {
		for _, cf := range ms.Genotyped {
			if _, err := stm.ExecContext(ctx, runID, ms.Locus.Chrom, ms.Locus.Pos, cf.Clade, cf.GenotypedFrac); err != nil {
				return fmt.Errorf("inserting uniquely missing site: %w", err)
			}
		}
	}
	return nil
}

func insertDivergent(ctx context.Context, tx *sql.Tx, runID string, top []classify.Divergence) error {
	stm, err := tx.PrepareContext(ctx,
		`INSERT INTO divergent_loci (run_id, rank, chrom, pos, score, avg_genotyped)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stm.Close()

	for i, d := range top {
		if _, err := stm.ExecContext(ctx, runID, i+1, d.Locus.Chrom, d.Locus.Pos, d.Score, d.AvgGenotyped); err != nil {
			return fmt.Errorf("inserting divergent locus: %w", err)
		}
	}
	return nil
}

// RunCounts reports how many rows each result table holds for a run. Used
// for post-archive verification and by tests.
func (a *Archive) RunCounts(ctx context.Context, runID string) (map[string]int, error) {
	tables := []string{
		"fixed_alleles", "private_alleles", "private_sites",
		"uniquely_missing_sites", "divergent_loci",
	}

	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE run_id = ?`, table)
		if err := a.db.QueryRowContext(ctx, q, runID).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
