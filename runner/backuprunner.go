// Package runner drives one backup run through its stages: requirement
// checks, workspace creation, database listing, per-database dumps,
// archiving, verification, relocation and retention pruning.
package runner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/liweiyi88/pgbackup/archive"
	"github.com/liweiyi88/pgbackup/catalog"
	"github.com/liweiyi88/pgbackup/config"
	"github.com/liweiyi88/pgbackup/dumper"
	"github.com/liweiyi88/pgbackup/jobresult"
	"github.com/liweiyi88/pgbackup/storage"
	"github.com/liweiyi88/pgbackup/storage/local"
	"github.com/liweiyi88/pgbackup/workspace"
)

const pgDumpBinary = "pg_dump"

type BackupRunner struct {
	config *config.Config

	// seams for tests, the zero values use the real implementations
	openDB    func(dsn string) (*sql.DB, error)
	newDumper func(cfg *config.Config, database string) dumper.Dumper
}

func NewBackupRunner(cfg *config.Config) *BackupRunner {
	return &BackupRunner{
		config: cfg,
		openDB: func(dsn string) (*sql.DB, error) {
			return sql.Open("pgx", dsn)
		},
		newDumper: func(cfg *config.Config, database string) dumper.Dumper {
			return dumper.NewPgDump(cfg, database)
		},
	}
}

// Run executes the whole pipeline. All stages are fail-fast except
// retention pruning and the post-relocation extras (checksum sidecar,
// offsite replication), whose failures are logged and swallowed.
func (r *BackupRunner) Run(ctx context.Context) *jobresult.RunResult {
	start := time.Now()
	result := &jobresult.RunResult{}

	defer func() {
		result.Elapsed = time.Since(start)
	}()

	result.Error = r.run(ctx, start, result)
	return result
}

func (r *BackupRunner) run(ctx context.Context, start time.Time, result *jobresult.RunResult) error {
	if err := r.CheckRequirements(); err != nil {
		return err
	}

	ws, err := workspace.Create(r.config.BaseDir)
	if err != nil {
		return err
	}

	// The workspace never outlives the run, whatever the outcome.
	defer func() {
		if err := ws.Remove(); err != nil {
			slog.Error("fail to remove workspace", slog.Any("path", ws.Path), slog.Any("error", err))
		} else {
			slog.Info("workspace removed", slog.Any("path", ws.Path))
		}
	}()

	slog.Info("workspace created", slog.Any("path", ws.Path))

	databases, err := r.listDatabases()
	if err != nil {
		return err
	}

	result.Databases = databases
	slog.Info("databases to dump", slog.Int("count", len(databases)), slog.Any("databases", databases))

	if err := r.dumpAll(ctx, ws, databases); err != nil {
		return err
	}

	archivePath := ws.ArchivePath(start)

	files, err := ws.DumpFiles()
	if err != nil {
		return err
	}

	if err := archive.Create(archivePath, files); err != nil {
		return fmt.Errorf("fail to create archive: %w", err)
	}

	slog.Info("archive created", slog.Any("path", archivePath))

	entries, err := archive.List(archivePath)
	if err != nil {
		return fmt.Errorf("archive verification failed: %w", err)
	}

	slog.Info("archive verified", slog.Int("entries", len(entries)))

	target := local.New(r.config.TargetDir)

	dest, err := target.Move(archivePath)
	if err != nil {
		return fmt.Errorf("fail to move archive to target directory: %w", err)
	}

	result.Archive = dest
	slog.Info("archive relocated", slog.Any("path", dest))

	if sidecar, err := archive.WriteChecksum(dest); err != nil {
		slog.Error("fail to write checksum sidecar", slog.Any("error", err))
	} else {
		slog.Info("checksum sidecar written", slog.Any("path", sidecar))
	}

	r.replicate(dest, r.config.GetStorages())

	result.Pruned = r.prune(target)

	return ctx.Err()
}

// CheckRequirements verifies that every external piece the run depends on
// is present before any work starts.
func (r *BackupRunner) CheckRequirements() error {
	if r.config.ViaSsh() {
		slog.Info("requirement check skipped, dumping via ssh", slog.Any("host", r.config.SshHost))
	} else {
		path, err := exec.LookPath(pgDumpBinary)
		if err != nil {
			return fmt.Errorf("required tool %s not found on PATH: %w", pgDumpBinary, err)
		}

		slog.Info("requirement check passed", slog.Any("tool", pgDumpBinary), slog.Any("path", path))
	}

	info, err := os.Stat(r.config.TargetDir)
	if err != nil {
		return fmt.Errorf("target directory %s is not accessible: %w", r.config.TargetDir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("target directory %s is not a directory", r.config.TargetDir)
	}

	slog.Info("requirement check passed", slog.Any("targetdir", r.config.TargetDir))
	return nil
}

func (r *BackupRunner) listDatabases() ([]string, error) {
	db, err := r.openDB(r.config.Dsn())
	if err != nil {
		return nil, fmt.Errorf("fail to open database connection: %w", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("fail to close database connection", slog.Any("error", err))
		}
	}()

	return catalog.NewCatalog(db).ListDatabases(r.config.Exclude)
}

// dumpAll dumps every database sequentially. The first failure aborts the
// run, databases after the failed one are not attempted.
func (r *BackupRunner) dumpAll(ctx context.Context, ws *workspace.Workspace, databases []string) error {
	for _, database := range databases {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.dumpOne(ctx, ws, database); err != nil {
			return fmt.Errorf("fail to dump database %s: %w", database, err)
		}
	}

	return nil
}

func (r *BackupRunner) dumpOne(ctx context.Context, ws *workspace.Workspace, database string) error {
	path := ws.DumpFilePath(database)
	slog.Info("dumping database", slog.Any("database", database), slog.Any("path", path))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fail to create dump file %s: %w", path, err)
	}

	if err := r.newDumper(r.config, database).Dump(ctx, file); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("fail to close dump file %s: %w", path, err)
	}

	slog.Info("database dumped", slog.Any("database", database))
	return nil
}

// replicate copies the relocated archive to every configured offsite
// storage. Failures are logged per storage and never affect the others,
// the local artifact already exists.
func (r *BackupRunner) replicate(archivePath string, storages []storage.Storage) {
	filename := filepath.Base(archivePath)

	for _, s := range storages {
		file, err := os.Open(archivePath)
		if err != nil {
			slog.Error("fail to open archive for replication", slog.Any("path", archivePath), slog.Any("error", err))
			continue
		}

		if err := s.Save(file, filename); err != nil {
			slog.Error("fail to replicate archive", slog.Any("storage", fmt.Sprintf("%T", s)), slog.Any("error", err))
		} else {
			slog.Info("archive replicated", slog.Any("storage", fmt.Sprintf("%T", s)))
		}

		if err := file.Close(); err != nil {
			slog.Error("fail to close archive after replication", slog.Any("error", err))
		}
	}
}

func (r *BackupRunner) prune(target *local.Local) []string {
	removed, err := target.Prune(r.config.Keep)

	for _, name := range removed {
		slog.Info("old archive pruned", slog.Any("file", name))
	}

	// Per-item prune failures never fail the run.
	if err != nil {
		slog.Error("retention pruning finished with errors", slog.Any("error", err))
	}

	return removed
}

// Prune applies the retention policy on its own, without a backup run.
func (r *BackupRunner) Prune() ([]string, error) {
	return local.New(r.config.TargetDir).Prune(r.config.Keep)
}
