//go:build sqlite

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEvolveCommandSQLitePersistsRun(t *testing.T) {
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	workdir := t.TempDir()
	if err := os.Chdir(workdir); err != nil {
		t.Fatalf("chdir tempdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origWD)
	})

	dbPath := filepath.Join(workdir, "symbiosis.db")
	args := []string{
		"evolve",
		"--store", "sqlite",
		"--db-path", dbPath,
		"--run-id", "run-sqlite-1",
		"--composition", "tit-for-tat=4,always-defect=4",
		"--rounds", "10",
		"--gens", "2",
		"--seed", "11",
	}
	if err := run(context.Background(), args); err != nil {
		t.Fatalf("evolve command: %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db at %s: %v", dbPath, err)
	}

	listArgs := []string{"runs", "--store", "sqlite", "--db-path", dbPath}
	if err := run(context.Background(), listArgs); err != nil {
		t.Fatalf("runs command: %v", err)
	}

	exportArgs := []string{"export", "--store", "sqlite", "--db-path", dbPath, "--run-id", "run-sqlite-1"}
	if err := run(context.Background(), exportArgs); err != nil {
		t.Fatalf("export command: %v", err)
	}

	runFile := filepath.Join(workdir, "exports", "runs", "run-sqlite-1", "run.json")
	if _, err := os.Stat(runFile); err != nil {
		t.Fatalf("expected exported run at %s: %v", runFile, err)
	}
}
