package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ShaduMan201/symbiosis/internal/model"
)

const (
	runsDir        = "runs"
	experimentsDir = "experiments"

	runFile    = "run.json"
	reportJSON = "report.json"
	reportCSV  = "report.csv"
)

// WriteRunArtifacts persists one evolution run (config, per-generation
// snapshots, final counts) as JSON under baseDir/runs/<runID>/.
func WriteRunArtifacts(baseDir string, run model.RunRecord) (string, error) {
	if run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}
	dir := filepath.Join(baseDir, runsDir, run.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, runFile), run); err != nil {
		return "", err
	}
	return dir, nil
}

// ReadRunArtifacts loads a previously written run record.
func ReadRunArtifacts(baseDir, runID string) (model.RunRecord, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runsDir, runID, runFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return run, true, nil
}

// ListRunIDs returns the IDs of all runs with artifacts under baseDir,
// sorted lexicographically.
func ListRunIDs(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(baseDir, runsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// WriteBatchArtifacts persists a batch experiment summary as JSON and as
// the CSV report under baseDir/experiments/<id>/, returning the directory.
func WriteBatchArtifacts(baseDir string, batch model.BatchRecord) (string, error) {
	if batch.ID == "" {
		return "", fmt.Errorf("experiment id is required")
	}
	dir := filepath.Join(baseDir, experimentsDir, batch.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, reportJSON), batch); err != nil {
		return "", err
	}
	if err := WriteBatchReportCSV(filepath.Join(dir, reportCSV), batch.Rows); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
