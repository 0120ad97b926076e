package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jebob/snakes-and-ladders/game/service"
)

// ErrBatchNotFound is returned when an archived batch ID has no file.
var ErrBatchNotFound = errors.New("batch not found")

// FileArchive implements service.ResultArchive over a directory of JSON
// files, one per completed batch.
type FileArchive struct {
	resultsDir string
}

// NewFileArchive creates a file-based batch result archive.
func NewFileArchive(resultsDir string) (*FileArchive, error) {
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &FileArchive{resultsDir: resultsDir}, nil
}

// Save writes a batch record to the archive.
func (fa *FileArchive) Save(record *service.BatchRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("batch record must have an ID")
	}

	jsonData, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch record: %w", err)
	}
	if err := os.WriteFile(fa.filePath(record.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write batch file: %w", err)
	}
	return nil
}

// Load reads one archived batch record by ID.
func (fa *FileArchive) Load(batchID string) (*service.BatchRecord, error) {
	jsonData, err := os.ReadFile(fa.filePath(batchID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
		}
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var record service.BatchRecord
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch record: %w", err)
	}
	return &record, nil
}

// ListAll returns every archived batch record, newest first.
func (fa *FileArchive) ListAll() ([]*service.BatchRecord, error) {
	entries, err := os.ReadDir(fa.resultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	records := make([]*service.BatchRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := fa.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (fa *FileArchive) filePath(batchID string) string {
	return filepath.Join(fa.resultsDir, fmt.Sprintf("%s.json", batchID))
}
