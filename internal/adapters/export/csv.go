// Package export serializes knockout results to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/duelo/internal/adapters/repository"
)

// WriteKnockoutCSV writes the winner-ordered result set to a timestamped
// CSV in dir. The run id ties the export back to the curated pool it came
// from. Returns the path of the created file.
func WriteKnockoutCSV(dir, runID string, rows []repository.KnockoutRow, now time.Time) (string, error) {
	name := fmt.Sprintf("knockout_results_%s.csv", now.Format("20060102_150405"))
	if runID != "" {
		name = fmt.Sprintf("knockout_results_%s_%s.csv", shortID(runID), now.Format("20060102_150405"))
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Position", "Path", "Elo", "Record", "Eliminated At"}); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	for i, row := range rows {
		elim := "Winner"
		if row.EliminatedAt != nil {
			elim = row.EliminatedAt.Format(time.DateTime)
		}
		record := []string{
			strconv.Itoa(i + 1),
			row.Entrant.Path,
			strconv.Itoa(int(row.Entrant.Elo)),
			row.Entrant.Record(),
			elim,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("export: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return path, nil
}

// shortID keeps the first uuid group for readable filenames.
func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
