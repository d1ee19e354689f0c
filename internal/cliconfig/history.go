package cliconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// HistoryPath returns $HOME/.evaluator/history.json.
func HistoryPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// LoadHistory reads the persisted REPL input history, oldest first. A
// missing file yields an empty history, not an error.
func LoadHistory() ([]string, error) {
	path, err := HistoryPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cliconfig: read %s: %w", path, err)
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("cliconfig: parse %s: %w", path, err)
	}
	return entries, nil
}

// AppendHistory appends line to the persisted history (skipping it if
// identical to the immediately preceding entry) and caps the file at
// maxEntries entries (no cap when maxEntries <= 0), dropping the oldest (spec.md §6: "capped at 1000 entries, oldest
// first, deduplicated against the immediately preceding entry").
func AppendHistory(line string, maxEntries int) error {
	entries, err := LoadHistory()
	if err != nil {
		return err
	}
	if len(entries) == 0 || entries[len(entries)-1] != line {
		entries = append(entries, line)
	}
	if maxEntries > 0 && len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	path, err := HistoryPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("cliconfig: marshal history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cliconfig: write %s: %w", path, err)
	}
	return nil
}
