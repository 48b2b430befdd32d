package runlog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimeLayout is the timestamp prefix of every run-log line.
const TimeLayout = "2006-01-02 15:04:05"

// Levels recorded in run-log lines. The level column is padded to five
// characters so INFO and ERROR lines align.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FormatLine renders a canonical run-log line without the trailing newline.
func FormatLine(t time.Time, level, message string) string {
	return fmt.Sprintf("%s - %-5s - %s", t.Format(TimeLayout), level, message)
}

// Reset truncates the run log at path to zero length, creating it (and its
// directory) when absent.
func Reset(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("reset run log %s: %w", path, err)
	}
	return file.Close()
}

// Writer appends canonical lines to a run log.
type Writer struct {
	path string
	file *os.File
}

// NewWriter opens the run log at path for appending, creating it when absent.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log %s: %w", path, err)
	}
	return &Writer{path: path, file: file}, nil
}

// Path returns the run log location.
func (w *Writer) Path() string { return w.path }

// WriteLine appends a pre-rendered line.
func (w *Writer) WriteLine(line string) error {
	if _, err := w.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write run log %s: %w", w.path, err)
	}
	return nil
}

// Log renders a canonical line, appends it, and returns the rendered text so
// callers can keep it alongside structured outcome records.
func (w *Writer) Log(t time.Time, level, message string) (string, error) {
	line := FormatLine(t, level, message)
	if err := w.WriteLine(line); err != nil {
		return "", err
	}
	return line, nil
}

// Close releases the underlying file.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// ReadLines returns every line of the file at path. A missing file yields no
// lines and no error; classification tolerates logs that were never written.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open run log %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read run log %s: %w", path, err)
	}
	return lines, nil
}

// ArtifactPath returns the dated artifact file for the given prefix, e.g.
// manual_applies_2412.log for prefix "manual_applies" on December 24th with
// the default "0201" layout. Artifacts accumulate across runs on the same day.
func ArtifactPath(dir, prefix string, t time.Time, layout string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.log", prefix, t.Format(layout)))
}

// AppendLines appends each line to the file at path, creating it when absent.
func AppendLines(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure artifact directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write artifact %s: %w", path, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush artifact %s: %w", path, err)
	}
	return nil
}

// AppendNewLines appends only lines not already present in the file and
// returns the ones written. Lines identical to earlier appends on the same
// day are dropped so the artifact never repeats an entry.
func AppendNewLines(path string, lines []string) ([]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	existing, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, line := range existing {
		seen[line] = struct{}{}
	}
	fresh := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		fresh = append(fresh, line)
	}
	if err := AppendLines(path, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}
