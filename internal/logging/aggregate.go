// Package logging provides structured logging for RouteFlow runs.
package logging

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// LogEntry is one parsed JSON log line. Fields the logger emits for every
// entry are promoted; everything else lands in Attrs.
type LogEntry struct {
	Timestamp  time.Time      `json:"time"`
	Level      string         `json:"level"`
	Message    string         `json:"msg"`
	RunID      string         `json:"run_id,omitempty"`
	Stage      string         `json:"stage,omitempty"`
	Specialist string         `json:"specialist,omitempty"`
	Attrs      map[string]any `json:"attrs,omitempty"`
}

// promotedKeys are the JSON keys decoded into named LogEntry fields.
var promotedKeys = []string{"time", "level", "msg", "run_id", "stage", "specialist"}

// UnmarshalJSON decodes a log line, splitting promoted fields from the
// free-form attributes.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}

	if t, err := time.Parse(time.RFC3339Nano, str("time")); err == nil {
		e.Timestamp = t
	}
	e.Level = str("level")
	e.Message = str("msg")
	e.RunID = str("run_id")
	e.Stage = str("stage")
	e.Specialist = str("specialist")

	e.Attrs = make(map[string]any)
	for k, v := range raw {
		if !slices.Contains(promotedKeys, k) {
			e.Attrs[k] = v
		}
	}
	return nil
}

// LogFilter selects log entries. Zero-valued fields do not filter;
// non-zero fields are combined with AND.
type LogFilter struct {
	// Level keeps entries at or above this level (DEBUG < INFO < WARN < ERROR).
	Level string
	// StartTime and EndTime bound the entry timestamp, inclusive.
	StartTime time.Time
	EndTime   time.Time
	// RunID, Stage, and Specialist match the corresponding entry field exactly.
	RunID      string
	Stage      string
	Specialist string
	// MessageContains keeps entries whose message contains the substring.
	MessageContains string
}

func levelRank(level string) (int, bool) {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return 0, true
	case LevelInfo:
		return 1, true
	case LevelWarn:
		return 2, true
	case LevelError:
		return 3, true
	}
	return 0, false
}

func (f LogFilter) matches(e LogEntry) bool {
	if f.Level != "" {
		floor, okFloor := levelRank(f.Level)
		got, okGot := levelRank(e.Level)
		if okFloor && okGot && got < floor {
			return false
		}
	}
	if !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime) {
		return false
	}
	if !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime) {
		return false
	}
	if f.RunID != "" && e.RunID != f.RunID {
		return false
	}
	if f.Stage != "" && e.Stage != f.Stage {
		return false
	}
	if f.Specialist != "" && e.Specialist != f.Specialist {
		return false
	}
	if f.MessageContains != "" && !strings.Contains(e.Message, f.MessageContains) {
		return false
	}
	return true
}

// AggregateLogs parses every entry of routeflow.log in logDir and returns
// them ordered by timestamp. Unparsable lines are skipped so a truncated or
// partially corrupted log remains readable.
func AggregateLogs(logDir string) ([]LogEntry, error) {
	f, err := os.Open(filepath.Join(logDir, logFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file found in log directory: %w", err)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	slices.SortStableFunc(entries, func(a, b LogEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return entries, nil
}

// FilterLogs returns the entries matching the filter, preserving order.
func FilterLogs(entries []LogEntry, filter LogFilter) []LogEntry {
	var out []LogEntry
	for _, e := range entries {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// ExportLogEntries writes entries to outputPath in the given format.
// Supported formats are "json", "text", and "csv".
func ExportLogEntries(entries []LogEntry, outputPath, format string) error {
	var encode func(io.Writer, []LogEntry) error
	switch strings.ToLower(format) {
	case "json":
		encode = exportJSON
	case "text":
		encode = exportText
	case "csv":
		encode = exportCSV
	default:
		return fmt.Errorf("unsupported export format: %s (supported: json, text, csv)", format)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return encode(f, entries)
}

func exportJSON(w io.Writer, entries []LogEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func exportText(w io.Writer, entries []LogEntry) error {
	for _, e := range entries {
		fmt.Fprintf(w, "[%s] %s - %s", e.Timestamp.Format("2006-01-02 15:04:05.000"), e.Level, e.Message)

		var tags []string
		if e.RunID != "" {
			tags = append(tags, "run="+e.RunID)
		}
		if e.Stage != "" {
			tags = append(tags, "stage="+e.Stage)
		}
		if e.Specialist != "" {
			tags = append(tags, "specialist="+e.Specialist)
		}
		if len(tags) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(tags, ", "))
		}
		if len(e.Attrs) > 0 {
			attrs, _ := json.Marshal(e.Attrs)
			fmt.Fprintf(w, " %s", attrs)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func exportCSV(w io.Writer, entries []LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "level", "message", "run_id", "stage", "specialist", "attrs"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range entries {
		attrs := ""
		if len(e.Attrs) > 0 {
			if b, err := json.Marshal(e.Attrs); err == nil {
				attrs = string(b)
			}
		}
		record := []string{
			e.Timestamp.Format(time.RFC3339Nano),
			e.Level, e.Message, e.RunID, e.Stage, e.Specialist, attrs,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
