// Package audit writes the opt-in JSONL command log of processed commands.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	auditFileMode = 0644
	auditDirMode  = 0755
)

// Event types.
const (
	TypeCommand     = "command"
	TypeStateChange = "state_change"
)

// Event is one audit record written as a single JSON line.
type Event struct {
	Time      time.Time `json:"time"`
	Type      string    `json:"type"`
	RequestID string    `json:"request_id,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	Chat      string    `json:"chat,omitempty"`
	Verb      string    `json:"verb,omitempty"`
	Args      string    `json:"args,omitempty"`
	Result    string    `json:"result,omitempty"`
}

// Writer appends audit events to <dataDir>/state/audit.jsonl.
type Writer struct {
	path string
	mu   sync.Mutex
}

// NewWriter creates an append-only audit writer rooted at the data directory.
func NewWriter(dataDir string) *Writer {
	return &Writer{
		path: auditPath(dataDir),
	}
}

func auditPath(dataDir string) string {
	return filepath.Join(dataDir, "state", "audit.jsonl")
}

// Append writes one event as one JSONL line.
func (w *Writer) Append(event Event) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), auditDirMode); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, auditFileMode)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer file.Close()

	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	encoded = append(encoded, '\n')

	if _, err := file.Write(encoded); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync audit file: %w", err)
	}
	return nil
}

// Tail returns up to n most recent events, oldest first. Lines that do not
// decode are skipped. A missing file yields no events.
func Tail(dataDir string, n int) ([]Event, error) {
	file, err := os.Open(auditPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	defer file.Close()

	var events []Event
	reader := bufio.NewReader(file)
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			var ev Event
			if err := json.Unmarshal(line, &ev); err == nil {
				events = append(events, ev)
				if n > 0 && len(events) > n {
					events = events[1:]
				}
			}
		}
		if readErr != nil {
			break
		}
	}
	return events, nil
}
