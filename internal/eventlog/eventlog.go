// Package eventlog is the append-only durable record of accepted draft
// mutations. Replaying it against a freshly loaded pool reconstructs state
// after a crash or restart.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event kinds. Manual corrections are tagged separately from scraper updates
// so replay can route them to the right handler.
const (
	KindDraftUpdate = "draft_update"
	KindManual      = "manual"
)

// Record is one line of the log file.
type Record struct {
	Seq     int64           `json:"seq"`
	TS      time.Time       `json:"ts"`
	Kind    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Log is an append-only JSON-lines file with strictly increasing sequence
// numbers. A nil *Log is a valid no-op sink: Append and Close do nothing,
// Replay returns no events.
type Log struct {
	mu      sync.Mutex
	path    string
	f       *os.File
	seq     int64
	session uuid.UUID
	logger  *zap.Logger
}

// Open opens (or creates) the log at path and resumes sequence numbering by
// counting the well-formed records already present. Malformed trailing lines
// from an interrupted write are counted out, not fatal.
func Open(path string, logger *zap.Logger) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("event log dir: %w", err)
	}

	l := &Log{
		path:    path,
		session: uuid.New(),
		logger:  logger,
	}

	if existing, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(existing)
		scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
		skipped := 0
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var rec Record
			if err := json.Unmarshal(line, &rec); err != nil {
				skipped++
				continue
			}
			if rec.Seq > l.seq {
				l.seq = rec.Seq
			}
		}
		existing.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan event log: %w", err)
		}
		if skipped > 0 && logger != nil {
			logger.Warn("event log contains malformed lines",
				zap.String("path", path), zap.Int("skipped", skipped))
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log for append: %w", err)
	}
	l.f = f

	if logger != nil {
		logger.Info("event log open",
			zap.String("path", path),
			zap.Int64("resumed_seq", l.seq),
			zap.String("session", l.session.String()))
	}
	return l, nil
}

// Session is the per-process identifier stamped when the log was opened.
func (l *Log) Session() uuid.UUID {
	if l == nil {
		return uuid.Nil
	}
	return l.session
}

// Append durably records an event. It returns only after the line is flushed
// to stable storage. On a nil or closed log it is a no-op.
func (l *Log) Append(kind string, payload any) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	l.seq++
	rec := Record{Seq: l.seq, TS: time.Now().UTC(), Kind: kind, Payload: raw}
	line, err := json.Marshal(rec)
	if err != nil {
		l.seq--
		return fmt.Errorf("marshal event record: %w", err)
	}
	if _, err := l.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync event log: %w", err)
	}
	return nil
}

// Replay reads every well-formed record in ascending sequence order.
// Corrupted lines are skipped. A path that never existed yields no events.
func (l *Log) Replay() ([]Record, error) {
	if l == nil {
		return nil, nil
	}
	l.mu.Lock()
	path := l.path
	l.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open event log for replay: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			if l.logger != nil {
				l.logger.Warn("skipping malformed event record", zap.Error(err))
			}
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan event log: %w", err)
	}

	// Replay order must follow seq even if lines were interleaved on disk.
	sort.SliceStable(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })
	return records, nil
}

// Clear truncates the log and resets sequence numbering to zero, for starting
// a fresh draft.
func (l *Log) Clear() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f != nil {
		l.f.Close()
		l.f = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove event log: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("recreate event log: %w", err)
	}
	l.f = f
	l.seq = 0
	return nil
}

// Seq returns the last assigned sequence number.
func (l *Log) Seq() int64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
