package eventlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

type testPayload struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func TestAppendAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	l, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer l.Close()

	for i := 1; i <= 3; i++ {
		if err := l.Append(KindDraftUpdate, testPayload{Name: "p", N: i}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if l.Seq() != 3 {
		t.Fatalf("seq = %d, want 3", l.Seq())
	}

	records, err := l.Replay()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("replay returned %d records, want 3", len(records))
	}
	for i, rec := range records {
		if rec.Seq != int64(i+1) {
			t.Fatalf("record %d has seq %d", i, rec.Seq)
		}
		if rec.Kind != KindDraftUpdate {
			t.Fatalf("record %d has kind %q", i, rec.Kind)
		}
		var p testPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			t.Fatalf("payload %d: %v", i, err)
		}
		if p.N != i+1 {
			t.Fatalf("payload %d: n = %d", i, p.N)
		}
	}
}

func TestSeqResumesOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	l, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Append(KindManual, testPayload{N: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Append(KindManual, testPayload{N: 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	l.Close()

	l2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()
	if l2.Seq() != 2 {
		t.Fatalf("resumed seq = %d, want 2", l2.Seq())
	}
	if err := l2.Append(KindManual, testPayload{N: 3}); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	records, err := l2.Replay()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(records) != 3 || records[2].Seq != 3 {
		t.Fatalf("got %d records, last seq %d", len(records), records[len(records)-1].Seq)
	}
}

func TestReplaySkipsCorruptedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	good1 := `{"seq":1,"ts":"2026-08-30T12:00:00Z","type":"draft_update","payload":{"n":1}}`
	good2 := `{"seq":2,"ts":"2026-08-30T12:00:05Z","type":"manual","payload":{"command":"budget 150"}}`
	content := good1 + "\n" + `{"seq":` + "\n" + good2 + "\ngarbage not json\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	l, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open over corrupted file: %v", err)
	}
	defer l.Close()
	if l.Seq() != 2 {
		t.Fatalf("seq resumed at %d, want 2", l.Seq())
	}
	records, err := l.Replay()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("replay returned %d records, want 2", len(records))
	}
	if records[0].Seq != 1 || records[1].Seq != 2 {
		t.Fatalf("records out of order: %d, %d", records[0].Seq, records[1].Seq)
	}
}

func TestClearResetsSeq(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	l, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer l.Close()
	if err := l.Append(KindManual, testPayload{N: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if l.Seq() != 0 {
		t.Fatalf("seq after clear = %d", l.Seq())
	}
	records, err := l.Replay()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("replay after clear returned %d records", len(records))
	}
	if err := l.Append(KindManual, testPayload{N: 9}); err != nil {
		t.Fatalf("append after clear: %v", err)
	}
	if l.Seq() != 1 {
		t.Fatalf("seq after clear+append = %d, want 1", l.Seq())
	}
}

func TestNilLogIsNoop(t *testing.T) {
	var l *Log
	if err := l.Append(KindManual, testPayload{}); err != nil {
		t.Fatalf("nil append: %v", err)
	}
	records, err := l.Replay()
	if err != nil || records != nil {
		t.Fatalf("nil replay = (%v, %v)", records, err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
	if l.Seq() != 0 {
		t.Fatalf("nil seq = %d", l.Seq())
	}
}
