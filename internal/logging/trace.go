package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TraceFile is the name of the JSONL trace written by TraceLogger.
const TraceFile = "trace.jsonl"

// Trace event names, written to the "event" field of each line.
const (
	EventStageFinished = "stage_finished"
	EventRingSnapshot  = "ring_snapshot"
)

// StageEvent records one finished sheet stage.
type StageEvent struct {
	Experiment    string  `json:"experiment"`
	Stage         string  `json:"stage"`
	From          string  `json:"from,omitempty"`
	Steps         int     `json:"steps"`
	ExcAmp        float64 `json:"exc_amp"`
	InhAmp        float64 `json:"inh_amp"`
	DeathRate     float64 `json:"death_rate"`
	AliveFraction float64 `json:"alive_fraction"`
	DurationMS    int64   `json:"duration_ms"`
	Mean          float64 `json:"mean"`
	Max           float64 `json:"max"`
	NonFinite     int     `json:"non_finite"`
}

// SnapshotEvent records one sampled ring state. SimTime is simulated time,
// not wall-clock time.
type SnapshotEvent struct {
	Experiment string  `json:"experiment"`
	Label      string  `json:"label"`
	Step       int     `json:"step"`
	SimTime    float64 `json:"sim_time"`
	Mean       float64 `json:"mean"`
	Spread     float64 `json:"spread"`
	Peak       int     `json:"peak"`
}

type header struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

type stageLine struct {
	header
	StageEvent
}

type snapshotLine struct {
	header
	SnapshotEvent
}

// TraceLogger writes stage and snapshot events to a JSONL file, one
// object per line. It is safe for concurrent use. A nil TraceLogger is
// safe to use; all methods are no-ops on nil receiver.
type TraceLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewTraceLogger creates a trace logger writing to dir/trace.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened.
func NewTraceLogger(dir string, level string) *TraceLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, TraceFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &TraceLogger{file: f}
}

// Stage writes a stage_finished line.
func (tl *TraceLogger) Stage(e StageEvent) {
	if tl == nil {
		return
	}
	tl.write(stageLine{header: newHeader(EventStageFinished), StageEvent: e})
}

// Snapshot writes a ring_snapshot line.
func (tl *TraceLogger) Snapshot(e SnapshotEvent) {
	if tl == nil {
		return
	}
	tl.write(snapshotLine{header: newHeader(EventRingSnapshot), SnapshotEvent: e})
}

func newHeader(event string) header {
	return header{Time: time.Now().UTC().Format(time.RFC3339Nano), Event: event}
}

func (tl *TraceLogger) write(line any) {
	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	data = append(data, '\n')

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.file == nil {
		return
	}
	_, _ = tl.file.Write(data)
}

// Close closes the underlying file. Later writes are dropped.
func (tl *TraceLogger) Close() {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.file != nil {
		tl.file.Close()
		tl.file = nil
	}
}
