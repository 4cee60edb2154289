// Package telemetry writes annealing traces as CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/flappyrl/internal/anneal"
)

// TraceRecord is one annealing iteration in trace.csv.
type TraceRecord struct {
	Restart         int     `csv:"restart"`
	Iter            int     `csv:"iter"`
	Temperature     float64 `csv:"temperature"`
	Noise           float64 `csv:"noise"`
	CurrentReward   float64 `csv:"current_reward"`
	CandidateReward float64 `csv:"candidate_reward"`
	Accepted        bool    `csv:"accepted"`
	BestReward      float64 `csv:"best_reward"`
	W0              float64 `csv:"w0"`
	W1              float64 `csv:"w1"`
	W2              float64 `csv:"w2"`
	W3              float64 `csv:"w3"`
	Bias            float64 `csv:"bias"`
}

// RestartRecord summarizes one restart.
type RestartRecord struct {
	Restart     int     `csv:"restart"`
	Reward      float64 `csv:"reward"`
	Iterations  int     `csv:"iterations"`
	Evaluations int     `csv:"evaluations"`
	ReachedCap  bool    `csv:"reached_cap"`
	W0          float64 `csv:"w0"`
	W1          float64 `csv:"w1"`
	W2          float64 `csv:"w2"`
	W3          float64 `csv:"w3"`
	Bias        float64 `csv:"bias"`
}

// NewTraceRecord flattens an iteration. Missing weights are left at zero.
func NewTraceRecord(it anneal.Iteration) TraceRecord {
	r := TraceRecord{
		Restart:         it.Restart + 1,
		Iter:            it.Iter,
		Temperature:     it.Temperature,
		Noise:           it.Noise,
		CurrentReward:   it.CurrentReward,
		CandidateReward: it.CandidateReward,
		Accepted:        it.Accepted,
		BestReward:      it.BestReward,
	}
	spread(it.Weights, &r.W0, &r.W1, &r.W2, &r.W3, &r.Bias)
	return r
}

// NewRestartRecord flattens a restart result.
func NewRestartRecord(rr anneal.RestartResult) RestartRecord {
	r := RestartRecord{
		Restart:     rr.Restart + 1,
		Reward:      rr.Reward,
		Iterations:  rr.Iterations,
		Evaluations: rr.Evaluations,
		ReachedCap:  rr.ReachedCap,
	}
	spread(rr.Policy.Weights, &r.W0, &r.W1, &r.W2, &r.W3, &r.Bias)
	return r
}

func spread(w []float64, dst ...*float64) {
	for i := 0; i < len(w) && i < len(dst); i++ {
		*dst[i] = w[i]
	}
}

// TraceWriter streams iterations to CSV. It implements anneal.Observer.
type TraceWriter struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
	rows          int
}

// NewTraceWriter writes to w. The caller owns w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w}
}

// CreateTraceFile creates (or truncates) path and its parent directory.
func CreateTraceFile(path string) (*TraceWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating trace directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return &TraceWriter{w: f, closer: f}, nil
}

// Observe appends one iteration.
func (tw *TraceWriter) Observe(it anneal.Iteration) error {
	records := []TraceRecord{NewTraceRecord(it)}

	if !tw.headerWritten {
		if err := gocsv.Marshal(records, tw.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		tw.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, tw.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	tw.rows++
	return nil
}

// Rows returns the number of iterations written.
func (tw *TraceWriter) Rows() int {
	return tw.rows
}

// Close closes the underlying file if the writer created it.
func (tw *TraceWriter) Close() error {
	if tw.closer == nil {
		return nil
	}
	err := tw.closer.Close()
	tw.closer = nil
	return err
}

// WriteRestarts writes a restart summary table.
func WriteRestarts(w io.Writer, restarts []anneal.RestartResult) error {
	records := make([]RestartRecord, len(restarts))
	for i, rr := range restarts {
		records[i] = NewRestartRecord(rr)
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing restarts: %w", err)
	}
	return nil
}
