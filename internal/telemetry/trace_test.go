package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/flappyrl/internal/anneal"
)

func TestTraceWriterHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTraceWriter(&buf)

	for i := 1; i <= 3; i++ {
		err := tw.Observe(anneal.Iteration{
			Restart:     0,
			Iter:        i,
			Temperature: 100,
			Noise:       0.1,
			Weights:     []float64{1, 2, 3, 4, 5},
		})
		if err != nil {
			t.Fatalf("Observe() failed: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "restart,iter,temperature,noise") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(buf.String(), "restart,iter") != 1 {
		t.Error("header should be written once")
	}
	if tw.Rows() != 3 {
		t.Errorf("Rows() = %d, expected 3", tw.Rows())
	}
	if err := tw.Close(); err != nil {
		t.Errorf("Close() on a borrowed writer should be a no-op, got %v", err)
	}
}

func TestTraceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "trace.csv")
	tw, err := CreateTraceFile(path)
	if err != nil {
		t.Fatalf("CreateTraceFile() failed: %v", err)
	}

	it := anneal.Iteration{
		Restart:         2,
		Iter:            7,
		Temperature:     512.5,
		Noise:           0.025,
		CurrentReward:   -10,
		CandidateReward: 30,
		Accepted:        true,
		BestReward:      30,
		Weights:         []float64{0.5, -1, 0.25, 1, 0.1},
	}
	if err := tw.Observe(it); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var records []TraceRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		t.Fatalf("reading trace back: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Restart != 3 || got.Iter != 7 || !got.Accepted || got.CandidateReward != 30 {
		t.Errorf("record = %+v", got)
	}
	if got.W1 != -1 || got.Bias != 0.1 {
		t.Errorf("weights not flattened: %+v", got)
	}
}

func TestTraceWriterAsObserver(t *testing.T) {
	var buf bytes.Buffer
	var obs anneal.Observer = NewTraceWriter(&buf)
	if err := obs.Observe(anneal.Iteration{Iter: 1}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("observer wrote nothing")
	}
}

func TestShortWeightsLeaveZeros(t *testing.T) {
	r := NewTraceRecord(anneal.Iteration{Weights: []float64{9}})
	if r.W0 != 9 || r.W1 != 0 || r.Bias != 0 {
		t.Errorf("record = %+v", r)
	}
}

func TestWriteRestarts(t *testing.T) {
	restarts := []anneal.RestartResult{
		{Restart: 0, Reward: 40, Iterations: 100, Evaluations: 200, Policy: anneal.NewPolicy([]float64{1, 2, 3, 4, 5})},
		{Restart: 1, Reward: 1000, Evaluations: 1, ReachedCap: true, Policy: anneal.NewPolicy([]float64{5, 4, 3, 2, 1})},
	}

	var buf bytes.Buffer
	if err := WriteRestarts(&buf, restarts); err != nil {
		t.Fatalf("WriteRestarts() failed: %v", err)
	}

	var records []RestartRecord
	if err := gocsv.UnmarshalString(buf.String(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Restart != 2 || !records[1].ReachedCap || records[1].W0 != 5 {
		t.Errorf("second record = %+v", records[1])
	}
}
