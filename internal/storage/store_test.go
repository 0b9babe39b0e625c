package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/optics"
)

func sampleReport(t *testing.T) optics.Report {
	t.Helper()
	twiss := beam.TwissSet{{Alpha: 0.2, Beta: 8}, {Alpha: -0.1, Beta: 3}, {Beta: 50}}
	m := beam.FromTwiss(twiss, [3]float64{1.2, 0.8, 0.05}).
		WithColumn(beam.IndexZP, [6]float64{0.4, 0.02, 0, 0, 0, 1}).
		WithTranslation([6]float64{1e-3, 0, 0, 0, 0, 0})

	r, err := optics.Default().Analyze(optics.Cell{Name: "fodo test", Matrix: m, Gamma: 2})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return r
}

func TestFloatJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5, "1.5"},
		{-2e-9, "-2e-09"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
	}
	for _, tt := range tests {
		data, err := json.Marshal(Float(tt.in))
		if err != nil {
			t.Fatalf("marshal %g: %v", tt.in, err)
		}
		if string(data) != tt.want {
			t.Errorf("expected %s, got %s", tt.want, data)
		}
	}

	var f Float
	if err := json.Unmarshal([]byte("null"), &f); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !math.IsNaN(float64(f)) {
		t.Errorf("expected NaN from null, got %g", f)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	report := sampleReport(t)
	runID, err := st.Save(report, optics.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "fodo-test_") || len(runID) != len("fodo-test_")+8 {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Name != "fodo test" {
		t.Errorf("expected name 'fodo test', got '%s'", meta.Name)
	}
	if meta.Thresholds != optics.DefaultConfig() {
		t.Errorf("expected default thresholds, got %+v", meta.Thresholds)
	}
	if !math.IsNaN(float64(meta.Matched[0].Emittance)) {
		t.Errorf("expected NaN emittance after round trip, got %g", meta.Matched[0].Emittance)
	}

	back := meta.Report()
	if back.Tune != report.Tune {
		t.Errorf("expected tunes %v, got %v", report.Tune, back.Tune)
	}
	if back.Dispersion != report.Dispersion {
		t.Errorf("expected dispersion %v, got %v", report.Dispersion, back.Dispersion)
	}
	if back.FixedPoint != report.FixedPoint {
		t.Errorf("expected fixed point %v, got %v", report.FixedPoint, back.FixedPoint)
	}
	if back.PhaseAdvance != nil {
		t.Error("expected no point-to-point phase advance")
	}
}

func TestStoreLoadPlanes(t *testing.T) {
	st := New(t.TempDir())
	report := sampleReport(t)

	runID, err := st.Save(report, optics.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rows, err := st.LoadPlanes(runID)
	if err != nil {
		t.Fatalf("load planes failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Plane != "x" || rows[2].Plane != "z" {
		t.Errorf("unexpected plane order %s, %s", rows[0].Plane, rows[2].Plane)
	}
	if rows[0].Beta != report.Matched[beam.X].Beta {
		t.Errorf("expected beta %g, got %g", report.Matched[beam.X].Beta, rows[0].Beta)
	}
	if rows[0].Dispersion != report.Dispersion[0] {
		t.Errorf("expected dispersion %g, got %g", report.Dispersion[0], rows[0].Dispersion)
	}
	if !math.IsNaN(rows[2].Dispersion) {
		t.Errorf("longitudinal dispersion should be NaN, got %g", rows[2].Dispersion)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on empty store: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	report := sampleReport(t)
	for i := 0; i < 3; i++ {
		if _, err := st.Save(report, optics.DefaultConfig()); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(st.Dir(), "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Timestamp.Before(runs[i-1].Timestamp) {
			t.Error("runs should be ordered by timestamp")
		}
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadPlanes("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	report := sampleReport(t)
	runID, err := st.Save(report, optics.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta); err != nil {
		t.Fatalf("export json: %v", err)
	}
	if !strings.Contains(buf.String(), `"emittance": null`) {
		t.Errorf("expected null emittance in export, got:\n%s", buf.String())
	}

	buf.Reset()
	if err := st.ExportCSV(&buf, runID); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("expected header and 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "plane,phase_advance,tune") {
		t.Errorf("unexpected header %q", lines[0])
	}
}
