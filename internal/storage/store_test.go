package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/adtzlr/pacopy/internal/branch"
)

func sampleResult() *branch.Result {
	return &branch.Result{
		Points: []branch.Point{
			{U: branch.State{0.5, -0.1}, Lambda: -0.25, S: 0, Index: 0},
			{U: branch.State{0.4330127018922193, -0.2}, Lambda: -0.1875, S: 0.0912, Index: 1},
		},
		Folds:   []branch.FoldEvent{{Lambda: 1.25e-9, Refined: true}},
		Status:  branch.StatusCompleted,
		Steps:   1,
		Rejects: 0,
		Metrics: map[string]float64{"arc-length": 0.0912},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("fold", "arclength", 0.05, map[string]float64{"curvature": 1}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Problem != "fold" {
		t.Errorf("expected problem 'fold', got '%s'", meta.Problem)
	}
	if meta.Mode != "arclength" {
		t.Errorf("expected mode 'arclength', got '%s'", meta.Mode)
	}
	if meta.Status != "completed" {
		t.Errorf("expected status 'completed', got '%s'", meta.Status)
	}
	if meta.Params["curvature"] != 1 {
		t.Errorf("expected curvature 1, got %f", meta.Params["curvature"])
	}
	if len(meta.Folds) != 1 || !meta.Folds[0].Refined {
		t.Errorf("fold records not preserved: %+v", meta.Folds)
	}
	if meta.Metrics["arc-length"] != 0.0912 {
		t.Errorf("expected arc-length 0.0912, got %f", meta.Metrics["arc-length"])
	}
}

func TestStoreLoadBranchExact(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	want := sampleResult()
	runID, err := st.Save("fold", "arclength", 0.05, nil, want)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	points, err := st.LoadBranch(runID)
	if err != nil {
		t.Fatalf("load branch failed: %v", err)
	}
	if len(points) != len(want.Points) {
		t.Fatalf("expected %d points, got %d", len(want.Points), len(points))
	}
	for i, p := range points {
		w := want.Points[i]
		if p.Index != w.Index || p.Lambda != w.Lambda || p.S != w.S {
			t.Errorf("point %d: got (%d, %v, %v), want (%d, %v, %v)",
				i, p.Index, p.Lambda, p.S, w.Index, w.Lambda, w.S)
		}
		for j := range w.U {
			if p.U[j] != w.U[j] {
				t.Errorf("point %d component %d: got %v, want %v (full precision required)",
					i, j, p.U[j], w.U[j])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	_, err = st.Save("cubic", "arclength", -0.1, nil, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("bratu", "arclength", 0.1, nil, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	metaPath := filepath.Join(runDir, "metadata.json")
	csvPath := filepath.Join(runDir, "branch.csv")

	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		t.Error("branch.csv not created")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, "fold", "arclength", sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if data.Problem != "fold" || data.Status != "completed" {
		t.Errorf("got problem %s status %s", data.Problem, data.Status)
	}
	if len(data.Lambdas) != 2 || len(data.States) != 2 {
		t.Errorf("expected 2 points, got %d lambdas and %d states", len(data.Lambdas), len(data.States))
	}
	if len(data.Folds) != 1 {
		t.Errorf("expected 1 fold record, got %d", len(data.Folds))
	}
}

func TestExportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "branch.json")
	if err := ExportJSONFile(path, "fold", "arclength", sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !json.Valid(data) {
		t.Error("exported file is not valid json")
	}
}
