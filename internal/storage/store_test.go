package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/tiltsand/internal/config"
	"github.com/san-kum/tiltsand/internal/experiment"
)

func testResult() *experiment.Result {
	return &experiment.Result{
		Dim: 2,
		Ticks: []experiment.TickStats{
			{Tick: 1, Axis: "vertical", Hint: "none", Bias: 100, Mass: 12, Moving: 0, Saturated: 0, Peak: 8},
			{Tick: 2, Axis: "horizontal", Hint: "positive", Bias: 200, Mass: 12, Moving: 1, Saturated: 0, Peak: 8},
		},
		Metrics:  map[string]float64{"mass": 12, "flow": 0.5},
		Frame:    []byte{0, 0, 0, 4, 2, 0, 1, 8, 0, 1, 0, 0, 0, 0, 0, 0},
		Impulses: 1,
		Elapsed:  3 * time.Millisecond,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	runID, err := st.Save(cfg, testResult())
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
	if meta.Pattern != "ramp" {
		t.Errorf("expected pattern 'ramp', got '%s'", meta.Pattern)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["flow"] != 0.5 {
		t.Errorf("expected flow 0.5, got %f", meta.Metrics["flow"])
	}
	if meta.Config == nil || meta.Config.Dim != cfg.Dim {
		t.Errorf("config not stored: %+v", meta.Config)
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		t.Fatalf("load ticks failed: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ticks))
	}
	if ticks[1] != testResult().Ticks[1] {
		t.Errorf("tick row mismatch: %+v", ticks[1])
	}

	frame, err := st.LoadFrame(runID)
	if err != nil {
		t.Fatalf("load frame failed: %v", err)
	}
	if !bytes.Equal(frame, testResult().Frame) {
		t.Errorf("frame mismatch: %v", frame)
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

	cfg := config.DefaultConfig()
	first, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Errorf("run ids collide: %s", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(config.DefaultConfig(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "ticks.csv", "frame.bin"} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, runID, "ticks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("tick,axis,hint,bias,mass,moving,saturated,peak")) {
		t.Errorf("unexpected csv header: %q", bytes.SplitN(data, []byte("\n"), 2)[0])
	}
}

func TestStore_NotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadTicks("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadTicks: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadFrame("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadFrame: expected ErrRunNotFound, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	st := New(filepath.Join(dir, "runs"))
	runID, err := st.Save(config.DefaultConfig(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := st.Export(runID, true)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	path := filepath.Join(dir, "out.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatalf("export json failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back ExportData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Run.ID != runID || len(back.Ticks) != 2 || len(back.Frame) != 16 {
		t.Errorf("unexpected export %+v", back)
	}
}
