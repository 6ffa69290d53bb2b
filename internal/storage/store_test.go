package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

func testResult() *sim.Result {
	body := func(id int, x, vx float64) world.BodyState {
		return world.BodyState{
			ID:       world.BodyID(id),
			Shape:    "circle",
			Radius:   20,
			Mass:     1,
			Position: vecmath.New(x, 300),
			Velocity: vecmath.New(vx, 0.5),
		}
	}
	return &sim.Result{
		Frames: []sim.Frame{
			{Step: 0, Time: 0, Bodies: []world.BodyState{body(0, 100, 1), body(1, 200, -1)}, Energy: 1.25},
			{Step: 1, Time: 0.5, Bodies: []world.BodyState{body(0, 100.5, 1), body(1, 199.5, -1)}, Energy: 1.25,
				Stats: world.StepStats{Contacts: 1, NormalImpulse: 2}},
		},
		Times:      []float64{0, 0.5},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"energy": 1.25,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Scene: "balls", Seed: 42, Duration: 0.5, World: world.DefaultConfig()}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "balls_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "balls" || meta.Seed != 42 || meta.Bodies != 2 || meta.Steps != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["energy"] != 1.25 {
		t.Errorf("expected energy 1.25, got %f", meta.Metrics["energy"])
	}
	if meta.World != world.DefaultConfig() {
		t.Errorf("world config not preserved: %+v", meta.World)
	}
	if len(meta.UUID) != 36 {
		t.Errorf("expected a uuid, got %q", meta.UUID)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 || len(frames[1].Bodies) != 2 {
		t.Fatalf("expected 2 frames of 2 bodies, got %+v", frames)
	}
	if frames[1].Bodies[1].Position.X != 199.5 || frames[1].Time != 0.5 {
		t.Errorf("frame 1 = %+v", frames[1])
	}
	if frames[1].Stats.Contacts != 1 || frames[1].Energy != 1.25 {
		t.Errorf("step summary not merged: %+v", frames[1])
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

	for i := 0; i < 2; i++ {
		if _, err := st.Save(RunMetadata{Scene: "boxes"}, testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID == runs[1].ID {
		t.Errorf("expected 2 distinct runs, got %+v", runs)
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load() error = %v, want ErrRunNotFound", err)
	}
	if err := st.Delete("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Delete() error = %v, want ErrRunNotFound", err)
	}

	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List() on missing dir = %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Scene: "test"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "frames.csv", "steps.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	if err := st.Delete(runID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, runID)); !os.IsNotExist(err) {
		t.Error("run directory not removed")
	}
}

func TestWriteFramesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFramesCSV(&buf, testResult().Frames); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header + 4 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(frameHeader, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[4], "1,0.500000,1,circle,20.000000") {
		t.Errorf("last row = %q", lines[4])
	}
}

func TestExportJSON(t *testing.T) {
	res := testResult()
	data := NewExportData(RunMetadata{Scene: "balls", Seed: 3, Steps: 1, Metrics: res.Metrics}, res.Frames)

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded ExportData
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Scene != "balls" || len(decoded.Frames) != 2 || decoded.Times[1] != 0.5 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Frames[1].Bodies[0].Position != vecmath.New(100.5, 300) {
		t.Errorf("body position = %v", decoded.Frames[1].Bodies[0].Position)
	}
}
