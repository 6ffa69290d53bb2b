// Package storage persists simulation runs as a directory per run holding
// metadata.json, frames.csv (one row per body per recorded frame) and
// steps.csv (one row per recorded frame).
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

// ErrRunNotFound indicates a run id with no metadata on disk.
var ErrRunNotFound = errors.New("storage: run not found")

var (
	frameHeader = []string{"step", "time", "body", "shape", "radius", "mass", "x", "y", "vx", "vy", "angle", "omega"}
	stepHeader  = []string{"step", "time", "energy", "px", "py", "contacts", "normal_impulse", "friction_impulse"}
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	UUID        string             `json:"uuid"`
	Scene       string             `json:"scene"`
	Preset      string             `json:"preset,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Duration    float64            `json:"duration"`
	Bodies      int                `json:"bodies"`
	Steps       int                `json:"steps"`
	World       world.Config       `json:"world"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes result under a new run id derived from meta.Scene. The ID,
// UUID, Timestamp and Steps fields of meta are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	id := uuid.New()
	scene := meta.Scene
	if scene == "" {
		scene = "run"
	}
	meta.UUID = id.String()
	meta.ID = fmt.Sprintf("%s_%s", scene, strings.SplitN(meta.UUID, "-", 2)[0])
	meta.Timestamp = time.Now()
	meta.Steps = result.StepsTaken
	meta.EnergyDrift = result.EnergyDrift
	meta.Metrics = result.Metrics
	if final := result.Final(); final != nil {
		meta.Bodies = len(final.Bodies)
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSONFile(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, "frames.csv"), func(w io.Writer) error {
		return WriteFramesCSV(w, result.Frames)
	}); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, "steps.csv"), func(w io.Writer) error {
		return WriteStepsCSV(w, result.Frames)
	}); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames rebuilds the recorded frames of a run from frames.csv and
// steps.csv.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	runDir := filepath.Join(s.baseDir, runID)

	frames, err := readCSVFile(filepath.Join(runDir, "frames.csv"), parseFrames)
	if err != nil {
		return nil, err
	}

	steps, err := readCSVFile(filepath.Join(runDir, "steps.csv"), parseSteps)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	byStep := make(map[int]*sim.Frame, len(steps))
	for i := range steps {
		byStep[steps[i].Step] = &steps[i]
	}
	for i := range frames {
		if st, ok := byStep[frames[i].Step]; ok {
			frames[i].Energy = st.Energy
			frames[i].Momentum = st.Momentum
			frames[i].Stats = st.Stats
		}
	}

	return frames, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSVFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readCSVFile[T any](path string, parse func([][]string) ([]T, error)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []T{}, nil
	}
	return parse(records[1:])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteFramesCSV writes one row per body per frame.
func WriteFramesCSV(out io.Writer, frames []sim.Frame) error {
	w := csv.NewWriter(out)
	if err := w.Write(frameHeader); err != nil {
		return err
	}

	for _, f := range frames {
		for _, b := range f.Bodies {
			row := []string{
				strconv.Itoa(f.Step),
				formatFloat(f.Time),
				strconv.Itoa(int(b.ID)),
				b.Shape,
				formatFloat(b.Radius),
				formatFloat(b.Mass),
				formatFloat(b.Position.X),
				formatFloat(b.Position.Y),
				formatFloat(b.Velocity.X),
				formatFloat(b.Velocity.Y),
				formatFloat(b.Angle),
				formatFloat(b.AngularVelocity),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// WriteStepsCSV writes one summary row per frame.
func WriteStepsCSV(out io.Writer, frames []sim.Frame) error {
	w := csv.NewWriter(out)
	if err := w.Write(stepHeader); err != nil {
		return err
	}

	for _, f := range frames {
		row := []string{
			strconv.Itoa(f.Step),
			formatFloat(f.Time),
			formatFloat(f.Energy),
			formatFloat(f.Momentum.X),
			formatFloat(f.Momentum.Y),
			strconv.Itoa(f.Stats.Contacts),
			formatFloat(f.Stats.NormalImpulse),
			formatFloat(f.Stats.FrictionImpulse),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func parseFloats(record []string, from int) ([]float64, error) {
	out := make([]float64, 0, len(record)-from)
	for _, s := range record[from:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFrames(records [][]string) ([]sim.Frame, error) {
	frames := make([]sim.Frame, 0)
	for i, record := range records {
		if len(record) != len(frameHeader) {
			return nil, fmt.Errorf("frames.csv line %d: expected %d fields, got %d", i+2, len(frameHeader), len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("frames.csv line %d: %w", i+2, err)
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("frames.csv line %d: %w", i+2, err)
		}
		id, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("frames.csv line %d: %w", i+2, err)
		}
		v, err := parseFloats(record, 4)
		if err != nil {
			return nil, fmt.Errorf("frames.csv line %d: %w", i+2, err)
		}

		if len(frames) == 0 || frames[len(frames)-1].Step != step {
			frames = append(frames, sim.Frame{Step: step, Time: t})
		}
		f := &frames[len(frames)-1]
		f.Bodies = append(f.Bodies, world.BodyState{
			ID:              world.BodyID(id),
			Shape:           record[3],
			Radius:          v[0],
			Mass:            v[1],
			Position:        vecmath.New(v[2], v[3]),
			Velocity:        vecmath.New(v[4], v[5]),
			Angle:           v[6],
			AngularVelocity: v[7],
		})
	}
	return frames, nil
}

func parseSteps(records [][]string) ([]sim.Frame, error) {
	frames := make([]sim.Frame, 0, len(records))
	for i, record := range records {
		if len(record) != len(stepHeader) {
			return nil, fmt.Errorf("steps.csv line %d: expected %d fields, got %d", i+2, len(stepHeader), len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		contacts, err := strconv.Atoi(record[5])
		if err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		v, err := parseFloats(record[:5], 1)
		if err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		imp, err := parseFloats(record, 6)
		if err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}

		frames = append(frames, sim.Frame{
			Step:     step,
			Time:     v[0],
			Energy:   v[1],
			Momentum: vecmath.New(v[2], v[3]),
			Stats: world.StepStats{
				Contacts:        contacts,
				NormalImpulse:   imp[0],
				FrictionImpulse: imp[1],
			},
		})
	}
	return frames, nil
}
