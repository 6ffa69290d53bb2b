package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/world"
)

type ExportData struct {
	Scene       string             `json:"scene"`
	Seed        int64              `json:"seed"`
	World       world.Config       `json:"world"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	Frames      []sim.Frame        `json:"frames"`
	Metrics     map[string]float64 `json:"metrics"`
	EnergyDrift float64            `json:"energy_drift"`
}

// NewExportData assembles the JSON export of a run.
func NewExportData(meta RunMetadata, frames []sim.Frame) ExportData {
	times := make([]float64, len(frames))
	for i, f := range frames {
		times[i] = f.Time
	}
	return ExportData{
		Scene:       meta.Scene,
		Seed:        meta.Seed,
		World:       meta.World,
		Duration:    meta.Duration,
		Steps:       meta.Steps,
		Times:       times,
		Frames:      frames,
		Metrics:     meta.Metrics,
		EnergyDrift: meta.EnergyDrift,
	}
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ExportJSONStdout(data ExportData) error {
	return WriteJSON(os.Stdout, data)
}

// ExportCSV writes the per-body frame table to path.
func ExportCSV(path string, frames []sim.Frame) error {
	return writeCSVFile(path, func(w io.Writer) error {
		return WriteFramesCSV(w, frames)
	})
}
