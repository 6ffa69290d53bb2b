package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/export"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tPRESET\tBODIES\tSTEPS\tENERGY DRIFT\tTIMESTAMP")
	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.6f\t%s\n",
			run.ID, run.Scene, p, run.Bodies, run.Steps, run.EnergyDrift,
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	store := storage.New(dataDir)
	meta, err := store.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := store.LoadFrames(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load frames: %w", err)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames recorded for %s", meta.ID)
	}

	energy := make([]float64, len(frames))
	contacts := make([]float64, len(frames))
	momentum := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.Energy
		contacts[i] = float64(f.Stats.Contacts)
		momentum[i] = f.Momentum.Len()
	}

	fmt.Printf("run: %s (%s, %d bodies, seed %d)\n\n", meta.ID, meta.Scene, meta.Bodies, meta.Seed)
	plots := []struct {
		title string
		data  []float64
	}{
		{"kinetic energy", energy},
		{"contacts per step", contacts},
		{"|momentum|", momentum},
	}
	for _, p := range plots {
		fmt.Println(asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.title),
		))
		fmt.Println()
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("metrics:")
		for _, name := range sortedKeys(meta.Metrics) {
			fmt.Printf("  %-16s %.6f\n", name, meta.Metrics[name])
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteFramesCSV(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(storage.NewExportData(*meta, frames))
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames recorded for %s", meta.ID)
	}

	var svg string
	if trails {
		svg = export.TrajectoriesToSVG(frames, meta.World.Width, meta.World.Height, scale)
	} else {
		svg = export.FrameToSVG(frames[len(frames)-1], meta.World.Width, meta.World.Height, scale)
	}

	if outFile == "" {
		_, err := fmt.Fprint(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	if err := storage.New(dataDir).Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenes := config.ListScenes()
	if len(args) > 0 {
		scenes = []string{args[0]}
	}

	if show != "" {
		if len(args) == 0 {
			return fmt.Errorf("--show needs a scene argument")
		}
		p := config.GetPreset(args[0], show)
		if p == nil {
			return fmt.Errorf("unknown preset: %s/%s", args[0], show)
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	}

	for _, scene := range scenes {
		names := config.ListPresets(scene)
		if len(names) == 0 {
			return fmt.Errorf("no presets for scene: %s", scene)
		}
		fmt.Printf("%s:\n", scene)
		for _, name := range names {
			p := config.GetPreset(scene, name)
			fmt.Printf("  %-10s duration=%-6g gravity=%-5g e=%-4g mu=%-4g count=%-4d explicit=%d\n",
				name, p.Duration, p.World.Gravity, p.World.Restitution, p.World.Friction,
				p.Params.Count, len(p.Bodies))
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
