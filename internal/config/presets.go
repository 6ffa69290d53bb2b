package config

import (
	"sort"

	"github.com/san-kum/rigid2d/internal/experiment"
	"github.com/san-kum/rigid2d/internal/world"
)

func worldWith(fn func(*world.Config)) world.Config {
	c := world.DefaultConfig()
	fn(&c)
	return c
}

var Presets = map[string]map[string]*Config{
	"balls": {
		"classic": {
			Scene: "balls", Duration: 500, Seed: 1, RecordEvery: 1,
			World:  world.DefaultConfig(),
			Params: experiment.DefaultSceneParams(),
		},
		"dense": {
			Scene: "balls", Duration: 300, Seed: 2, RecordEvery: 1,
			World:  world.DefaultConfig(),
			Params: experiment.SceneParams{Count: 60, Radius: 12, Mass: 1, MaxSpeed: 30, Margin: 20},
		},
		"sticky": {
			Scene: "balls", Duration: 300, Seed: 3, RecordEvery: 1,
			World:  worldWith(func(c *world.Config) { c.Restitution = 0.6; c.Friction = 0.5 }),
			Params: experiment.DefaultSceneParams(),
		},
		"zero_g": {
			Scene: "balls", Duration: 300, Seed: 4, RecordEvery: 1,
			World:  worldWith(func(c *world.Config) { c.Gravity = 0 }),
			Params: experiment.DefaultSceneParams(),
		},
	},
	"boxes": {
		"tumble": {
			Scene: "boxes", Duration: 300, Seed: 1, RecordEvery: 1,
			World:  worldWith(func(c *world.Config) { c.CircleRect = "oriented" }),
			Params: experiment.SceneParams{Count: 16, Radius: 18, Mass: 1, MaxSpeed: 20, Margin: 50},
		},
	},
	"mixed": {
		"oriented": {
			Scene: "mixed", Duration: 300, Seed: 1, RecordEvery: 1,
			World:  worldWith(func(c *world.Config) { c.CircleRect = "oriented"; c.Friction = 0.2 }),
			Params: experiment.SceneParams{Count: 24, Radius: 16, Mass: 1, MaxSpeed: 30, Margin: 40, SquareFraction: 0.5},
		},
		"parallel": {
			Scene: "mixed", Duration: 200, Seed: 1, RecordEvery: 10,
			World:  worldWith(func(c *world.Config) { c.Workers = 4 }),
			Params: experiment.SceneParams{Count: 120, Radius: 8, Mass: 1, MaxSpeed: 20, Margin: 20, SquareFraction: 0.3},
		},
	},
	"cradle": {
		"five": {
			Scene: "cradle", Duration: 200, Seed: 1, RecordEvery: 1,
			World:  worldWith(func(c *world.Config) { c.Gravity = 0 }),
			Params: experiment.SceneParams{Count: 5, Radius: 20, Mass: 1, MaxSpeed: 10, Margin: 50},
		},
	},
	"pile": {
		"drop": {
			Scene: "pile", Duration: 400, Seed: 1, RecordEvery: 1,
			World:  worldWith(func(c *world.Config) { c.Restitution = 0.4; c.Friction = 0.3 }),
			Params: experiment.SceneParams{Count: 30, Radius: 12, Mass: 1, MaxSpeed: 1, Margin: 40, SquareFraction: 0.3},
		},
	},
	"custom": {
		"newton": {
			Scene: "custom", Duration: 100, Seed: 1, RecordEvery: 1,
			World: worldWith(func(c *world.Config) { c.Gravity = 0 }),
			Bodies: []BodyConfig{
				{Shape: "circle", Mass: 1, Radius: 20, X: 200, Y: 300, VX: 10},
				{Shape: "circle", Mass: 1, Radius: 20, X: 400, Y: 300},
				{Shape: "square", Mass: 0, Width: 40, Height: 40, X: 700, Y: 300},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListScenes returns the scenes that have presets.
func ListScenes() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
