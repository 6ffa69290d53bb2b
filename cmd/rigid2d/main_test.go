package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rigid2d/internal/experiment"
	"github.com/san-kum/rigid2d/internal/world"
)

func newFlaggedCommand(t *testing.T, flags ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addWorldFlags(cmd)
	require.NoError(t, cmd.ParseFlags(flags))
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newFlaggedCommand(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "balls", cfg.Scene)
	assert.Equal(t, 0.9, cfg.World.Gravity)
	assert.Equal(t, 0.5, cfg.World.Dt)
	assert.Equal(t, 25.0, cfg.World.MaxVelocity)
}

func TestResolveConfigPresetThenFlags(t *testing.T) {
	cmd := newFlaggedCommand(t, "--preset", "newton", "--restitution", "0.25", "--seed", "7")
	cfg, err := resolveConfig(cmd, []string{"custom"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.World.Gravity, "preset value kept")
	assert.Equal(t, 0.25, cfg.World.Restitution)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "custom/newton", presetName(cfg.Scene))
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scene: boxes\nduration: 12\nworld:\n  gravity: 2\n"), 0644))

	cmd := newFlaggedCommand(t, "--config", path, "--time", "3")
	cfg, err := resolveConfig(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "boxes", cfg.Scene)
	assert.Equal(t, 2.0, cfg.World.Gravity)
	assert.Equal(t, 3.0, cfg.Duration, "flag overrides file")
	assert.Equal(t, 0.5, cfg.World.Dt, "unset keys keep defaults")
}

func TestResolveConfigErrors(t *testing.T) {
	_, err := resolveConfig(newFlaggedCommand(t, "--preset", "nope"), []string{"balls"})
	assert.Error(t, err)

	_, err = resolveConfig(newFlaggedCommand(t, "--dt", "0"), nil)
	assert.ErrorIs(t, err, world.ErrInvalidConfig)

	_, err = resolveConfig(newFlaggedCommand(t, "--count", "-1"), nil)
	assert.ErrorIs(t, err, experiment.ErrInvalidParams)
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"restitution=0, 0.5,1", "gravity=0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"restitution", "gravity"}, names)
	assert.Equal(t, [][]float64{{0, 0.5, 1}, {0}}, ranges)

	_, _, err = parseGrid([]string{"restitution"})
	assert.Error(t, err)
	_, _, err = parseGrid([]string{"gravity=a"})
	assert.Error(t, err)
}
