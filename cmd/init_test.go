package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWD)) })

	return dir
}

func executeInit(t *testing.T) error {
	t.Helper()

	// Point paths.* and distribute.* back at fresh, unchanged run flags.
	newRunCmd()

	cmd := newRootCmd()
	cmd.AddCommand(newInitCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init"})

	return cmd.Execute()
}

func TestInitCmd_WritesLivesortDefaults(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, executeInit(t))

	contents, err := os.ReadFile(filepath.Join(dir, configFileName))
	require.NoError(t, err)

	var written struct {
		Version int    `yaml:"version"`
		Output  string `yaml:"output"`
		Paths   struct {
			Source      string `yaml:"source"`
			Quarantine  string `yaml:"quarantine"`
			Destination string `yaml:"destination"`
		} `yaml:"paths"`
		Distribute struct {
			StartVersion int  `yaml:"start_version"`
			IncludeExact bool `yaml:"include_exact"`
		} `yaml:"distribute"`
	}
	require.NoError(t, yaml.Unmarshal(contents, &written))

	assert.Equal(t, currentConfigVersion, written.Version)
	assert.Equal(t, defaultReportsDir, written.Output)
	assert.Equal(t, defaultSource, written.Paths.Source)
	assert.Equal(t, defaultQuarantine, written.Paths.Quarantine)
	assert.Equal(t, defaultDestination, written.Paths.Destination)
	assert.Equal(t, defaultStartVersion, written.Distribute.StartVersion)
	assert.False(t, written.Distribute.IncludeExact)
}

func TestInitCmd_KeepsExistingConfig(t *testing.T) {
	dir := chdirTemp(t)

	target := filepath.Join(dir, configFileName)
	existing := []byte("paths:\n  source: /import\n")
	require.NoError(t, os.WriteFile(target, existing, 0o644))

	err := executeInit(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write config file")

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, existing, contents)
}
