package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validOptions() *Options {
	return &Options{
		Database:  "appdb",
		Tables:    []string{"users"},
		Format:    "table",
		ColorMode: ColorAuto,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validOptions().Validate())

	o := validOptions()
	o.Format = "xml"
	require.Error(t, o.Validate())

	o = validOptions()
	o.ColorMode = "sometimes"
	require.Error(t, o.Validate())

	o = validOptions()
	o.Tables = nil
	require.Error(t, o.Validate(), "a database without tables is rejected")

	o = validOptions()
	o.Database = ""
	o.Tables = nil
	require.NoError(t, o.Validate(), "no positionals means pipe mode")

	o.Stats = true
	require.Error(t, o.Validate(), "stats need a real table")

	o = validOptions()
	o.CacheTTL = -time.Minute
	require.Error(t, o.Validate())
}

func TestSplitColumns(t *testing.T) {
	require.Nil(t, SplitColumns(""))
	require.Equal(t, []string{"Field", "Null"}, SplitColumns("Field,Null"))
	require.Equal(t, []string{"Field", "Null"}, SplitColumns(" Field , Null , "))
}

func TestLoadFileMissingExplicit(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFileAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"client: mariadb\ncacheTTL: 30m\ntimeout: 10s\ncolor: never\nformat: json\n"), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)

	o := &Options{}
	require.NoError(t, o.ApplyFile(f))
	require.Equal(t, "mariadb", o.Client)
	require.Equal(t, 30*time.Minute, o.CacheTTL)
	require.Equal(t, 10*time.Second, o.Timeout)
	require.Equal(t, ColorNever, o.ColorMode)
	require.Equal(t, "json", o.Format)
}

func TestApplyFileFlagWins(t *testing.T) {
	o := &Options{Format: "csv", Client: "mysql"}
	require.NoError(t, o.ApplyFile(&File{Format: "json", Client: "mariadb"}))
	require.Equal(t, "csv", o.Format)
	require.Equal(t, "mysql", o.Client)
}

func TestApplyFileBadDuration(t *testing.T) {
	o := &Options{}
	require.Error(t, o.ApplyFile(&File{CacheTTL: "soon"}))
	require.Error(t, o.ApplyFile(&File{Timeout: "whenever"}))
}

func TestLoadFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client: [unclosed"), 0o644))
	_, err := LoadFile(path)
	require.Error(t, err)
}
