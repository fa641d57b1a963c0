package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultSchemaDir, cfg.SchemaDir)
	assert.Equal(t, DefaultOutDir, cfg.OutDir)
	assert.Equal(t, []string{"dbml"}, cfg.Formats)
	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultProject, cfg.Project)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
schema_dir: db/schema
out_dir: build/docs
formats:
  - dbml
  - markdown
dialect: mysql
project: shop
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "db/schema", cfg.SchemaDir)
	assert.Equal(t, "build/docs", cfg.OutDir)
	assert.Equal(t, []string{"dbml", "markdown"}, cfg.Formats)
	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, "shop", cfg.Project)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoad_ConfigFileDiscoveredUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("project: nested\n"), 0o644))
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "nested", cfg.Project)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("dialect: mysql\n"), 0o644))

	t.Setenv("DRIZZLEDOCS_DIALECT", "sqlite")
	t.Setenv("DRIZZLEDOCS_PROJECT", "from-env")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Dialect)
	assert.Equal(t, "from-env", cfg.Project)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DRIZZLEDOCS_DIALECT", "sqlite")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "", "")
	flags.String("schema-dir", "", "")
	flags.StringSlice("format", nil, "")
	require.NoError(t, flags.Set("dialect", "mysql"))
	require.NoError(t, flags.Set("schema-dir", "flagged"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, "flagged", cfg.SchemaDir)
	assert.Equal(t, []string{"dbml"}, cfg.Formats, "unchanged flags leave the defaults alone")
}

func TestLoad_InvalidDialect(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DRIZZLEDOCS_DIALECT", "oracle")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")
}

func TestLoad_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("formats: [pdf]\n"), 0o644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{SchemaDir: "schema", Dialect: "postgres", Formats: []string{"dbml", "md"}},
		},
		{
			name:    "missing schema dir",
			cfg:     Config{Dialect: "postgres"},
			wantErr: "schema_dir is required",
		},
		{
			name:    "bad dialect",
			cfg:     Config{SchemaDir: "schema", Dialect: "mssql"},
			wantErr: "unknown dialect",
		},
		{
			name:    "bad format",
			cfg:     Config{SchemaDir: "schema", Dialect: "postgres", Formats: []string{"docx"}},
			wantErr: "unknown format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
