package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/config"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "drizzledocs v1.2.3")
}

func TestNewGenerateCommand(t *testing.T) {
	cmd := NewGenerateCommand()

	assert.Equal(t, "generate [files...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)
	assert.NotNil(t, cmd.Flags().Lookup("watch"))
}

func TestNewListCommand(t *testing.T) {
	cmd := NewListCommand()

	assert.Equal(t, "list", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
}

func TestContextRoundTrip(t *testing.T) {
	cfg := &config.Config{SchemaDir: "x", Dialect: "postgres"}
	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, GetConfig(ctx))
}

func TestGetConfig_FallbackDefaults(t *testing.T) {
	cfg := GetConfig(context.Background())
	require.NotNil(t, cfg)
	assert.Equal(t, config.DefaultSchemaDir, cfg.SchemaDir)
	assert.Equal(t, config.DefaultDialect, cfg.Dialect)
}

func TestGetLogger_Fallback(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))
}
