package pathfs

import (
	"context"
	"testing"

	"github.com/Hanaasagi/trio/trio/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvFillsDefaults(t *testing.T) {
	env := NewEnv()
	assert.NotNil(t, env.Fs())
	assert.NotNil(t, env.Runner())
}

func TestNewEnvFromConfigMemoryBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Trio.Fs.Backend = "memory"
	cfg.Trio.Workers.Count = 2
	cfg.Trio.Workers.QueueCapacity = 4

	env := NewEnvFromConfig(cfg)
	defer env.Runner().Close()

	p, err := NewIn(env, "mem.txt")
	require.NoError(t, err)

	_, err = p.WriteFile(context.Background(), []byte("x"), 0o644)
	require.NoError(t, err)

	exists, err := p.Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)
}
