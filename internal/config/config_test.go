package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data", "keeper.db"), ExpandPath("~/data/keeper.db"))
	assert.Equal(t, home, ExpandPath("~"))
}

func TestExpandPathEnvVar(t *testing.T) {
	t.Setenv("KEEPER_TEST_DIR", "/tmp/keeper")

	assert.Equal(t, "/tmp/keeper/keeper.db", ExpandPath("$KEEPER_TEST_DIR/keeper.db"))
}

func TestExpandPathPassthrough(t *testing.T) {
	assert.Equal(t, "/var/lib/keeper.db", ExpandPath("/var/lib/keeper.db"))
	assert.Equal(t, "", ExpandPath(""))
}
