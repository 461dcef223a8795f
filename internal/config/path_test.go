package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("SHELFSYNC_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty stays empty", path: "", want: ""},
		{name: "absolute path unchanged", path: "/etc/shelfsync.yaml", want: "/etc/shelfsync.yaml"},
		{name: "bare tilde", path: "~", want: home},
		{name: "tilde prefix", path: "~/.config/shelfsync", want: filepath.Join(home, ".config/shelfsync")},
		{name: "HOME variable", path: "$HOME/.local/share", want: home + "/.local/share"},
		{name: "custom variable", path: "$SHELFSYNC_TEST_DIR/cache.db", want: "/var/data/cache.db"},
		{name: "tilde in the middle is literal", path: "/data/~backup", want: "/data/~backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}
