package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	defer viper.Reset()

	t.Run("Defaults", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())

		require.NoError(t, Load(""))
		assert.Equal(t, "text", viper.GetString(KeyFormat))
		assert.Equal(t, "exclusive", viper.GetString(KeyOverlapMode))
		assert.Equal(t, 30*time.Minute, Duration(KeyTimeout))
		assert.Equal(t, ".tidystat/timings.json", viper.GetString(KeyHistoryFile))
		assert.Equal(t, "modernize-use-checked-arithmetic", viper.GetString(KeyCheckReal))
		_, err := os.Stat("config.yaml")
		assert.True(t, os.IsNotExist(err), "Load must not write a config file")
	})

	t.Run("Load From Env", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		t.Setenv("TIDYSTAT_OVERLAP_MODE", "legacy")
		t.Setenv("TIDYSTAT_CHECKS_REAL", "custom-check")

		require.NoError(t, Load(""))
		assert.Equal(t, "legacy", viper.GetString(KeyOverlapMode))
		assert.Equal(t, "custom-check", viper.GetString(KeyCheckReal))
	})

	t.Run("Load From File", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		path := filepath.Join(dir, "tidystat.yaml")
		require.NoError(t, os.WriteFile(path, []byte("timeout: 90s\nformat: json\n"), 0o644))

		require.NoError(t, Load(path))
		assert.Equal(t, 90*time.Second, Duration(KeyTimeout))
		assert.Equal(t, "json", viper.GetString(KeyFormat))
	})

	t.Run("Malformed File", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("timeout: [unterminated\n"), 0o644))

		assert.Error(t, Load(path))
	})
}

func TestDuration(t *testing.T) {
	defer viper.Reset()

	tests := []struct {
		name  string
		value any
		want  time.Duration
	}{
		{"duration string", "2m", 2 * time.Minute},
		{"seconds int", 45, 45 * time.Second},
		{"zero", "0", 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			viper.Set(KeyTimeout, tt.value)
			assert.Equal(t, tt.want, Duration(KeyTimeout))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    time.Duration
		wantErr bool
	}{
		{"unset", nil, 0, false},
		{"empty", "", 0, false},
		{"zero minutes", "0m", 0, false},
		{"zero hours", "0h", 0, false},
		{"plain seconds", " 30 ", 30 * time.Second, false},
		{"float seconds", 1.5, 1500 * time.Millisecond, false},
		{"negative", "-5m", -5 * time.Minute, false},
		{"garbage", "soon", 0, true},
		{"wrong type", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequire(t *testing.T) {
	defer viper.Reset()
	viper.Reset()
	viper.Set(KeyClangTidy, "/usr/bin/clang-tidy")

	err := Require(KeyClangTidy, KeyTarget, KeyOutput)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingFlag)
	assert.Contains(t, err.Error(), "--target, --output")
	assert.NotContains(t, err.Error(), "--clang-tidy")

	viper.Set(KeyTarget, "main.c")
	viper.Set(KeyOutput, "out.log")
	assert.NoError(t, Require(KeyClangTidy, KeyTarget, KeyOutput))
}
