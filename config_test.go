package bindgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyConfigDefaults(t *testing.T) {
	noTrailing := false
	tests := []struct {
		name  string
		input *Config
		check func(t *testing.T, c *Config)
	}{
		{
			name:  "empty config gets defaults",
			input: &Config{},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "space", c.IndentStyle)
				assert.Equal(t, 2, c.IndentSize)
				assert.Equal(t, "lf", c.LineEnding)
				assert.Equal(t, ".h", c.HeaderExtension)
				assert.Equal(t, "bindgen/Placeholders.h", c.PlaceholderFile)
				assert.Equal(t, DefaultBanner, c.Banner)
				require.NotNil(t, c.TrailingNewline)
				assert.True(t, *c.TrailingNewline)
			},
		},
		{
			name: "explicit values preserved",
			input: &Config{
				IndentStyle:     "tab",
				LineEnding:      "crlf",
				HeaderExtension: ".hpp",
				Banner:          "// mine",
				TrailingNewline: &noTrailing,
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "tab", c.IndentStyle)
				assert.Equal(t, "crlf", c.LineEnding)
				assert.Equal(t, "bindgen/Placeholders.hpp", c.PlaceholderFile)
				assert.Equal(t, "// mine", c.Banner)
				assert.False(t, *c.TrailingNewline)
			},
		},
		{
			name:  "no banner",
			input: &Config{Banner: "// ignored", NoBanner: true},
			check: func(t *testing.T, c *Config) {
				assert.Empty(t, c.Banner)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := *tt.input
			result := applyConfigDefaults(tt.input)
			tt.check(t, result)
			assert.Equal(t, before, *tt.input, "input must not be mutated")
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{name: "zero value", cfg: Config{}},
		{
			name: "valid",
			cfg: Config{
				Packages:        []string{"./..."},
				Namespace:       []string{"Game", "Core"},
				HeaderExtension: ".hpp",
				IndentStyle:     "tab",
				LineEnding:      "crlf",
				Concurrency:     4,
			},
		},
		{
			name:    "bad indent style",
			cfg:     Config{IndentStyle: "both"},
			wantErr: []string{"Config.IndentStyle: must be one of [space tab]"},
		},
		{
			name:    "negative concurrency",
			cfg:     Config{Concurrency: -1},
			wantErr: []string{"Config.Concurrency: must be at least 0"},
		},
		{
			name:    "extension without dot",
			cfg:     Config{HeaderExtension: "h"},
			wantErr: []string{"Config.HeaderExtension"},
		},
		{
			name:    "qualified namespace segment",
			cfg:     Config{Namespace: []string{"Game::Core"}},
			wantErr: []string{"Config.Namespace[0]"},
		},
		{
			name:    "every violation reported",
			cfg:     Config{Packages: []string{""}, LineEnding: "cr"},
			wantErr: []string{"Config.Packages[0]: required", "Config.LineEnding"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestGeneratorConfig(t *testing.T) {
	c := applyConfigDefaults(&Config{IndentStyle: "tab", Concurrency: 3})
	gc := c.generatorConfig()
	assert.Equal(t, "tab", gc.IndentStyle)
	assert.Equal(t, 3, gc.Concurrency)
	assert.True(t, gc.TrailingNewline)
	assert.Equal(t, DefaultBanner, gc.Banner)
}

func TestLoadConfig(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "bindgen.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("valid", func(t *testing.T) {
		cfg, err := LoadConfig(write(t, `packages: [./scene]
namespace: [Game]
strip_package_prefix: github.com/myorg/game
indent_style: tab
trailing_newline: false
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"./scene"}, cfg.Packages)
		assert.Equal(t, []string{"Game"}, cfg.Namespace)
		assert.Equal(t, "tab", cfg.IndentStyle)
		require.NotNil(t, cfg.TrailingNewline)
		assert.False(t, *cfg.TrailingNewline)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadConfig(write(t, "packagez: [./scene]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "packagez")
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := LoadConfig(write(t, "line_ending: cr\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Config.LineEnding")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
