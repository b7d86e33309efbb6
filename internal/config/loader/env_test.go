package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestEnvLoader_Load(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	l.environ = fakeEnv(
		"QUILL_LOG_LEVEL=debug",
		"QUILL_THEME=monokai",
		"QUILL_HIGHLIGHT_CACHE_SIZE=64",
		"QUILL_HIGHLIGHT_DEBOUNCE=75ms",
		"OTHER_VAR=ignored",
		"QUILL_EMPTY=",
	)

	config, err := l.Load()
	require.NoError(t, err)

	tests := []struct {
		path string
		want any
	}{
		{"logging.level", "debug"},
		{"highlight.theme", "monokai"},
		{"highlight.cacheSize", int64(64)},
		{"highlight.debounce", 75 * time.Millisecond},
		{"empty", ""},
	}
	for _, tt := range tests {
		got, ok := Get(config, tt.path)
		assert.True(t, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
	assert.NotContains(t, config, "other", "unprefixed variables are ignored")
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)

	tests := []struct {
		env  string
		want string
	}{
		{"QUILL_HIGHLIGHT_CACHE_SIZE", "highlight.cacheSize"},
		{"QUILL_HIGHLIGHT_CHROMA_FALLBACK", "highlight.chromaFallback"},
		{"QUILL_LOGGING_LEVEL", "logging.level"},
		{"QUILL_SIMPLE", "simple"},
		{"QUILL_DEEP__PATH", "deep.path"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.envToPath(tt.env), tt.env)
	}
}

func TestEnvLoader_parseValue(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)

	tests := []struct {
		input string
		want  any
	}{
		{"true", true},
		{"YES", true},
		{"off", false},
		{"42", int64(42)},
		{"-10", int64(-10)},
		{"3.14", 3.14},
		{"500ms", 500 * time.Millisecond},
		{"hello world", "hello world"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.parseValue(tt.input), tt.input)
	}

	assert.Equal(t, []any{".es6", ".jsm"}, l.parseValue(`[".es6", ".jsm"]`))
	assert.Equal(t, map[string]any{".es6": "javascript"}, l.parseValue(`{".es6": "javascript"}`))
}

func TestEnvLoader_AddRemoveMapping(t *testing.T) {
	l := NewEnvLoaderWithMapping(EnvPrefix, nil)
	l.environ = fakeEnv("QUILL_PALETTE=dark")

	l.AddMapping("QUILL_PALETTE", "highlight.theme")
	config, err := l.Load()
	require.NoError(t, err)
	got, _ := Get(config, "highlight.theme")
	assert.Equal(t, "dark", got)

	l.RemoveMapping("QUILL_PALETTE")
	config, err = l.Load()
	require.NoError(t, err)
	got, _ = Get(config, "palette")
	assert.Equal(t, "dark", got)
}
