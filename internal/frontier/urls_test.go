package frontier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadURLList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "trims and skips blanks", input: "  https://x/a  \n\n\t\nhttps://x/b\r\n", want: []string{"https://x/a", "https://x/b"}},
		{name: "comments", input: "# seeds\nhttps://x/a\n  # indented\n", want: []string{"https://x/a"}},
		{name: "duplicates keep first", input: "https://x/b\nhttps://x/a\nhttps://x/b\n", want: []string{"https://x/b", "https://x/a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ReadURLList(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadURLFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://x/a\n"), 0o600))
	got, err := ReadURLFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/a"}, got)

	_, err = ReadURLFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
