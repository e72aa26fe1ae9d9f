// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openalex-email", "  user@example.com  \n")
				writeFile(t, dir, "dblp-user-agent", "bot/1.0")
				return dir
			},
			want: map[string]string{
				"openalex-email":  "user@example.com",
				"dblp-user-agent": "bot/1.0",
			},
		},
		{
			name: "reads email.json into openalex-email",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "email.json", `{"email": "me@example.org"}`)
				return dir
			},
			want: map[string]string{
				"openalex-email": "me@example.org",
			},
		},
		{
			name: "plain openalex-email wins over email.json",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "email.json", `{"email": "json@example.org"}`)
				writeFile(t, dir, "openalex-email", "plain@example.org")
				return dir
			},
			want: map[string]string{
				"openalex-email": "plain@example.org",
			},
		},
		{
			name: "ignores malformed email.json",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "email.json", `not json`)
				return dir
			},
			want: map[string]string{},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openalex-email", "valid@example.com")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"openalex-email": "valid@example.com",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "openalex-email", "real@example.com")
				return dir
			},
			want: map[string]string{
				"openalex-email": "real@example.com",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openalex-email", "a@example.com")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"openalex-email": "a@example.com",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, zerolog.Nop())
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, zerolog.Nop())
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestLoadLogsWarnings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "email.json", `{"name": "no email here"}`)
	writeFile(t, dir, "good-key", "value123")

	var buf bytes.Buffer
	got, err := Load(dir, zerolog.New(&buf))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"good-key": "value123"}, got)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"secret":"email.json"`)
	assert.Contains(t, buf.String(), "secret has no email field")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
