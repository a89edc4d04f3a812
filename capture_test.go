package sitesnap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "home"},
		{"", "home"},
		{"/a/b", "a-b"},
		{"/about", "about"},
		{"/about/", "about-"},
		{"/docs/getting started", "docs-getting_started"},
		{"/a:b", "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Slug(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Slug(tt.path))
		})
	}
}

func TestTargetURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/#full", TargetURL(8080, "/"))
	assert.Equal(t, "http://localhost:1313/docs/intro#full", TargetURL(1313, "/docs/intro"))
}

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "shots")

	filename, err := SaveImage(dir, "home", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "home.png"), filename)

	// A colliding slug replaces the earlier image.
	_, err = SaveImage(dir, "home", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestSaveImageEmpty(t *testing.T) {
	_, err := SaveImage(t.TempDir(), "home", nil)
	assert.ErrorIs(t, err, errEmptyImage)
}
