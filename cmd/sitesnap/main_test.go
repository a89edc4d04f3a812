package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/root4loot/sitesnap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCLI(t *testing.T, args ...string) *cli {
	t.Helper()
	c := newCLI(flag.NewFlagSet("sitesnap", flag.ContinueOnError))
	require.NoError(t, c.parseFlags(args))
	return c
}

// chdir runs the test in an empty directory so no sitesnap.yaml is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestParseFlagsDefaults(t *testing.T) {
	chdir(t)
	options, err := newTestCLI(t).loadOptions()
	require.NoError(t, err)

	assert.Equal(t, 8080, options.Port)
	assert.Equal(t, "screenshots", options.OutputDir)
	assert.Equal(t, "public/sitemap.xml", options.SitemapPath)
	assert.Equal(t, "rod", options.Engine)
	assert.Empty(t, options.ExtraURLs)
	assert.Empty(t, options.ExcludeSubstrings)
	assert.False(t, options.Label)
}

func TestParseFlags(t *testing.T) {
	chdir(t)
	c := newTestCLI(t, "-p", "3000", "--output", "./out", "-u", "/pricing, /faq", "--filter", "about,legal", "-lb", "--debug")

	options, err := c.loadOptions()
	require.NoError(t, err)

	assert.Equal(t, 3000, options.Port)
	assert.Equal(t, "./out", options.OutputDir)
	assert.Equal(t, []string{"/pricing", "/faq"}, options.ExtraURLs)
	assert.Equal(t, []string{"about", "legal"}, options.ExcludeSubstrings)
	assert.True(t, options.Label)
	assert.True(t, options.Verbose)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := chdir(t)
	config := `port: 4000
output: shots
urls:
  - /pricing
  - /faq
filter: about
engine: chromedp
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sitesnap.yaml"), []byte(config), 0o644))
	t.Setenv("SITESNAP_CHROME_BIN", "/opt/chrome/chrome")
	t.Setenv("SITESNAP_OUTPUT", "env-shots")

	options, err := newTestCLI(t, "--port", "5000").loadOptions()
	require.NoError(t, err)

	assert.Equal(t, 5000, options.Port, "flags override the config file")
	assert.Equal(t, "env-shots", options.OutputDir, "environment overrides the config file")
	assert.Equal(t, []string{"/pricing", "/faq"}, options.ExtraURLs)
	assert.Equal(t, []string{"about"}, options.ExcludeSubstrings)
	assert.Equal(t, "chromedp", options.Engine)
	assert.Equal(t, "/opt/chrome/chrome", options.ChromeBin)
}

func TestExplicitConfigFileMissing(t *testing.T) {
	dir := chdir(t)
	_, err := newTestCLI(t, "-c", filepath.Join(dir, "nope.yaml")).loadOptions()
	assert.Error(t, err)
}

func TestInvalidPort(t *testing.T) {
	chdir(t)
	_, err := newTestCLI(t, "-p", "70000").loadOptions()
	assert.Error(t, err)
}

func TestHelpAndVersion(t *testing.T) {
	c := newTestCLI(t, "-h")
	assert.True(t, c.Help)

	c = newTestCLI(t, "--version")
	assert.True(t, c.Version)
}

func TestRunMissingSitemapExitsNonZero(t *testing.T) {
	dir := chdir(t)
	options := sitesnap.DefaultOptions()
	options.Silence = true
	options.SitemapPath = filepath.Join(dir, "public", "sitemap.xml")
	options.OutputDir = filepath.Join(dir, "shots")

	stopped := false
	code := run(context.Background(), func() { stopped = true }, options)
	assert.Equal(t, 1, code)
	assert.True(t, stopped)
}
