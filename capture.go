package sitesnap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/root4loot/goutils/log"
	"github.com/root4loot/sitesnap/pkg/screener"
)

// NormalizeCSS hides elements that render differently from one run to the
// next and pins text rendering, so repeated captures of an unchanged page are
// byte-identical.
const NormalizeCSS = `
iframe,
video::-webkit-media-controls,
video::-webkit-media-controls-panel,
.pulse,
.gesture,
.graph {
  visibility: hidden !important;
}

* {
  -webkit-font-smoothing: none !important;
  -moz-osx-font-smoothing: unset !important;
  font-smooth: never !important;
  text-rendering: optimizeSpeed !important;
}
`

// HomeSlug names the image of the site root.
const HomeSlug = "home"

var errEmptyImage = errors.New("empty image")

// unsafeChars maps characters that are not allowed in file names.
var unsafeChars = strings.NewReplacer(
	`\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_",
	"<", "_", ">", "_", "|", "_", " ", "_",
)

// CaptureURL navigates to path, normalizes the page, takes a full-page
// screenshot and writes it to the output folder. It returns the written file.
func (r *Runner) CaptureURL(ctx context.Context, session screener.Session, path string) (string, error) {
	target := TargetURL(r.Options.Port, path)
	log.Debugf("Navigating to %s", target)

	if err := session.Navigate(ctx, target); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNavigate, target, err)
	}

	if err := session.InjectStyle(ctx, NormalizeCSS); err != nil {
		return "", fmt.Errorf("injecting styles into %s: %w", target, err)
	}

	img, err := session.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capturing %s: %w", target, err)
	}

	if r.Options.Label {
		img, err = img.AddTextToImage(path)
		if err != nil {
			return "", fmt.Errorf("labelling %s: %w", target, err)
		}
	}

	filename, err := SaveImage(r.Options.OutputDir, Slug(path), img)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", target, err)
	}

	return filename, nil
}

// TargetURL is the address captured for path on the local server. The #full
// fragment asks the application for its full presentation mode.
func TargetURL(port int, path string) string {
	return fmt.Sprintf("http://localhost:%d%s#full", port, path)
}

// Slug derives a file name from a page path: the leading slash is dropped,
// remaining slashes become dashes and the root maps to HomeSlug. Distinct
// paths may share a slug, in which case the later image replaces the earlier.
func Slug(path string) string {
	slug := strings.TrimPrefix(path, "/")
	slug = strings.ReplaceAll(slug, "/", "-")
	slug = unsafeChars.Replace(slug)

	if slug == "" {
		return HomeSlug
	}
	return slug
}

// SaveImage writes img to folderPath/slug.png, replacing any existing file.
func SaveImage(folderPath, slug string, img []byte) (filename string, err error) {
	if len(img) == 0 {
		return "", errEmptyImage
	}

	// Create a folder for screenshots if it doesn't exist.
	err = os.MkdirAll(folderPath, os.ModePerm)
	if err != nil {
		return "", err
	}

	filename = filepath.Join(folderPath, slug+".png")

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	_, err = file.Write(img)
	if err != nil {
		return "", err
	}

	return filename, file.Close()
}
