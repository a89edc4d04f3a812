package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/root4loot/goutils/log"
	"github.com/root4loot/sitesnap"
)

const (
	author  = "@danielantonsen"
	version = "0.1.0"
	usage   = `USAGE:
  sitesnap [options]

Captures a full-page screenshot of every page in the sitemap, served from
http://localhost:<port>, for visual regression diffing.

INPUT:
  -s,   --sitemap          sitemap listing the pages to capture       (Default: public/sitemap.xml)
  -u,   --urls             extra paths to capture (comma separated)
  -f,   --filter           skip paths containing any of these (comma separated)

CONFIGURATIONS:
  -p,   --port             port of the local server                    (Default: 8080)
  -e,   --engine           browser engine: rod, chromedp               (Default: rod)
  -b,   --chrome-bin       path to the Chrome binary                   (Default: lookup)
  -c,   --config           config file (yaml, json, toml)              (Default: ./sitesnap.yaml if present)
                           Environment variables SITESNAP_<OPTION> are also read,
                           e.g. SITESNAP_PORT or SITESNAP_CHROME_BIN. Flags win.

OUTPUT:
  -o,   --output           save images to specified folder             (Default: screenshots)
  -lb,  --label            print the page path under each image        (Default: false)
        --silence          silence output
        --debug            enable debug mode
        --version          display version
`
)

type cli struct {
	ConfigFile string
	Help       bool
	Version    bool

	flags *flag.FlagSet
}

func init() {
	log.Init("sitesnap")
}

func main() {
	c := newCLI(flag.CommandLine)
	if err := c.parseFlags(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if c.Help {
		fmt.Print(usage)
		os.Exit(0)
	}

	if c.Version {
		fmt.Println("sitesnap", version, "by", author)
		os.Exit(0)
	}

	options, err := c.loadOptions()
	if err != nil {
		log.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	os.Exit(run(ctx, stop, options))
}

// run captures all pages and returns the process exit status. The browser is
// already closed when it returns.
func run(ctx context.Context, stop context.CancelFunc, options *sitesnap.Options) int {
	defer stop()

	runner := sitesnap.NewRunnerWithOptions(*options)
	start := time.Now()

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Errorf("Capture aborted after %d of %d pages: %v", summary.Captured, summary.Planned, err)
		return 1
	}

	log.Infof("Captured %d pages in %v (%d page errors)", summary.Captured, time.Since(start).Round(time.Millisecond), summary.Diagnostics)
	return 0
}

func newCLI(fs *flag.FlagSet) *cli {
	return &cli{flags: fs}
}
