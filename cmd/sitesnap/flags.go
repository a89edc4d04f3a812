package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/root4loot/goutils/log"
	"github.com/root4loot/sitesnap"
	"github.com/spf13/viper"
)

// flagKeys maps every flag name to its configuration key.
var flagKeys = map[string]string{
	"port": "port", "p": "port",
	"output": "output", "o": "output",
	"urls": "urls", "u": "urls",
	"filter": "filter", "f": "filter",
	"sitemap": "sitemap", "s": "sitemap",
	"engine": "engine", "e": "engine",
	"chrome-bin": "chrome-bin", "b": "chrome-bin",
	"label": "label", "lb": "label",
	"silence": "silence",
	"debug": "debug",
}

// parseFlags registers and parses the command line options. Only flags that
// are set explicitly override the config file and environment.
func (c *cli) parseFlags(args []string) error {
	defaults := sitesnap.DefaultOptions()
	fs := c.flags

	// INPUT
	fs.String("sitemap", defaults.SitemapPath, "")
	fs.String("s", defaults.SitemapPath, "")
	fs.String("urls", "", "")
	fs.String("u", "", "")
	fs.String("filter", "", "")
	fs.String("f", "", "")

	// CONFIGURATIONS
	fs.Int("port", defaults.Port, "")
	fs.Int("p", defaults.Port, "")
	fs.String("engine", defaults.Engine, "")
	fs.String("e", defaults.Engine, "")
	fs.String("chrome-bin", "", "")
	fs.String("b", "", "")
	fs.StringVar(&c.ConfigFile, "config", "", "")
	fs.StringVar(&c.ConfigFile, "c", "", "")

	// OUTPUT
	fs.String("output", defaults.OutputDir, "")
	fs.String("o", defaults.OutputDir, "")
	fs.Bool("label", false, "")
	fs.Bool("lb", false, "")
	fs.Bool("silence", false, "")
	fs.Bool("debug", false, "")
	fs.BoolVar(&c.Help, "help", false, "")
	fs.BoolVar(&c.Help, "h", false, "")
	fs.BoolVar(&c.Version, "version", false, "")

	fs.Usage = func() {
		fmt.Print(usage)
	}

	return fs.Parse(args)
}

// loadOptions layers defaults, config file, environment and flags.
func (c *cli) loadOptions() (*sitesnap.Options, error) {
	v := viper.New()
	setDefaults(v)

	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("sitesnap")
	}

	v.SetEnvPrefix("SITESNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Debugf("Using config file %s", v.ConfigFileUsed())
	}

	c.flags.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	return optionsFromConfig(v)
}

func setDefaults(v *viper.Viper) {
	defaults := sitesnap.DefaultOptions()

	v.SetDefault("port", defaults.Port)
	v.SetDefault("output", defaults.OutputDir)
	v.SetDefault("sitemap", defaults.SitemapPath)
	v.SetDefault("urls", "")
	v.SetDefault("filter", "")
	v.SetDefault("engine", defaults.Engine)
	v.SetDefault("chrome-bin", "")
	v.SetDefault("label", false)
	v.SetDefault("silence", false)
	v.SetDefault("debug", false)
}

func optionsFromConfig(v *viper.Viper) (*sitesnap.Options, error) {
	options := sitesnap.DefaultOptions()

	options.Port = v.GetInt("port")
	options.OutputDir = v.GetString("output")
	options.SitemapPath = v.GetString("sitemap")
	options.ExtraURLs = listValue(v, "urls")
	options.ExcludeSubstrings = listValue(v, "filter")
	options.Engine = v.GetString("engine")
	options.ChromeBin = v.GetString("chrome-bin")
	options.Label = v.GetBool("label")
	options.Silence = v.GetBool("silence")
	options.Verbose = v.GetBool("debug")

	if options.Port < 1 || options.Port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", options.Port)
	}
	if options.OutputDir == "" {
		return nil, fmt.Errorf("output folder must not be empty")
	}

	return options, nil
}

// listValue reads key either as a list or as a comma separated string.
func listValue(v *viper.Viper, key string) []string {
	if _, ok := v.Get(key).([]interface{}); ok {
		var items []string
		for _, item := range v.GetStringSlice(key) {
			items = append(items, sitesnap.SplitList(item)...)
		}
		return items
	}
	return sitesnap.SplitList(v.GetString(key))
}
