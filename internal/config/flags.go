package config

import (
	"flag"
	"strings"
)

// archiveList collects repeated --archive flags.
type archiveList []string

func (a *archiveList) String() string {
	return strings.Join(*a, ",")
}

func (a *archiveList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagListen   = flag.String("listen", "", "Inspection server listen address")
	flagArchives archiveList
)

func init() {
	flag.Var(&flagArchives, "archive", "XARC archive to search (repeatable, highest priority last)")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Server.RequestLog = true
	}
	if *flagListen != "" {
		cfg.Server.Listen = *flagListen
	}
	if len(flagArchives) > 0 {
		cfg.Data.Archives = append(cfg.Data.Archives, flagArchives...)
	}
}
