package cmd

import (
	"fmt"
	"os"

	goFlags "github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/AdguardTeam/golibs/osutil"
)

// Options represents the process-level knobs corebridge is started with.
// These are distinct from the runtime Settings document in internal/settings,
// which is mutated over the life of the process through the admin API.
//
// ConfigPath is read without using goFlags, the same way main.go's Options
// comment explains: goFlags defaults would otherwise always win over values
// loaded from the YAML file.
type Options struct {
	ConfigPath string `long:"config-path" description:"YAML configuration file. Options passed on the command line override the ones from this file." default:""`

	LogOutput string `yaml:"output" short:"o" long:"output" description:"Path to the log file. If not set, write to stdout."`
	Verbose   bool   `yaml:"verbose" short:"v" long:"verbose" description:"Verbose output" optional:"yes" optional-value:"true"`
	Pprof     bool   `yaml:"pprof" long:"pprof" description:"Expose pprof information on localhost:6060" optional:"yes" optional-value:"true"`

	AdminListenAddr string `yaml:"admin-listen" short:"a" long:"admin-listen" description:"Listen address for the admin HTTP API" default:"127.0.0.1:47890"`

	SettingsPath string `yaml:"settings-path" long:"settings-path" description:"Path to the persisted settings.json document" default:"settings.json"`
	StatsPath    string `yaml:"stats-path" long:"stats-path" description:"Path to the persisted stats.json document" default:"stats.json"`

	BinaryPath string `yaml:"binary-path" short:"b" long:"binary-path" description:"Override path to the tunnel client binary, bypassing the built-in candidate search"`

	HTTPProxyPort  int `yaml:"http-proxy-port" long:"http-proxy-port" description:"Local HTTP CONNECT proxy port" default:"8080"`
	SOCKSProxyPort int `yaml:"socks-proxy-port" long:"socks-proxy-port" description:"Local SOCKS5 front port" default:"10809"`
	UpstreamPort   int `yaml:"upstream-port" long:"upstream-port" description:"Upstream SOCKS5 port exposed by the tunnel client" default:"5201"`

	Version bool `long:"version" description:"Print the program version and exit"`
}

// parseConfig loads the YAML config file named by --config-path, if any,
// then parses the command line over it so flags win over file defaults,
// matching main.go's two-pass ConfigPath handling.
func parseConfig() (opts *Options, exitCode int, err error) {
	opts = &Options{}

	for _, arg := range os.Args[1:] {
		const prefix = "--config-path="
		if len(arg) > len(prefix) && arg[:len(prefix)] == prefix {
			path := arg[len(prefix):]
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return nil, osutil.ExitCodeArgumentError, fmt.Errorf("reading config file %s: %w", path, readErr)
			}
			if yamlErr := yaml.Unmarshal(data, opts); yamlErr != nil {
				return nil, osutil.ExitCodeArgumentError, fmt.Errorf("parsing config file %s: %w", path, yamlErr)
			}
		}
	}

	parser := goFlags.NewParser(opts, goFlags.Default)
	if _, err = parser.Parse(); err != nil {
		if flagsErr, ok := err.(*goFlags.Error); ok && flagsErr.Type == goFlags.ErrHelp {
			return nil, osutil.ExitCodeSuccess, nil
		}
		return nil, osutil.ExitCodeArgumentError, err
	}

	return opts, osutil.ExitCodeSuccess, nil
}
