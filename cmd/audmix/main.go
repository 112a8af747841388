// SPDX-License-Identifier: EPL-2.0

// Command audmix plays audio files through the mixer and converts them
// offline.
//
//	audmix play [flags] file...
//	audmix convert [flags] input output.wav
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/internal/logger"
)

var Version = "dev"

const usage = `usage: audmix <command> [flags]

commands:
  play      play files through the mixer
  convert   resample, remix and write a WAV file
  version   print the version
`

// common holds the flags every command accepts.
type common struct {
	configPath string
	debug      bool
	console    bool
}

func (c *common) withFlags(fs *flag.FlagSet) {
	fs.StringVarP(&c.configPath, "conf", "c", "", "configuration file path")
	fs.BoolVar(&c.debug, "debug", false, "log debug events")
	fs.BoolVar(&c.console, "console", false, "log human readable lines instead of JSON")
}

func (c *common) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	if c.debug {
		cfg.Log.Debug = true
	}
	if c.console {
		cfg.Log.Console = true
	}

	if cfg.Log.Console {
		return cfg, logger.NewConsole(cfg.Log.Debug, "audmix", cfg.Log.NoColor), nil
	}
	return cfg, logger.New(cfg.Log.Debug), nil
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "play":
		return runPlay(args[1:])
	case "convert":
		return runConvert(args[1:], stdout)
	case "version":
		_, err := fmt.Fprintln(stdout, "audmix", Version)
		return err
	case "-h", "--help", "help":
		_, err := fmt.Fprint(stdout, usage)
		return err
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
