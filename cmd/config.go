package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables read by Configure.
const (
	EnvBook   = "MDC_BOOK"
	EnvLocale = "MDC_LOCALE"
)

// Config is the content of the configuration file.
type Config struct {
	Book   string `toml:"book"`
	Locale string `toml:"locale"`
}

// Configure sets the global flags that were not set on the command line.
//
// Values come from the environment first, optionally loaded from a .env file
// in the working directory, then from the configuration file. Missing files
// are ignored.
func Configure(flags *flag.FlagSet) error {
	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var cfg Config
	if _, err := toml.DecodeFile(*configFile, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || set["config"] {
			return fmt.Errorf("reading configuration %q: %w", *configFile, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading .env: %w", err)
	}
	if v := os.Getenv(EnvBook); v != "" {
		cfg.Book = v
	}
	if v := os.Getenv(EnvLocale); v != "" {
		cfg.Locale = v
	}

	if !set["book"] && cfg.Book != "" {
		*bookPath = cfg.Book
	}
	if !set["locale"] && cfg.Locale != "" {
		*locale = cfg.Locale
	}
	return nil
}
