package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// defaultConfigFile is picked up from the working directory when no
// --config flag is given.
const defaultConfigFile = "enerviz.toml"

// fileConfig holds renderer defaults loaded from a TOML options file.
// Command-line flags override anything set here.
//
// Example:
//
//	format = "svg"
//	legend = true
//	txt_width = 16
//	txt_fontsize = 10
//
//	[graph_attrs]
//	rankdir = "LR"
type fileConfig struct {
	Format   string            `toml:"format"`
	Legend   bool              `toml:"legend"`
	TxtWidth int               `toml:"txt_width"`
	FontSize int               `toml:"txt_fontsize"`
	Attrs    map[string]string `toml:"graph_attrs"`
}

// loadConfig reads the options file at path. With an empty path the
// default file is loaded when present; a missing default file is not an
// error, a missing explicit file is.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config file %s not found", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
