package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"
)

// CLIDefaults is the small set of flag defaults persisted across runs.
type CLIDefaults struct {
	KMax     int    `yaml:"k-max"`
	Conflict string `yaml:"conflict-strategy"`
}

// DefaultCLIDefaults mirrors encoder.DefaultKMax and drta.ByTimePattern
// without importing either package here, keeping runner decoupled from the
// solver internals it only configures.
var DefaultCLIDefaults = CLIDefaults{KMax: 100, Conflict: "time-pattern"}

func getUserHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return homeDir
}

func init() {
	defaultsPath := filepath.Join(getUserHomeDir(), fmt.Sprintf(".config/drtalearn/defaults_%v.yaml", version))
	if fileutil.FileExists(defaultsPath) {
		if bin, err := os.ReadFile(defaultsPath); err == nil {
			var cfg CLIDefaults
			if errx := yaml.Unmarshal(bin, &cfg); errx == nil {
				DefaultCLIDefaults = cfg
				return
			} else {
				gologger.Error().Msgf("drtalearn defaults file syntax error.\n %v\n.", yaml.FormatError(errx, true, true))
				os.Exit(1)
			}
		}
	}
	if err := validateDir(filepath.Join(getUserHomeDir(), ".config/drtalearn")); err != nil {
		gologger.Error().Msgf("drtalearn config dir not found and failed to create got: %v", err)
		return
	}
	bin, err := yaml.Marshal(DefaultCLIDefaults)
	if err != nil {
		gologger.Error().Msgf("failed to marshal default CLI defaults got: %v", err)
		return
	}
	if err := os.WriteFile(defaultsPath, bin, 0600); err != nil {
		gologger.Error().Msgf("failed to save default config to %v got: %v", defaultsPath, err)
	}
}

// validateDir checks if dir exists, creating it if not.
func validateDir(dirPath string) error {
	if fileutil.FolderExists(dirPath) {
		return nil
	}
	return fileutil.CreateFolder(dirPath)
}
