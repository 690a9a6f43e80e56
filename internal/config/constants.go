// Package config holds process-wide toggles and optional on-disk
// settings for the Ralix CLI.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current Ralix version.
var Version = "0.1.0"

const SourceFileExt = ".rlx"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".rlx", ".ralix"}

// TrimSourceExt removes any recognized source extension from a filename.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode is a process-wide test-mode flag. No package reads it:
// type-variable display does not change when it is set.
var IsTestMode = false

// Settings is the subset of CLI behavior a project can override via a
// `.ralixrc.yaml` file in the working directory.
type Settings struct {
	Color      *bool `yaml:"color"`
	ShowTraces bool  `yaml:"showTraces"`
}

// Load reads `.ralixrc.yaml` from path, returning zero Settings (not
// an error) when the file does not exist.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
