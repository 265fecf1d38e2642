package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvFiles are loaded in order when present. Variables already set win.
var EnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads every present file from EnvFiles and returns the ones loaded.
func LoadEnvFiles() ([]string, error) {
	var loaded []string
	for _, name := range EnvFiles {
		if _, err := os.Stat(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat %s: %w", name, err)
		}
		if err := godotenv.Load(name); err != nil {
			return loaded, fmt.Errorf("load %s: %w", name, err)
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}
