// Package config resolves planner settings from viper: the database
// location, logging and the engine's tax, categorization and planning
// parameters.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath is where the planner keeps its database unless configured otherwise.
const DefaultDatabasePath = "~/.local/share/planner/planner.db"

// memoryDatabase is the SQLite name for a private in-memory database.
const memoryDatabase = ":memory:"

// ExpandPath resolves a database path from config or flags. A leading ~ is
// the user's home directory and $VAR references are expanded. The SQLite
// in-memory name is returned as is.
func ExpandPath(path string) string {
	if path == "" || path == memoryDatabase {
		return path
	}

	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}
