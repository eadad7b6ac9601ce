// Package config resolves the application configuration from viper: the ledger
// location, logging, the HTTP server, the scoring engine, alert rules and the
// category keyword table.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// memoryDatabase names SQLite's private in-memory database.
const memoryDatabase = ":memory:"

// ExpandPath resolves a leading ~ to the home directory and expands $VAR
// references. The in-memory database name is returned unchanged.
func ExpandPath(path string) string {
	if path == "" || path == memoryDatabase {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
