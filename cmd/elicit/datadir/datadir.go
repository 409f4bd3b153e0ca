// Package datadir resolves the data directory shared by the server and CLI.
package datadir

import "os"

// EnvVar overrides the default data directory when no flag is given.
const EnvVar = "ELICIT_DATA"

// DefaultDir matches the server's default artifacts location.
const DefaultDir = "artifacts"

// Resolve picks the data directory: explicit flag value first, then the
// ELICIT_DATA environment variable, then the default.
func Resolve(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env
	}
	return DefaultDir
}
