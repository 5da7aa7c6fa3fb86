// Package util holds small helpers shared by the configuration loader.
package util

import (
	"fmt"
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnvStrict replaces every ${VAR} in s with the environment
// variable's value, failing closed rather than silently substituting an
// empty string when a referenced variable is unset — a misconfigured
// deployment should refuse to start, not boot with a blank peer address.
func ExpandEnvStrict(s string) (string, error) {
	for _, m := range envVarPattern.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if _, ok := os.LookupEnv(name); !ok {
			return "", fmt.Errorf("environment variable %s is not set", name)
		}
	}
	return os.ExpandEnv(s), nil
}
