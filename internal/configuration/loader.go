package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"raftkit/internal/configuration/util"
)

// Load reads baseDir/application.yml, then merges
// baseDir/application-<profile>.yml over it (profile taken from the base
// file's app.profile field), expanding ${VAR} references strictly at
// each stage. A missing profile file is not an error: the base
// configuration alone is a valid configuration.
func Load(baseDir string) (*Properties, error) {
	props := &Properties{}
	if err := loadYAMLInto(baseDir, "application", props); err != nil {
		return nil, fmt.Errorf("configuration: loading base config: %w", err)
	}

	profilePath := filepath.Join(baseDir, "application-"+props.App.Profile+".yml")
	if _, err := os.Stat(profilePath); err == nil {
		if err := loadYAMLInto(baseDir, "application-"+props.App.Profile, props); err != nil {
			return nil, fmt.Errorf("configuration: loading profile %q: %w", props.App.Profile, err)
		}
	}

	return props, nil
}

func loadYAMLInto(baseDir, filename string, out *Properties) error {
	path := filepath.Join(baseDir, filename+".yml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	expanded, err := util.ExpandEnvStrict(string(raw))
	if err != nil {
		return err
	}
	return yaml.Unmarshal([]byte(expanded), out)
}
