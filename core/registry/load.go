package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/artpar/docbase/core/resolve"
	"github.com/artpar/docbase/core/schema"
	"gopkg.in/yaml.v3"
)

// moduleFile is the YAML shape of a module declared on disk:
//
//	module: billing
//	settings:
//	  plan: { type: string, enum: [free, pro] }
//	permissions: [manage billing]
type moduleFile struct {
	Name        string           `yaml:"module"`
	Settings    *schema.Fragment `yaml:"settings"`
	Permissions []string         `yaml:"permissions"`
}

// ParseFile parses a module declaration from a YAML file.
func ParseFile(path string) (Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Module{}, fmt.Errorf("read file %s: %w", path, err)
	}

	mod, err := Parse(data)
	if err != nil {
		return Module{}, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

// Parse parses a module declaration from YAML bytes. Settings become a
// static schema source.
func Parse(data []byte) (Module, error) {
	var mf moduleFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return Module{}, fmt.Errorf("parse yaml: %w", err)
	}

	if mf.Name == "" {
		return Module{}, errors.New("module name is required")
	}

	mod := Module{
		Name:        mf.Name,
		Permissions: mf.Permissions,
	}
	if mf.Settings != nil {
		mod.SettingSchema = resolve.Static(mf.Settings)
	}
	return mod, nil
}

// LoadDir parses every *.yaml and *.yml file in dir, in file name order,
// and registers the modules. Subdirectories are not descended. Nothing is
// registered unless every file parses and every name is free.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)

	mods := make([]Module, 0, len(files))
	for _, path := range files {
		mod, err := ParseFile(path)
		if err != nil {
			return err
		}
		mods = append(mods, mod)
	}

	if err := r.RegisterAll(mods...); err != nil {
		return fmt.Errorf("load dir %s: %w", dir, err)
	}
	return nil
}
