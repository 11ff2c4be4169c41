// Package manifest reads package manifests and turns their runtime
// dependencies into archive source patterns.
package manifest

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/resolver"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

const dependencyDir = "node_modules"

// Package is the subset of a package manifest used to select dependencies.
type Package struct {
	Name         string            `yaml:"name" json:"name"`
	Version      string            `yaml:"version" json:"version"`
	Dependencies map[string]string `yaml:"dependencies" json:"dependencies"`
}

// DependencyNames returns the runtime dependency names in sorted order.
// devDependencies are never included.
func (p Package) DependencyNames() []string {
	names := lo.Keys(p.Dependencies)
	slices.Sort(names)
	return names
}

// Read loads and decodes the manifest at file. The manifest is JSON; it is
// decoded with a YAML decoder, which accepts JSON documents.
func Read(fs afero.Fs, file string) (Package, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return Package{}, &engine.ManifestError{Path: file, Err: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return Package{}, &engine.ManifestError{Path: file, Err: errors.New("manifest is empty")}
	}

	var pkg Package
	if err := yaml.Unmarshal(data, &pkg); err != nil {
		return Package{}, &engine.ManifestError{Path: file, Err: fmt.Errorf("failed to decode manifest: %w", err)}
	}

	return pkg, nil
}

// DependencyPatterns reads packageFile and returns one recursive pattern per
// runtime dependency, rooted at the manifest's node_modules directory and
// expressed relative to cwd.
func DependencyPatterns(fs afero.Fs, packageFile string, cwd string) ([]string, error) {
	cwd, err := resolver.AbsWorkingDir(cwd)
	if err != nil {
		return nil, &engine.ManifestError{Path: packageFile, Err: err}
	}

	manifestPath := packageFile
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(cwd, manifestPath)
	}

	pkg, err := Read(fs, manifestPath)
	if err != nil {
		return nil, err
	}

	rootDir, err := filepath.Rel(cwd, filepath.Dir(manifestPath))
	if err != nil {
		return nil, &engine.ManifestError{Path: manifestPath, Err: err}
	}
	rootDir = filepath.ToSlash(rootDir)

	return lo.Map(pkg.DependencyNames(), func(name string, _ int) string {
		return path.Join(rootDir, dependencyDir, name) + "/**"
	}), nil
}
