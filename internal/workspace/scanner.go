// Package workspace scans local directories for runnable Cargo binaries and
// examples, the launch targets the process launcher can start.
package workspace

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Kind distinguishes a launchable binary from a launchable example.
type Kind string

const (
	KindBinary  Kind = "binary"
	KindExample Kind = "example"
)

// Target is one launchable Cargo artifact discovered by a scan.
type Target struct {
	// Name is the cargo --bin or --example name.
	Name string

	// Kind is Binary or Example.
	Kind Kind

	// ManifestPath is the absolute path to the Cargo.toml that declared it.
	ManifestPath string

	// WorkspaceRoot is the scanned root directory this manifest was found
	// under.
	WorkspaceRoot string
}

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Bin []struct {
		Name string `toml:"name"`
	} `toml:"bin"`
	Example []struct {
		Name string `toml:"name"`
	} `toml:"example"`
}

// Scanner walks a set of root directories for Cargo manifests.
type Scanner struct{}

// NewScanner creates a workspace scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan walks each root plus its immediate subdirectories for Cargo.toml
// files, skipping dot-prefixed directories and "target" build output
// directories, and returns every launchable binary and example it finds.
func (s *Scanner) Scan(roots []string) ([]Target, error) {
	var targets []Target

	for _, root := range roots {
		dirs, err := candidateDirs(root)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			manifestPath := filepath.Join(dir, "Cargo.toml")
			found, err := scanManifest(manifestPath, root)
			if err != nil {
				continue
			}
			targets = append(targets, found...)
		}
	}

	return targets, nil
}

// candidateDirs returns root itself plus its immediate, non-hidden,
// non-"target" subdirectories.
func candidateDirs(root string) ([]string, error) {
	dirs := []string{root}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == "target" {
			continue
		}
		dirs = append(dirs, filepath.Join(root, name))
	}

	return dirs, nil
}

// scanManifest parses one Cargo.toml and returns its launchable targets.
// A manifest with no explicit [[bin]] entries contributes one implicit
// binary target named after the package, matching cargo's default.
func scanManifest(manifestPath, workspaceRoot string) ([]Target, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	var targets []Target

	if len(manifest.Bin) == 0 {
		if manifest.Package.Name != "" {
			targets = append(targets, Target{
				Name:          manifest.Package.Name,
				Kind:          KindBinary,
				ManifestPath:  manifestPath,
				WorkspaceRoot: workspaceRoot,
			})
		}
	} else {
		for _, bin := range manifest.Bin {
			if bin.Name == "" {
				continue
			}
			targets = append(targets, Target{
				Name:          bin.Name,
				Kind:          KindBinary,
				ManifestPath:  manifestPath,
				WorkspaceRoot: workspaceRoot,
			})
		}
	}

	for _, example := range manifest.Example {
		if example.Name == "" {
			continue
		}
		targets = append(targets, Target{
			Name:          example.Name,
			Kind:          KindExample,
			ManifestPath:  manifestPath,
			WorkspaceRoot: workspaceRoot,
		})
	}

	return targets, nil
}
