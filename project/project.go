// Package project reads and writes pyco.yaml, the file that marks a
// directory as a pyco project.
package project

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/pyco", "project")

const ManifestFile = "pyco.yaml"

type Manifest struct {
	Package string `yaml:"package"`
	// Entry is the source file run when no file is named. Relative to the
	// manifest's directory.
	Entry    string        `yaml:"entry"`
	MaxSteps int64         `yaml:"max_steps,omitempty"`
	MaxDepth int           `yaml:"max_depth,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	LogLevel string        `yaml:"log_level,omitempty"`
}

// New is the manifest pyco init writes.
func New(name string) Manifest {
	return Manifest{
		Package: name,
		Entry:   "main.pyco",
	}
}

func Load(dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Manifest{}, tracerr.Wrap(err)
	}

	var m Manifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return Manifest{}, tracerr.Wrap(fmt.Errorf("reading %s: %w", path, err))
	}
	if m.Package == "" {
		return Manifest{}, tracerr.Errorf("%s: package is not set", path)
	}
	plog.Debugf("loaded %s for package %s", path, m.Package)
	return m, nil
}

// Save writes m into dir, refusing to replace an existing manifest.
func Save(dir string, m Manifest) error {
	path := filepath.Join(dir, ManifestFile)
	out, err := yaml.Marshal(m)
	if err != nil {
		return tracerr.Wrap(err)
	}

	fi, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer fi.Close()

	if _, err := fi.Write(out); err != nil {
		return tracerr.Wrap(err)
	}
	plog.Infof("wrote %s", path)
	return nil
}

// Find walks up from dir to the nearest directory holding a manifest.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// EntryPath resolves the entry file against the project directory.
func (m Manifest) EntryPath(dir string) string {
	if filepath.IsAbs(m.Entry) {
		return m.Entry
	}
	return filepath.Join(dir, m.Entry)
}
