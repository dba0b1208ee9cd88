package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// rdfExtensions are the file extensions the create verb treats as RDF input.
var rdfExtensions = map[string]bool{
	".ttl": true, ".turtle": true, ".trig": true,
	".nt": true, ".ntriples": true, ".nq": true, ".nquads": true,
}

// DiscoverRDFFiles walks dir for RDF files, returning paths relative to dir.
// Hidden directories and the derived output folder are skipped.
func DiscoverRDFFiles(dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "derived") {
				return filepath.SkipDir
			}
			return nil
		}
		if rdfExtensions[strings.ToLower(filepath.Ext(path))] {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(found)
	return found, nil
}

// scaffold is the YAML shape written by WriteScaffold. Discovered files all
// start as local; the user moves vocabularies to reference by hand.
type scaffold struct {
	Name string `yaml:"name"`
	Data struct {
		Local     []string `yaml:"local"`
		Reference []string `yaml:"reference,omitempty"`
	} `yaml:"data"`
	Output struct {
		Folder string `yaml:"folder"`
	} `yaml:"output"`
}

// WriteScaffold emits a project config listing the given data files. It
// refuses to overwrite an existing file unless force is set.
func WriteScaffold(path, name string, localFiles []string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	var s scaffold
	s.Name = name
	s.Data.Local = localFiles
	s.Output.Folder = "derived"

	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	header := "# pythinfer project configuration.\n" +
		"# Move vocabulary files under data.reference to keep their\n" +
		"# entailments out of the exported output.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}
