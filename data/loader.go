package data

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"

	"github.com/commeator/api-test-harness/framework/helpers"
)

//go:embed data-files
var embedded embed.FS

// bundled is the data-files directory, so that callers use paths relative to it.
var bundled = mustSub(embedded, "data-files") //nolint:gochecknoglobals

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// SourceInfo is one expansion of a data file. A file without parameters yields a single
// SourceInfo; a parameterized file yields one per parameter set, each with its own Data.
type SourceInfo struct {
	FilePath string
	BaseName string
	Params   map[string]ldvalue.Value
	Data     []byte
}

// ParseInto decodes Data into target. Errors name the file and the parameter set.
func (s SourceInfo) ParseInto(target interface{}) error {
	err := ParseJSONOrYAML(s.Data, target)
	if err != nil {
		err = fmt.Errorf("error parsing %q %s: %w", s.BaseName, s.ParamsString(), err)
	}
	return err
}

// ParamsString is "(NAME=value,...)" in name order, or "" if there are no parameters.
func (s SourceInfo) ParamsString() string {
	if len(s.Params) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, name := range helpers.Sorted(maps.Keys(s.Params)) {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name + "=" + s.Params[name].String())
	}
	b.WriteByte(')')
	return b.String()
}

// LoadDataFile reads one bundled file, given its path under data/data-files.
func LoadDataFile(filePath string) ([]SourceInfo, error) {
	return loadFile(filePath, func() ([]byte, error) { return fs.ReadFile(bundled, filePath) })
}

// LoadAllDataFiles reads every .json, .yaml or .yml file directly inside a bundled directory,
// in name order.
func LoadAllDataFiles(dir string) ([]SourceInfo, error) {
	entries, err := fs.ReadDir(bundled, dir)
	if err != nil {
		return nil, err
	}
	var all []SourceInfo
	for _, entry := range entries {
		if entry.IsDir() || !isDataFileName(entry.Name()) {
			continue
		}
		sources, err := LoadDataFile(path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		all = append(all, sources...)
	}
	return all, nil
}

// LoadExternalFile reads a file from the local filesystem, such as the -suite-file argument.
func LoadExternalFile(filePath string) ([]SourceInfo, error) {
	return loadFile(filePath, func() ([]byte, error) { return os.ReadFile(filePath) })
}

func loadFile(filePath string, read func() ([]byte, error)) ([]SourceInfo, error) {
	content, err := read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filePath, err)
	}
	sources, err := expandSubstitutions(content)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", filePath, err)
	}
	for i := range sources {
		sources[i].FilePath = filePath
		sources[i].BaseName = filepath.Base(filePath)
	}
	return sources, nil
}

func isDataFileName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".json" || ext == ".yaml" || ext == ".yml"
}
