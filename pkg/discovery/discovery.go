// Package discovery locates an fmf tree root and enumerates the .fmf
// files that belong to it, in tree order: for every directory,
// main.fmf first, then the directory's other *.fmf files in
// lexicographic order, then its subdirectories' files recursively
// (subdirectories themselves visited in lexicographic order). The
// Source/File split keeps "where a file came from" separate from
// "what bytes it holds".
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teemtee/fmf/pkg/fmferrors"
)

// markerDir is the directory that marks an fmf tree root, holding at
// least a 'version' file and optionally a 'config' file.
const markerDir = ".fmf"

// Source is a named byte provider, so the loader and tree packages
// never need to know whether content came from local disk, a fetched
// remote tree, or an in-memory test fixture.
type Source interface {
	Description() string
	Bytes() ([]byte, error)
}

// LocalSource reads a single file from the local filesystem.
type LocalSource struct {
	path string
}

func NewLocalSource(path string) LocalSource { return LocalSource{path} }

func (s LocalSource) Description() string { return fmt.Sprintf("file '%s'", s.path) }
func (s LocalSource) Bytes() ([]byte, error) { return os.ReadFile(s.path) }

// BytesSource serves in-memory content under a synthetic path, used by
// tests and by anything that materializes a fetched tree without
// touching disk.
type BytesSource struct {
	path string
	data []byte
}

func NewBytesSource(path string, data []byte) BytesSource { return BytesSource{path, data} }

func (s BytesSource) Description() string   { return s.path }
func (s BytesSource) Bytes() ([]byte, error) { return s.data, nil }

// File is one discovered .fmf file together with the tree-node name it
// belongs to (e.g. "/", "/recursion", "/recursion/deep").
type File struct {
	NodeName string
	Path     string
	Source   Source
}

// Root ascends from start looking for the nearest ancestor directory
// containing a '.fmf/version' marker and returns its absolute path.
func Root(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmferrors.NewGeneral("resolving '%s': %s", start, err)
	}

	for {
		marker := filepath.Join(dir, markerDir, "version")
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmferrors.NewRootMissing(start)
		}
		dir = parent
	}
}

// Config is the content of '.fmf/config', currently only the
// explore.include list: names (files or directories, matched against
// a directory entry's base name) that are walked even though they
// would otherwise be skipped by the dot-prefix rule.
type Config struct {
	Include map[string]bool
}

// LoadConfig reads root's '.fmf/config' file, if any. A missing config
// file is not an error; it yields an empty Config.
func LoadConfig(root string) (Config, error) {
	cfg := Config{Include: map[string]bool{}}

	path := filepath.Join(root, markerDir, "config")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmferrors.NewFile(path, err, "failed to read config")
	}

	raw, err := parseExploreInclude(content)
	if err != nil {
		return cfg, fmferrors.NewFile(path, err, "failed to parse config")
	}
	for _, name := range raw {
		cfg.Include[name] = true
	}
	return cfg, nil
}

// Walk enumerates every .fmf file under root in tree order, skipping
// the markerDir itself (it is never traversed for metadata) and
// honoring the dot-prefix exclusion and its explore.include
// override. Symlinked directories are followed, but a canonical path
// already on the current descent path is skipped to guarantee
// termination on a symlink loop.
func Walk(root string, cfg Config) ([]File, error) {
	visited := map[string]bool{}
	return walkDir(root, "/", cfg, visited)
}

func walkDir(dir, nodeName string, cfg Config, visited map[string]bool) ([]File, error) {
	canon, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmferrors.NewFile(dir, err, "failed to resolve directory")
	}
	if visited[canon] {
		return nil, nil
	}
	visited[canon] = true
	defer delete(visited, canon)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmferrors.NewFile(dir, err, "failed to list directory")
	}

	var fmfFiles []string
	var subdirs []string

	for _, entry := range entries {
		name := entry.Name()
		if name == markerDir {
			continue
		}

		included := cfg.Include[name]
		hidden := strings.HasPrefix(name, ".")

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
				isDir = info.IsDir()
			}
		}
		if isDir {
			if hidden && !included {
				continue
			}
			subdirs = append(subdirs, name)
			continue
		}

		if !strings.HasSuffix(name, ".fmf") {
			continue
		}
		if hidden && !included {
			continue
		}
		fmfFiles = append(fmfFiles, name)
	}

	sort.Strings(fmfFiles)
	orderFiles(fmfFiles)
	sort.Strings(subdirs)

	var out []File
	for _, name := range fmfFiles {
		path := filepath.Join(dir, name)
		out = append(out, File{
			NodeName: fileNodeName(nodeName, name),
			Path:     path,
			Source:   NewLocalSource(path),
		})
	}

	for _, name := range subdirs {
		childPath := filepath.Join(dir, name)
		childNode := joinName(nodeName, name)
		children, err := walkDir(childPath, childNode, cfg, visited)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}

	return out, nil
}

// orderFiles moves "main.fmf" to the front of an otherwise
// lexicographically-sorted slice.
func orderFiles(names []string) {
	for i, name := range names {
		if name == "main.fmf" {
			copy(names[1:i+1], names[0:i])
			names[0] = name
			return
		}
	}
}

// fileNodeName returns the node that file's content should merge
// into: main.fmf merges into the directory's own node, any other
// X.fmf merges into a child node named X.
func fileNodeName(dirNode, file string) string {
	base := strings.TrimSuffix(file, ".fmf")
	if base == "main" {
		return dirNode
	}
	return joinName(dirNode, base)
}

func joinName(parent, seg string) string {
	if parent == "/" {
		return "/" + seg
	}
	return parent + "/" + seg
}
