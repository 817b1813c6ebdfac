package fragment

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"

	"github.com/hanpama/graphcompose/internal/resolver"
)

// File names read from each fragment directory.
const (
	DefinitionFile = "definition.graphql"
	QueryFile      = "query.graphql"
	MutationFile   = "mutation.graphql"
	ResolversFile  = "resolvers.yaml"
	// EntitiesFile sits at the provider root.
	EntitiesFile = "entities.yaml"
)

var fragmentFiles = []string{DefinitionFile, QueryFile, MutationFile, ResolversFile}

// FileSystemProvider reads fragments from the immediate subdirectories of a
// root directory. A subdirectory is a fragment when it holds at least one of
// the fragment files.
type FileSystemProvider struct {
	root    string
	dirs    map[string]string
	actions ActionFactory
}

type FileSystemOption func(*FileSystemProvider)

// WithActions sets how entity actions declared in entities.yaml are
// implemented. By default they fail with ErrActionNotImplemented.
func WithActions(f ActionFactory) FileSystemOption {
	return func(p *FileSystemProvider) { p.actions = f }
}

// NewFileSystemProvider scans rootDir for fragment directories.
func NewFileSystemProvider(ctx context.Context, rootDir string, opts ...FileSystemOption) (*FileSystemProvider, error) {
	p := &FileSystemProvider{root: rootDir, dirs: make(map[string]string), actions: unimplementedAction}
	for _, o := range opts {
		o(p)
	}

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() || path == rootDir {
			return nil
		}
		if hasAnyFile(path, fragmentFiles) {
			p.dirs[d.Name()] = path
		}
		// Fragments are not nested.
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk fragment root %q: %w", rootDir, err)
	}
	return p, nil
}

func hasAnyFile(dir string, names []string) bool {
	return lo.SomeBy(names, func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && !info.IsDir()
	})
}

// ListFragments implements Provider.
func (p *FileSystemProvider) ListFragments(ctx context.Context) ([]string, error) {
	names := lo.Keys(p.dirs)
	sort.Strings(names)
	return names, nil
}

// ReadFragment implements Provider. Missing files leave the corresponding
// part of the fragment blank.
func (p *FileSystemProvider) ReadFragment(ctx context.Context, name string) (*Fragment, error) {
	dir, ok := p.dirs[name]
	if !ok {
		return nil, fmt.Errorf("fragment %q not found", name)
	}
	f := &Fragment{Name: name}
	var err error
	if f.TypeSDL, err = readOptional(filepath.Join(dir, DefinitionFile)); err != nil {
		return nil, err
	}
	if f.QuerySDL, err = readOptional(filepath.Join(dir, QueryFile)); err != nil {
		return nil, err
	}
	if f.MutationSDL, err = readOptional(filepath.Join(dir, MutationFile)); err != nil {
		return nil, err
	}
	raw, err := readOptional(filepath.Join(dir, ResolversFile))
	if err != nil {
		return nil, err
	}
	if f.Resolvers, err = ParseResolvers([]byte(raw)); err != nil {
		return nil, fmt.Errorf("fragment %q: %w", name, err)
	}
	return f, nil
}

// Entities implements EntityProvider by reading entities.yaml at the root.
// A missing file yields no entities.
func (p *FileSystemProvider) Entities(ctx context.Context) ([]*resolver.Entity, error) {
	raw, err := readOptional(filepath.Join(p.root, EntitiesFile))
	if err != nil {
		return nil, err
	}
	return ParseEntities([]byte(raw), p.actions)
}

func readOptional(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}
	return string(b), nil
}
