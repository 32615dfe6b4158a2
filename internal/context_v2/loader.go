package context_v2

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spicelang/spice-sub000/internal/config"
	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/utils/fs"
)

// Loader turns an import path into a parsed file
type Loader interface {
	Load(importPath string) (*ast.File, error)
}

// MapLoader serves already parsed files, keyed by import path
type MapLoader map[string]*ast.File

func (l MapLoader) Load(importPath string) (*ast.File, error) {
	file, ok := l[importPath]
	if !ok {
		return nil, fmt.Errorf("%s: %w", importPath, ErrModuleNotFound)
	}
	return file, nil
}

// ParseFunc parses the content of one source file
type ParseFunc func(path, content string) (*ast.File, error)

// FileLoader resolves project-local import paths ("project/dir/file") below
// the project root and parses the files with Parse
type FileLoader struct {
	ProjectName string
	ProjectRoot string
	Extension   string
	Parse       ParseFunc
}

func NewFileLoader(cfg *config.Config, parse ParseFunc) *FileLoader {
	return &FileLoader{
		ProjectName: cfg.ProjectName,
		ProjectRoot: cfg.ProjectRoot,
		Extension:   cfg.Extension,
		Parse:       parse,
	}
}

// Resolve converts an import path to a file path
func (l *FileLoader) Resolve(importPath string) (string, error) {
	importPath = NormalizeImportPath(importPath)
	rel := importPath
	if l.ProjectName != "" && fs.FirstPart(importPath) == l.ProjectName {
		rel = strings.TrimPrefix(importPath, l.ProjectName+"/")
	}
	filePath := filepath.Join(l.ProjectRoot, rel+l.Extension)
	if !fs.IsValidFile(filePath) {
		return "", fmt.Errorf("%s: %w", importPath, ErrModuleNotFound)
	}
	return filepath.ToSlash(filePath), nil
}

func (l *FileLoader) Load(importPath string) (*ast.File, error) {
	filePath, err := l.Resolve(importPath)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	file, err := l.Parse(filePath, string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	if file.Path == "" {
		file.Path = filePath
	}
	if file.Source == "" {
		file.Source = string(content)
	}
	return file, nil
}
