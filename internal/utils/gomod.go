package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModuleInfo describes the module a go.mod file declares
type ModuleInfo struct {
	// Path is the module path from the module directive
	Path string
	// GoVersion is the go directive, empty when absent
	GoVersion string
	// Root is the directory containing go.mod
	Root string
}

// GoModParser provides utilities for parsing go.mod files
type GoModParser struct {
	readFile func(string) ([]byte, error)
}

// NewGoModParser creates a go.mod parser reading from the file system
func NewGoModParser() *GoModParser {
	return &GoModParser{readFile: os.ReadFile}
}

// ParseModuleName extracts the module name from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	info, err := p.Parse(goModPath)
	if err != nil {
		return "", err
	}
	return info.Path, nil
}

// Parse reads a go.mod file with the official modfile parser
func (p *GoModParser) Parse(goModPath string) (*ModuleInfo, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return nil, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := p.readFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.ParseLax(cleanPath, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	if modFile.Module == nil {
		return nil, fmt.Errorf("no module declaration found in %s", cleanPath)
	}

	info := &ModuleInfo{
		Path: modFile.Module.Mod.Path,
		Root: filepath.Dir(cleanPath),
	}
	if modFile.Go != nil {
		info.GoVersion = modFile.Go.Version
	}
	return info, nil
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if content, err := p.readFile(goModPath); err == nil && len(content) > 0 {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// FindModule locates and parses the go.mod governing startDir
func (p *GoModParser) FindModule(startDir string) (*ModuleInfo, error) {
	goModPath, err := p.FindGoModFile(startDir)
	if err != nil {
		return nil, err
	}
	return p.Parse(goModPath)
}
