package config

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxDepth  = 20
	DefaultCacheSize = 256

	// Project root indicator files
	fileGitDir      = ".git"
	filePackageJSON = "package.json"
)

var projectRootIndicators = []string{fileGitDir, filePackageJSON}

// Resolver finds and loads the config that applies to a file: the nearest
// config file walking up from the file's directory, stopping one level
// above the first project root. Lookups and loaded configs are cached per
// directory.
type Resolver struct {
	configs  *lru.Cache[string, *Config]
	fallback *Config
	group    singleflight.Group
	maxDepth int
	paths    *lru.Cache[string, string]
}

// NewResolver creates a resolver caching up to size directories. fallback
// is returned for files no config file applies to; nil means Default.
func NewResolver(size, maxDepth int, fallback *Config) (*Resolver, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	if fallback == nil {
		fallback = Default()
	}
	paths, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create path cache: %w", err)
	}
	configs, err := lru.New[string, *Config](size)
	if err != nil {
		return nil, fmt.Errorf("create config cache: %w", err)
	}
	return &Resolver{
		configs:  configs,
		fallback: fallback,
		maxDepth: maxDepth,
		paths:    paths,
	}, nil
}

// ResolvePath finds the nearest config file for filePath by traversing up
// directories.
func (r *Resolver) ResolvePath(filePath string) (string, bool) {
	if abs, err := filepath.Abs(filePath); err == nil {
		filePath = abs
	}
	dir := filepath.Dir(filePath)
	var foundProjectRoot bool
	var visitedDirs []string

	for depth := 0; depth < r.maxDepth; depth++ {
		if cached, found := r.paths.Get(dir); found {
			r.remember(visitedDirs, cached)
			return cached, cached != ""
		}

		visitedDirs = append(visitedDirs, dir)

		if configPath, found := findConfigInDir(dir); found {
			r.remember(visitedDirs, configPath)
			return configPath, true
		}

		if !foundProjectRoot && isProjectRoot(dir) {
			foundProjectRoot = true
		} else if foundProjectRoot {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Cache the miss for all visited directories to avoid redundant filesystem scans
	r.remember(visitedDirs, "")
	return "", false
}

func (r *Resolver) remember(dirs []string, configPath string) {
	for _, dir := range dirs {
		r.paths.Add(dir, configPath)
	}
}

// ForFile returns the config that applies to filePath. Concurrent calls
// for the same config file load it once.
func (r *Resolver) ForFile(filePath string) (*Config, error) {
	configPath, ok := r.ResolvePath(filePath)
	if !ok {
		return r.fallback, nil
	}
	if cfg, ok := r.configs.Get(configPath); ok {
		return cfg, nil
	}

	v, err, _ := r.group.Do(configPath, func() (any, error) {
		cfg, err := Load(configPath)
		if err != nil {
			return nil, err
		}
		r.configs.Add(configPath, cfg)
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Config), nil
}

// Purge drops every cached lookup, for watch mode after config edits.
func (r *Resolver) Purge() {
	r.paths.Purge()
	r.configs.Purge()
}

// Len returns the number of cached directory lookups.
func (r *Resolver) Len() int {
	return r.paths.Len()
}

func findConfigInDir(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func isProjectRoot(dir string) bool {
	for _, file := range projectRootIndicators {
		if _, err := os.Stat(filepath.Join(dir, file)); err == nil {
			return true
		}
	}
	return false
}

// IsConfigFile reports whether path names a config file.
func IsConfigFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range FileNames {
		if base == name {
			return true
		}
	}
	return false
}
