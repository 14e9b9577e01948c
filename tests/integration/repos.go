//go:build integration

package integration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/specvital/testinglint/pkg/config"
	"github.com/specvital/testinglint/pkg/domain"
)

// Repository is a project whose test suite is linted with the recommended
// preset of its framework.
type Repository struct {
	Framework string `yaml:"framework"`
	Name      string `yaml:"name"`
	Ref       string `yaml:"ref"`
	URL       string `yaml:"url"`
}

// ReposConfig holds the list of repositories to lint.
type ReposConfig struct {
	Repositories []Repository `yaml:"repositories"`
}

// LoadRepos loads repository definitions from repos.yaml.
func LoadRepos() (*ReposConfig, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return loadReposFromPath(filepath.Join(dir, "repos.yaml"))
}

func loadReposFromPath(path string) (*ReposConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repos config from %s: %w", path, err)
	}

	var repos ReposConfig
	if err := yaml.Unmarshal(data, &repos); err != nil {
		return nil, fmt.Errorf("unmarshal repos config: %w", err)
	}
	if err := validateRepos(&repos); err != nil {
		return nil, fmt.Errorf("invalid repos config: %w", err)
	}
	return &repos, nil
}

func validateRepos(repos *ReposConfig) error {
	if len(repos.Repositories) == 0 {
		return errors.New("no repositories defined")
	}
	for i, repo := range repos.Repositories {
		switch {
		case repo.Name == "":
			return fmt.Errorf("repository %d: name is required", i)
		case repo.URL == "":
			return fmt.Errorf("repository %s: url is required", repo.Name)
		case repo.Ref == "":
			return fmt.Errorf("repository %s: ref is required", repo.Name)
		}
		if _, err := config.ParseFramework(repo.Framework); err != nil {
			return fmt.Errorf("repository %s: %w", repo.Name, err)
		}
	}
	return nil
}

// Config returns the recommended preset of the repository's framework,
// linting every file the default heuristics consider a test.
func (r Repository) Config() *config.Config {
	cfg := config.Default()
	cfg.Framework = domain.Framework(r.Framework)
	return cfg
}

func testDataDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return filepath.Join(dir, "testdata"), nil
}
