package linter

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/specvital/testinglint/pkg/config"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/source"
)

// WatchFunc receives the result of every watch round. full is set for
// the initial lint and for rounds triggered by config file changes.
type WatchFunc func(result *Result, err error, full bool)

// Watch lints src once, then re-lints changed files after every quiet
// period of Debounce until ctx is cancelled. A changed config file purges
// the config cache and re-lints the whole source. It returns nil on clean
// cancellation.
func (l *Linter) Watch(ctx context.Context, src source.Source, onResult WatchFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	root := src.Root()
	skipSet := buildSkipSet(append(DefaultSkipPatterns, l.options.ExcludePatterns...))
	if err := addDirectories(fsw, root, skipSet); err != nil {
		return err
	}

	result, err := l.Lint(ctx, src)
	onResult(result, err, true)

	var (
		pending     = make(map[string]struct{})
		configDirty bool
		timer       *time.Timer
		timerC      <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			rel, err := filepath.Rel(root, evt.Name)
			if err != nil {
				continue
			}

			// Newly created directories extend the recursive watch.
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() && !skipSet[filepath.Base(evt.Name)] {
					if err := addDirectories(fsw, evt.Name, skipSet); err != nil {
						l.options.Logger.Warn("watch: add directory", "dir", evt.Name, "err", err)
					}
					continue
				}
			}

			switch {
			case config.IsConfigFile(evt.Name):
				configDirty = true
			case isLintable(rel):
				pending[rel] = struct{}{}
			default:
				continue
			}
			l.options.Logger.Debug("watch: change", "file", rel, "op", evt.Op.String())

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(l.options.Debounce)
			timerC = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			l.options.Logger.Warn("watch: fsnotify error", "err", err)

		case <-timerC:
			timerC = nil
			if configDirty {
				configDirty = false
				clear(pending)
				if l.resolver != nil {
					l.resolver.Purge()
				}
				l.options.Logger.Info("watch: config changed, linting everything")
				result, err := l.Lint(ctx, src)
				onResult(result, err, true)
				continue
			}

			changed := existingFiles(root, pending)
			clear(pending)
			if len(changed) == 0 {
				continue
			}
			l.options.Logger.Info("watch: linting changed files", "count", len(changed))
			result, err := l.lintFiles(ctx, src, changed, false)
			onResult(result, err, false)
		}
	}
}

// addDirectories adds dir and every non-skipped directory below it.
func addDirectories(fsw *fsnotify.Watcher, dir string, skipSet map[string]bool) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable directories are not watched.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipSet[d.Name()] {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

func isLintable(rel string) bool {
	_, ok := domain.LanguageFromPath(rel)
	return ok
}

// existingFiles drops removed files and sorts the rest.
func existingFiles(root string, pending map[string]struct{}) []string {
	files := make([]string, 0, len(pending))
	for rel := range pending {
		if info, err := os.Stat(filepath.Join(root, rel)); err == nil && !info.IsDir() {
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	return files
}
