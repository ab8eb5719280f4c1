package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Corpus = (*Connector)(nil)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("connector closed")

// watchBuffer bounds how many changes queue before the watcher blocks.
const watchBuffer = 64

// Connector walks a local corpus directory.
type Connector struct {
	rootPath string
	settings domain.IngestSettings

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// New creates a connector for rootPath. File URIs and "~/" are resolved.
func New(rootPath string, settings domain.IngestSettings) *Connector {
	return &Connector{
		rootPath: ResolveRoot(rootPath),
		settings: settings,
	}
}

// Open creates a connector and validates its root.
// It matches driven.CorpusFactoryFunc.
func Open(root string, settings domain.IngestSettings) (driven.Corpus, error) {
	c := New(root, settings)
	if err := c.Validate(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// Root returns the corpus root path.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks the root exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: corpus directory does not exist: %s", domain.ErrNotFound, c.rootPath)
		}
		return fmt.Errorf("%w: cannot access corpus directory %s: %w", domain.ErrIOFailure, c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: corpus path is not a directory: %s", domain.ErrInvalidInput, c.rootPath)
	}
	return nil
}

// Ingest walks the corpus and hashes every included file.
func (c *Connector) Ingest(ctx context.Context) ([]domain.FileDescriptor, domain.IngestReport, error) {
	report := domain.IngestReport{ByExtension: make(map[string]int)}
	if err := c.Validate(ctx); err != nil {
		return nil, report, err
	}

	var files []domain.FileDescriptor
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == c.rootPath {
				return walkErr
			}
			logger.Warn("skipping %s: %v", path, walkErr)
			if d == nil || !d.IsDir() {
				report.Skipped++
			}
			return nil
		}
		if path == c.rootPath {
			return nil
		}

		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !c.settings.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !c.included(path, d) {
			return nil
		}

		desc, err := c.describe(path)
		if err != nil {
			logger.Warn("could not process %s: %v", path, err)
			report.Skipped++
			return nil
		}

		files = append(files, desc)
		report.Included++
		report.ByExtension[desc.Extension]++
		return nil
	})
	if err != nil {
		return nil, report, fmt.Errorf("walking corpus: %w", err)
	}

	return files, report, nil
}

// included reports whether a non-directory entry should be hashed.
func (c *Connector) included(path string, d fs.DirEntry) bool {
	if !c.settings.Includes(extensionOf(d.Name())) {
		return false
	}

	switch mode := d.Type(); {
	case mode.IsRegular():
		return true
	case mode&fs.ModeSymlink != 0:
		// Follow links to files; links to directories are not walked.
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	default:
		return false
	}
}

// describe hashes the file by streaming it in blocks.
func (c *Connector) describe(path string) (domain.FileDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.FileDescriptor{}, err
	}
	defer f.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, f)
	if err != nil {
		return domain.FileDescriptor{}, err
	}

	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	return domain.FileDescriptor{
		Path:         path,
		ContentHash:  hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes:    size,
		Extension:    extensionOf(path),
		RelativePath: filepath.ToSlash(rel),
	}, nil
}

// ==================== Watch ====================

// Watch reports created, modified and removed corpus files.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.Validate(ctx); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := c.addDirs(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}
	c.watchers = append(c.watchers, watcher)

	out := make(chan domain.FileChange, watchBuffer)
	go c.watchLoop(ctx, watcher, out)
	return out, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.FileChange) {
	defer close(out)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && c.settings.Recursive {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := c.addDirs(watcher, event.Name); err != nil {
						logger.Warn("watching %s: %v", event.Name, err)
					}
					continue
				}
			}
			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case out <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// addDirs watches dir and, when recursive, its non-hidden subdirectories.
func (c *Connector) addDirs(watcher *fsnotify.Watcher, dir string) error {
	if !c.settings.Recursive {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent maps a raw event to a corpus change, or nil when the path
// is hidden, excluded, a directory or the operation is irrelevant.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil {
		return nil
	}
	if isHidden(rel) || !c.settings.Includes(extensionOf(event.Name)) {
		return nil
	}

	change := &domain.FileChange{Path: event.Name, RelativePath: filepath.ToSlash(rel)}
	switch {
	case event.Has(fsnotify.Create):
		change.Type = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		change.Type = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: change.Path, RelativePath: change.RelativePath}
	default:
		return nil
	}

	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return nil
	}
	return change
}

// Close stops all watchers. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for _, w := range c.watchers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.watchers = nil
	return errors.Join(errs...)
}

// ==================== Helpers ====================

// extensionOf returns the lowercase extension without the dot.
func extensionOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// isHidden reports whether any path component starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
