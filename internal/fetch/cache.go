package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
)

const (
	unversionedDir    = "unversioned"
	versionMarkerName = ".version"
)

// Key identifies one cached artifact. Using a struct rather than a
// joined string rules out path collisions between differently-shaped
// keys.
type Key struct {
	// Base is the artifact's basename.
	Base string
	// Version is the pinned version tag; empty means unversioned.
	Version string
}

// Cache is the cross-run artifact cache. Layout on disk:
//
//	<root>/downloads/<version>/<basename>
//
// with a sibling .version marker used to invalidate entries left by a
// differently-pinned run. Writes are atomic (temp name, then rename)
// so a concurrently-running second provisioning process never observes
// a partially-written entry.
type Cache struct {
	root string
	log  logr.Logger
}

// NewCache creates a cache rooted at root.
func NewCache(root string, log logr.Logger) *Cache {
	return &Cache{root: root, log: log}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

func (c *Cache) entryDir(version string) string {
	if version == "" {
		version = unversionedDir
	}
	return filepath.Join(c.root, "downloads", version)
}

// Path returns the on-disk location an entry for key would occupy.
func (c *Cache) Path(key Key) string {
	return filepath.Join(c.entryDir(key.Version), key.Base)
}

// Get returns the cached file for key if present and its version
// marker matches. A stale or missing marker is a miss.
func (c *Cache) Get(key Key) (string, bool) {
	path := c.Path(key)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return "", false
	}

	marker, err := os.ReadFile(filepath.Join(c.entryDir(key.Version), versionMarkerName))
	if err != nil || strings.TrimSpace(string(marker)) != markerValue(key.Version) {
		return "", false
	}

	return path, true
}

// Put copies src into the cache under key. The entry is only written
// after the caller has verified the artifact (or deliberately skipped
// verification); Put itself performs no checks.
func (c *Cache) Put(key Key, src string) error {
	dir := c.entryDir(key.Version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	dest := c.Path(key)
	if err := atomicCopy(src, dest); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}

	markerPath := filepath.Join(dir, versionMarkerName)
	if err := atomicWrite(markerPath, []byte(markerValue(key.Version)+"\n")); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}

	c.log.V(1).Info("cached artifact", "base", key.Base, "version", key.Version)
	return nil
}

// Invalidate removes the entry for key if present.
func (c *Cache) Invalidate(key Key) error {
	if err := os.Remove(c.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache entry: %w", err)
	}
	return nil
}

func markerValue(version string) string {
	if version == "" {
		return unversionedDir
	}
	return version
}

// atomicCopy copies src to dest via a temp name in dest's directory.
func atomicCopy(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".partial-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// atomicWrite writes data to path via a temp name in path's directory.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
