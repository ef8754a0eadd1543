// SourceCache gives the workspace scanner and watcher memory-mapped access to
// component source files.
//
// Files are mapped lazily on first access and kept in a bounded LRU; the
// least recently used mapping is unmapped when the bound is reached. A cached
// mapping is dropped and re-mapped when the file's size or modification time
// changes, so edits picked up by the watcher are always re-read.
//
// Mapped bytes are only valid inside the callback passed to With. Callers that
// need the bytes afterwards must copy them.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxMappedFiles bounds the number of simultaneously mapped files.
const DefaultMaxMappedFiles = 512

// MappedFile is one cached source file.
type MappedFile struct {
	// Path is the path the file was loaded from.
	Path string

	// Data holds the file contents. For mapped files this is the mmap region;
	// for fallback entries it is a plain heap slice. Nil for empty files.
	Data mmap.MMap

	// Size and ModTime are the stat values at load time.
	Size    int64
	ModTime time.Time

	file   *os.File
	mapped bool
}

// release unmaps the region and closes the descriptor.
func (mf *MappedFile) release() error {
	var firstErr error
	if mf.mapped && mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			firstErr = err
		}
	}
	if mf.file != nil {
		if err := mf.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	mf.Data = nil
	return firstErr
}

// SourceCacheStats tracks cache behaviour.
type SourceCacheStats struct {
	Hits         int64
	Misses       int64
	Reloads      int64
	MmapFailures int64
	Cached       int
}

// SourceCache is safe for concurrent use.
type SourceCache struct {
	mu      sync.RWMutex
	entries *lru.Cache[string, *MappedFile]
	logger  *slog.Logger

	hits         atomic.Int64
	misses       atomic.Int64
	reloads      atomic.Int64
	mmapFailures atomic.Int64
}

// NewSourceCache creates a cache holding at most maxFiles mappings.
// maxFiles <= 0 selects DefaultMaxMappedFiles.
func NewSourceCache(maxFiles int, logger *slog.Logger) (*SourceCache, error) {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxMappedFiles
	}
	if logger == nil {
		logger = slog.Default()
	}

	sc := &SourceCache{logger: logger}
	entries, err := lru.NewWithEvict(maxFiles, func(path string, mf *MappedFile) {
		if err := mf.release(); err != nil {
			sc.logger.Warn("failed to release mapped file", "path", path, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create source cache: %w", err)
	}
	sc.entries = entries
	return sc, nil
}

// With runs fn with the current contents of path.
//
// The slice passed to fn must not be retained or modified.
func (sc *SourceCache) With(path string, fn func(data []byte) error) error {
	sc.mu.RLock()
	if mf, ok := sc.entries.Get(path); ok && isFresh(mf) {
		defer sc.mu.RUnlock()
		sc.hits.Add(1)
		return fn(mf.Data)
	}
	sc.mu.RUnlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Another goroutine may have loaded it in between.
	if mf, ok := sc.entries.Get(path); ok {
		if isFresh(mf) {
			sc.hits.Add(1)
			return fn(mf.Data)
		}
		sc.reloads.Add(1)
		sc.entries.Remove(path)
	}

	sc.misses.Add(1)
	mf, err := sc.load(path)
	if err != nil {
		return err
	}
	sc.entries.Add(path, mf)
	return fn(mf.Data)
}

// ReadCopy returns a private copy of the file contents.
func (sc *SourceCache) ReadCopy(path string) ([]byte, error) {
	var out []byte
	err := sc.With(path, func(data []byte) error {
		out = make([]byte, len(data))
		copy(out, data)
		return nil
	})
	return out, err
}

// Evict drops path from the cache, unmapping it.
func (sc *SourceCache) Evict(path string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.entries.Remove(path)
}

// Stats returns a snapshot of the cache counters.
func (sc *SourceCache) Stats() SourceCacheStats {
	return SourceCacheStats{
		Hits:         sc.hits.Load(),
		Misses:       sc.misses.Load(),
		Reloads:      sc.reloads.Load(),
		MmapFailures: sc.mmapFailures.Load(),
		Cached:       sc.entries.Len(),
	}
}

// Close unmaps every cached file.
func (sc *SourceCache) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.entries.Purge()
	return nil
}

func (sc *SourceCache) load(path string) (*MappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mf := &MappedFile{Path: path, Size: info.Size(), ModTime: info.ModTime()}

	// mmap refuses zero-length regions.
	if info.Size() == 0 {
		file.Close()
		return mf, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		sc.mmapFailures.Add(1)
		sc.logger.Debug("mmap failed, falling back to read", "path", path, "error", err)

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		mf.Data = mmap.MMap(raw)
		return mf, nil
	}

	mf.Data = data
	mf.file = file
	mf.mapped = true
	return mf, nil
}

func isFresh(mf *MappedFile) bool {
	info, err := os.Stat(mf.Path)
	if err != nil {
		return false
	}
	return info.Size() == mf.Size && info.ModTime().Equal(mf.ModTime)
}
