package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/extractor"
	"github.com/gnana997/compedit/pkg/util"
)

// FileSummary describes one extracted component file.
type FileSummary struct {
	Path         string   `json:"path"`
	Name         string   `json:"name,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Elements     int      `json:"elements"`
	Roots        []string `json:"roots,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Report is the result of a workspace scan. Files keep discovery order.
type Report struct {
	Root       string        `json:"root"`
	Files      []FileSummary `json:"files"`
	Failed     int           `json:"failed"`
	Workers    int           `json:"workers"`
	DurationMs int64         `json:"duration_ms"`
}

// ProgressFunc is called after each file with the running count.
type ProgressFunc func(done, total int, path string)

// Scanner extracts component files in parallel.
type Scanner struct {
	parser *extractor.Parser
	cache  *util.SourceCache
	cfg    Config
	logger *slog.Logger
}

// NewScanner creates a scanner reading through cache.
func NewScanner(p *extractor.Parser, cache *util.SourceCache, cfg Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{parser: p, cache: cache, cfg: cfg, logger: logger}
}

// Config returns the scanner's configuration.
func (s *Scanner) Config() Config {
	return s.cfg
}

// ScanFile extracts one file. Failures are reported in the summary.
func (s *Scanner) ScanFile(ctx context.Context, path string) FileSummary {
	summary := FileSummary{Path: path}

	var code string
	err := s.cache.With(path, func(data []byte) error {
		code = string(data)
		return nil
	})
	if err != nil {
		summary.Error = err.Error()
		return summary
	}

	pc, err := s.parser.ParseFile(ctx, path, code)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	defer pc.Close()

	summary.Name = pc.Name
	summary.Dependencies = pc.Dependencies
	summary.Elements = element.Count(pc.Elements)
	for _, root := range pc.Elements {
		summary.Roots = append(summary.Roots, root.TagName)
	}
	return summary
}

// Scan discovers files under root and extracts them with a worker pool.
func (s *Scanner) Scan(ctx context.Context, root string, progress ProgressFunc) (*Report, error) {
	start := time.Now()

	files, err := Discover(root, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}

	workers := util.GetOptimalPoolSizeWithOverride(s.cfg.Workers)
	if workers > len(files) {
		workers = max(len(files), 1)
	}
	report := &Report{Root: root, Files: make([]FileSummary, len(files)), Workers: workers}

	s.logger.Info("scanning workspace", "root", root, "files", len(files), "workers", workers)
	if len(files) == 0 {
		return report, nil
	}

	pool := newWorkerPool(ctx, workers, s.ScanFile, s.logger)
	pool.start()

	// The collector must run before submission starts or a full job channel
	// deadlocks the submit loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		n := 0
		for out := range pool.results {
			report.Files[out.id] = out.summary
			if out.summary.Error != "" {
				report.Failed++
				s.logger.Warn("file extraction failed", "file", out.summary.Path, "error", out.summary.Error)
			}
			n++
			if progress != nil {
				progress(n, len(files), out.summary.Path)
			}
		}
	}()

	var submitErr error
	for i, f := range files {
		if err := pool.submit(job{path: f, id: i}); err != nil {
			submitErr = err
			break
		}
	}
	pool.finish()
	pool.wait()
	<-done

	if submitErr != nil || ctx.Err() != nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan cancelled: %w", err)
		}
		return nil, submitErr
	}

	report.DurationMs = time.Since(start).Milliseconds()
	s.logger.Info("workspace scan complete",
		"files", len(files),
		"failed", report.Failed,
		"duration_ms", report.DurationMs)
	return report, nil
}
