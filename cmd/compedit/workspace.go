package main

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/gnana997/compedit/pkg/util"
	"github.com/gnana997/compedit/pkg/workspace"
)

// workspaceFlags are shared by scan and watch.
type workspaceFlags struct {
	include []string
	exclude []string
	workers int
}

func (f *workspaceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "include glob, repeatable (replaces the configured list)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "extra exclude glob, repeatable")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent extractions (0 = auto)")
}

func (f *workspaceFlags) apply(cfg workspace.Config) workspace.Config {
	if len(f.include) > 0 {
		cfg.Include = f.include
	}
	cfg.Exclude = append(cfg.Exclude, f.exclude...)
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	return cfg
}

func newScanner(opts *rootOptions, c *core, cfg workspace.Config) (*workspace.Scanner, *util.SourceCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cache, err := util.NewSourceCache(0, opts.logger)
	if err != nil {
		return nil, nil, err
	}
	return workspace.NewScanner(c.parser, cache, cfg, opts.logger), cache, nil
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		wf     workspaceFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Extract every component file in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			c, err := newCore(cmd.Context(), opts.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			s, cache, err := newScanner(opts, c, wf.apply(opts.cfg.Workspace))
			if err != nil {
				return err
			}
			defer cache.Close()

			report, err := s.Scan(cmd.Context(), root, func(done, total int, path string) {
				opts.logger.Debug("scanned", "done", done, "total", total, "file", path)
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	wf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var wf workspaceFlags
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-extract component files as they change",
		Long:  "Prints one JSON line per debounced change until interrupted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			c, err := newCore(cmd.Context(), opts.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			s, cache, err := newScanner(opts, c, wf.apply(opts.cfg.Workspace))
			if err != nil {
				return err
			}
			defer cache.Close()

			var mu sync.Mutex
			enc := json.NewEncoder(cmd.OutOrStdout())
			w, err := workspace.NewWatcher(s, func(ev workspace.Event) {
				mu.Lock()
				defer mu.Unlock()
				if err := enc.Encode(ev); err != nil {
					opts.logger.Warn("failed to write event", "error", err)
				}
			}, opts.logger)
			if err != nil {
				return err
			}
			if err := w.Start(cmd.Context(), root); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer w.Stop()

			<-cmd.Context().Done()
			return nil
		},
	}
	wf.register(cmd)
	return cmd
}
