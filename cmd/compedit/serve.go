package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/compedit/pkg/api"
	"github.com/gnana997/compedit/pkg/editor"
	mcpserver "github.com/gnana997/compedit/pkg/mcp"
	"github.com/gnana997/compedit/pkg/mcplog"
	"github.com/gnana997/compedit/pkg/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr    string
		noStore bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx := cmd.Context()

			c, err := newCore(ctx, opts.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			var st store.Store
			if !noStore {
				st, err = store.Open(ctx, cfg.Store, opts.logger)
				if err != nil {
					return fmt.Errorf("open artifact store: %w", err)
				}
				defer st.Close()
			}

			sessions, err := editor.NewManager(c.parser, c.engine, st, cfg.MaxSessions, opts.logger)
			if err != nil {
				return err
			}

			srv := api.New(cfg.Server, sessions, opts.logger)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			opts.logger.Info("shutting down http server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "run without the artifact store")
	return cmd
}

func newMCPCmd(opts *rootOptions) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP tool server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if logFile == "" {
				logFile = opts.cfg.MCP.LogFile
			}

			c, err := newCore(cmd.Context(), opts.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			callLog, err := mcplog.Open(logFile)
			if err != nil {
				return fmt.Errorf("open mcp call log: %w", err)
			}
			defer callLog.Close()

			srv := mcpserver.NewServer(c.parser, c.engine, callLog)
			opts.logger.Debug("mcp server starting on stdio")
			return srv.ServeStdio()
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append one JSON line per tool call to this file")
	return cmd
}
