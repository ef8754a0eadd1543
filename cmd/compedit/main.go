// Command compedit parses React components into editable element trees,
// applies property edits, and regenerates the source. It also serves the
// editor over HTTP and as an MCP tool server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/compedit/pkg/extractor"
	"github.com/gnana997/compedit/pkg/parser"
	"github.com/gnana997/compedit/pkg/parser/queries"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/properties/plugins"
	"github.com/gnana997/compedit/pkg/util"
)

const version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "compedit",
		Short:         "Visual component editor core",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = opts.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = opts.logFormat
			}
			opts.cfg = cfg

			lc := cfg.loggerConfig()
			lc.Output = cmd.ErrOrStderr()
			opts.logger = util.NewLogger(lc)
			util.SetDefault(opts.logger)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default "+defaultConfigPath+")")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newParseCmd(opts),
		newPropsCmd(opts),
		newEditCmd(opts),
		newGenerateCmd(opts),
		newScanCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newSamplesCmd(),
		newSetupCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "compedit %s\n", version)
		},
	}
}

// core holds the parsing and property machinery shared by every command.
type core struct {
	pm     *parser.ParserManager
	qm     *queries.QueryManager
	parser *extractor.Parser
	engine *properties.Engine
}

func newCore(ctx context.Context, logger *slog.Logger) (*core, error) {
	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)

	reg := properties.NewRegistry(logger)
	if err := plugins.Install(ctx, reg); err != nil {
		qm.Close()
		pm.Close()
		return nil, err
	}

	return &core{
		pm:     pm,
		qm:     qm,
		parser: extractor.New(pm, qm, logger),
		engine: properties.NewEngine(reg, logger),
	}, nil
}

func (c *core) Close() {
	c.qm.Close()
	c.pm.Close()
}
