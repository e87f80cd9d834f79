package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey-austin/tag_utopia/internal/adapters/output"
	"github.com/mikey-austin/tag_utopia/internal/codec"
	"github.com/mikey-austin/tag_utopia/internal/core"
	"github.com/mikey-austin/tag_utopia/internal/tu"
)

type app struct {
	cfg     tu.Config
	log     *zap.Logger
	service *core.Service
	printer output.Printer
	quiet   bool
	json    bool
	root    string
}

func main() {
	root := &cobra.Command{
		Use:          "tu",
		Short:        "Tag Utopia audio tag editor",
		SilenceUsage: true,
	}

	var (
		configPath string
		libRoot    string
		quiet      bool
		jsonOut    bool
	)

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	root.PersistentFlags().StringVarP(&libRoot, "root", "r", "", "library root directory")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status output")
	root.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output json")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var cfg tu.Config
		var err error
		if configPath != "" {
			cfg, err = tu.LoadFile(configPath)
		} else {
			cfg, err = tu.Load()
		}
		if err != nil {
			return err
		}
		if libRoot != "" {
			cfg.Library.Root = libRoot
		}

		log := tu.NewLogger(cfg.Log)
		service := core.NewService(log, codec.Default(), cfg.Library.Workers)

		var printer output.Printer
		if jsonOut {
			printer = output.JSONPrinter{}
		} else {
			printer = output.HumanPrinter{}
		}

		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
			cfg:     cfg,
			log:     log,
			service: service,
			printer: printer,
			quiet:   quiet || jsonOut,
			json:    jsonOut,
			root:    cfg.Library.Root,
		}))
		return nil
	}

	root.AddCommand(scanCommand())
	root.AddCommand(lsCommand())
	root.AddCommand(showCommand())
	root.AddCommand(setCommand())
	root.AddCommand(lyricsCommand())
	root.AddCommand(coverCommand())
	root.AddCommand(renameCommand())
	root.AddCommand(exportCommand())
	root.AddCommand(playCommand())

	if err := root.Execute(); err != nil {
		os.Exit(core.ExitCode(err))
	}
}

type appKey struct{}

func fromContext(cmd *cobra.Command) *app {
	val := cmd.Context().Value(appKey{})
	if val == nil {
		return nil
	}
	return val.(*app)
}

// loadLibrary scans the configured root so commands that operate on
// the whole collection see a fresh index.
func (a *app) loadLibrary(ctx context.Context) error {
	if a.root == "" {
		return requireRoot()
	}
	_, err := a.service.Scan(ctx, a.root)
	return err
}

func requireRoot() error {
	return core.WrapError(core.ExitUsage, "library root is required (set --root or config)", nil)
}

func readFileOrStdin(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func usageError(msg string) error {
	return core.WrapError(core.ExitUsage, msg, nil)
}
