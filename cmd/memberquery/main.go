package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davicafu/memberquery/internal/config"
	"github.com/davicafu/memberquery/pkg/logger"
)

// globalFlags sobrescriben la configuración de entorno.
type globalFlags struct {
	logLevel    string
	storeDriver string
	sqlitePath  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "memberquery",
		Short:         "Member search service over member/team storage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.PersistentFlags().StringVar(&flags.storeDriver, "driver", "", "store driver (sqlite, postgres, mongodb, memory); overrides STORE_DRIVER")
	root.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite-path", "", "sqlite database file; overrides SQLITE_PATH")

	root.AddCommand(newServeCmd(flags), newSearchCmd(flags), newSeedCmd(flags))
	return root
}

func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.storeDriver != "" {
		cfg.StoreDriver = f.storeDriver
	}
	if f.sqlitePath != "" {
		cfg.SQLitePath = f.sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)
	return cfg, nil
}

func main() {
	root := newRootCmd()
	err := root.Execute()
	if err != nil {
		logger.Logger().Error("command failed", zap.Error(err))
		root.PrintErrln("Error:", err)
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
