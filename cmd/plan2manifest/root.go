package main

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ivlev/plan2manifest/internal/config"
	"github.com/ivlev/plan2manifest/internal/engine"
	"github.com/ivlev/plan2manifest/internal/logging"
	"github.com/ivlev/plan2manifest/internal/policy"
)

type commandContext struct {
	configFlag   string
	policiesFlag string
	logLevelFlag string

	once     sync.Once
	config   *config.Config
	log      zerolog.Logger
	policies *policy.Table
	err      error
}

// ensure loads config, logger and policy table once per process.
func (c *commandContext) ensure() error {
	c.once.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.err = err
			return
		}
		cfg.BuildVersion = version
		if c.logLevelFlag != "" {
			cfg.Log.Level = c.logLevelFlag
		}
		if c.policiesFlag != "" {
			cfg.Policy.File = c.policiesFlag
		}
		c.config = cfg
		c.log = logging.New(cfg.Log.Level, cfg.Log.Format)

		// Встроенная таблица, файл политик накладывается поверх
		c.policies = policy.Default()
		if cfg.Policy.File != "" {
			t, err := policy.Load(cfg.Policy.File, c.policies)
			if err != nil {
				c.err = err
				return
			}
			c.policies = t
			c.log.Debug().Str("file", cfg.Policy.File).Str("version", t.Version()).Msg("policy table loaded")
		}
	})
	return c.err
}

func (c *commandContext) compiler() *engine.Compiler {
	return engine.NewCompiler(*c.config, c.policies, c.log)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "plan2manifest",
		Short:         "Compile production plans into render manifests",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.ensure()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "plan2manifest.toml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.policiesFlag, "policies", "", "Platform policy table (YAML)")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newCompileCommand(ctx))
	rootCmd.AddCommand(newDraftCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newPoliciesCommand(ctx))
	rootCmd.AddCommand(newBrandQRCommand(ctx))

	return rootCmd
}
