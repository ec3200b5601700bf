package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/engine"
	"github.com/tomz197/starfield/internal/logging"
	"github.com/tomz197/starfield/internal/loop"
	"github.com/tomz197/starfield/internal/skills"
)

var (
	configPath string
	variant    string
	count      int
	color      string
	mouse      bool
	seed       int64
	logFile    string
	force      bool
)

var rootCmd = &cobra.Command{
	Use:   "field",
	Short: "Animated starfield in the terminal",
	Long: `Draws a decorative animated section in the terminal.

Keys: p pauses and resumes, q quits. Clicking bursts sparks when click
sparks are enabled; moving the mouse bends the particle cloud when mouse
interaction is enabled.`,
	SilenceUsage: true,
	RunE:         run,
}

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the available variants",
	Run: func(cmd *cobra.Command, args []string) {
		for _, v := range engine.Variants {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration to a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s exists, use --force to overwrite", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&variant, "variant", "v", "", "variant to show (see 'field variants')")
	f.IntVarP(&count, "count", "n", -1, "number of entities")
	f.StringVar(&color, "color", "", "particle color, hex")
	f.BoolVar(&mouse, "mouse", false, "enable mouse interaction")
	f.Int64Var(&seed, "seed", 0, "random seed, 0 for time-seeded")
	f.StringVar(&logFile, "log-file", "", "write logs here; the terminal itself shows the animation")

	initConfigCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "starfield.yaml", "configuration file")
	rootCmd.AddCommand(variantsCmd, initConfigCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if variant != "" {
		cfg.Field.Variant = variant
	}
	if count >= 0 {
		cfg.Field.Count = count
	}
	if color != "" {
		cfg.Field.Color = color
	}
	if cmd.Flags().Changed("mouse") {
		cfg.Field.MouseInteraction = mouse
	}
	if seed != 0 {
		cfg.Field.Seed = seed
	}

	logger := logging.Discard()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = logging.New(f, cfg.Logging.Level)
	}

	catalog, err := skills.Load(cfg.Field.SkillsFile)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := loop.NewSession(os.Stdin, os.Stdout, loop.Options{
		Field:         cfg.Field,
		Catalog:       catalog,
		Rate:          cfg.GetDisplayInterval(),
		MaxFrameDelta: cfg.GetMaxFrameDelta(),
		Logger:        logger.With("session", "local"),
	})
	logger.Info("starting", "variant", cfg.Field.Variant, "count", cfg.Field.Count)
	return s.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("field failed", "err", err)
		os.Exit(1)
	}
}
