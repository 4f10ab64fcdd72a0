package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/unitybackup-go/internal/app"
	"github.com/quantmind-br/unitybackup-go/internal/config"
	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"github.com/quantmind-br/unitybackup-go/internal/utils"
	"github.com/quantmind-br/unitybackup-go/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNoMode = errors.New("no mode given")

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(stderr, "Shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return domain.ExitOK
	}
	if !errors.Is(err, errNoMode) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return domain.ExitCode(err)
}

// cli holds the state shared by the commands of one invocation
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "unitybackup",
		Short: "Back up the binary assets of a Unity project",
		Long: `unitybackup selects the binary assets listed in the backup block of a
project's .gitignore, checks that every selected file and directory has its
.meta file, and copies the selection into a backup directory or a
zstd-compressed tar archive.

The backup block starts at a comment line containing #!UBB!#:

  # ---- #!UBB!# binary assets ----
  *.png
  *.fbx`,
		Version:       version.Short(),
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errNoMode
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ./unitybackup.yaml or ~/.unitybackup/config.yaml)")
	flags.StringP("project", "C", config.DefaultProjectRoot, "Project root directory")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")
	flags.IntP("workers", "j", config.DefaultWorkers, "Number of concurrent metadata checks")
	flags.String("log-format", config.DefaultLogFormat, "Log format (pretty or json)")

	_ = c.v.BindPFlag("project.root", flags.Lookup("project"))
	_ = c.v.BindPFlag("manifest.workers", flags.Lookup("workers"))
	_ = c.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(c.simulateCmd())
	rootCmd.AddCommand(c.backupCmd())
	rootCmd.AddCommand(c.validateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func (c *cli) simulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Build and check the backup selection without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return c.run(cmd, app.RunOptions{Mode: domain.ModeSimulate}, false)
		},
	}
}

func (c *cli) backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup <name>",
		Short: "Write a backup of the selected assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			compress, _ := cmd.Flags().GetBool("compress")
			force, _ := cmd.Flags().GetBool("force")
			return c.run(cmd, app.RunOptions{
				Mode:     domain.ModeBackup,
				Name:     args[0],
				Compress: compress,
			}, force)
		},
	}

	cmd.Flags().BoolP("compress", "z", false, "Write a zstd-compressed tar archive")
	cmd.Flags().Bool("force", false, "Replace an existing backup with the same name")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir, "Directory receiving backups")

	_ = c.v.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	_ = c.v.BindPFlag("output.overwrite", cmd.Flags().Lookup("force"))

	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the project can be backed up",
		Long:  "Checks the required project directories and the backup block of the ignore file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			o, err := c.orchestrator(cmd, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := o.ValidateProject()

			fmt.Fprintln(out, "Checking project...")
			for _, check := range report.Checks {
				status := "OK"
				if !check.Passed {
					status = "FAILED"
				}
				fmt.Fprintf(out, "  %s (%s): %s\n", check.Name, check.Path, status)
			}

			fmt.Fprintln(out)
			if !report.OK() {
				return report.Err()
			}
			fmt.Fprintln(out, "Project is valid.")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}

func (c *cli) orchestrator(cmd *cobra.Command, force bool) (*app.Orchestrator, error) {
	cfg, err := config.LoadFrom(c.v, c.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: c.verbose,
	})

	common := domain.DefaultCommonOptions()
	common.Verbose = c.verbose
	common.Force = force

	return app.NewOrchestrator(app.OrchestratorOptions{
		CommonOptions: common,
		Config:      cfg,
		Logger:      logger,
		ProgressOut: cmd.ErrOrStderr(),
	})
}

func (c *cli) run(cmd *cobra.Command, opts app.RunOptions, force bool) error {
	o, err := c.orchestrator(cmd, force)
	if err != nil {
		return err
	}

	report, err := o.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Render())
	fmt.Fprintln(out, report.Headline())
	if report.Destination != "" {
		fmt.Fprintf(out, "Backup written to %s\n", report.Destination)
	}
	return nil
}
