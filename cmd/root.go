// Package cmd provides the root command and CLI setup for livesort.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"livesort.dev/pkg/livesort/internal/adapter"
	"livesort.dev/pkg/livesort/internal/controller"
	"livesort.dev/pkg/livesort/internal/domain"
	m "livesort.dev/pkg/livesort/internal/model"
)

var fsAdapter adapter.CaptureFSAdapter
var reportStore adapter.ReportStore
var runLocker adapter.RunLocker
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// noReportFlag disables saving the run report when set.
var noReportFlag bool

var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalCaptureFSAdapter()
	reportStore = adapter.NewReportStore()
	runLocker = adapter.NewFlockRunLocker("")
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		runLocker,
		ui,
	)
}

const layoutHelp = `Directory layout:
  <source>              flat directory of imported captures
  <quarantine>, ...1    leftovers that are not part of a Live Photo pair
  <destination>/100APPLE, 101APPLE, ...
                        canonical IMG_xxxx.mov + IMG_xxxx.<ext> pairs`

const rootLongDescription = `Livesort tidies a directory of camera captures: it pairs Live Photo
motion files with their stills, repairs mangled names, quarantines everything
else and distributes the pairs into versioned directories.

` + layoutHelp

const runLongDescription = `Organize the source directory: match and repair pairs, quarantine
leftovers, distribute pairs and print the final counts.

` + layoutHelp

const listLongDescription = `Preview the pairs, repairs and quarantine candidates of the source
directory without modifying anything.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "livesort",
		Short: "Live Photo pair organizer",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for run reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&noReportFlag, noReportFlagName, viper.GetBool(noReportFlagName), "do not save a report for this run")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noReportFlagName), noReportFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// reportsDir returns where run reports go, or "" when saving is disabled.
func reportsDir() m.Path {
	if viper.GetBool(noReportFlagName) {
		return ""
	}

	return m.Path(viper.GetString(outputFlagName))
}

// ownFiles returns the config file, the log file and its rotated backups so a
// run over the working directory leaves them in place.
func ownFiles() []m.Path {
	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = filepath.Join(configFolderPath, configFileName)
	}

	logPath := viper.GetString(logFilenameKey)
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	files := []m.Path{m.Path(configPath), m.Path(logPath)}

	ext := filepath.Ext(logPath)

	backups, err := filepath.Glob(strings.TrimSuffix(logPath, ext) + "-*" + ext + "*")
	if err == nil {
		for _, backup := range backups {
			files = append(files, m.Path(backup))
		}
	}

	return files
}
