package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"livesort.dev/pkg/livesort/internal/domain"
	m "livesort.dev/pkg/livesort/internal/model"
)

var sourceFlag string
var quarantineFlag string
var destinationFlag string
var startVersionFlag int
var includeExactFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Organize a directory of captures",
		Long:  runLongDescription,
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindSourceFlag(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Run(cmd.Context(), domain.RunArgs{
				Source:       m.Path(viper.GetString(sourceConfigKey)),
				Quarantine:   m.Path(viper.GetString(quarantineConfigKey)),
				Destination:  m.Path(viper.GetString(destinationConfigKey)),
				StartVersion: viper.GetInt(startVersionConfigKey),
				IncludeExact: viper.GetBool(includeExactConfigKey),
				Reports:      reportsDir(),
				Exclude:      ownFiles(),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	configureSourceFlag(cmd)

	cmd.Flags().StringVarP(&quarantineFlag, quarantineFlagName, "q", viper.GetString(quarantineConfigKey), "base directory for unmatched files")
	bindFlagToConfig(cmd.Flags().Lookup(quarantineFlagName), quarantineConfigKey)

	cmd.Flags().StringVarP(&destinationFlag, destinationFlagName, "d", viper.GetString(destinationConfigKey), "parent of the versioned NNNAPPLE directories")
	bindFlagToConfig(cmd.Flags().Lookup(destinationFlagName), destinationConfigKey)

	cmd.Flags().IntVar(&startVersionFlag, startVersionFlagName, viper.GetInt(startVersionConfigKey), "first versioned directory number")
	bindFlagToConfig(cmd.Flags().Lookup(startVersionFlagName), startVersionConfigKey)

	cmd.Flags().BoolVar(&includeExactFlag, includeExactFlagName, viper.GetBool(includeExactConfigKey), "also distribute pairs whose stem is already canonical")
	bindFlagToConfig(cmd.Flags().Lookup(includeExactFlagName), includeExactConfigKey)
}

func configureSourceFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sourceFlag, sourceFlagName, "s", viper.GetString(sourceConfigKey), "directory holding the imported captures")
	bindSourceFlag(cmd)
}

// bindSourceFlag points paths.source at the --source flag of the command
// being executed; run and list each own one.
func bindSourceFlag(cmd *cobra.Command) {
	bindFlagToConfig(cmd.Flags().Lookup(sourceFlagName), sourceConfigKey)
}
