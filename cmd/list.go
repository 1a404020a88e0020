package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"livesort.dev/pkg/livesort/internal/domain"
	m "livesort.dev/pkg/livesort/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Preview pairs, repairs and quarantine candidates",
		Long:  listLongDescription,
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindSourceFlag(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Preview(cmd.Context(), domain.PreviewArgs{
				Source:  m.Path(viper.GetString(sourceConfigKey)),
				Exclude: ownFiles(),
			})
		},
	}

	configureSourceFlag(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
