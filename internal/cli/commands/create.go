package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "create [directory]",
		Short: "Discover RDF files and write a project config",
		Long: `Discover RDF files under a directory and emit a pythinfer.yaml listing
them as local data. Vocabulary files meant only to drive inference should be
moved to data.reference by hand afterwards.`,
		Example: `  # Create a project in the current directory
  pythinfer create

  # Overwrite an existing config
  pythinfer create --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if _, err := os.Stat(dir); err != nil {
				return err
			}
			path, err := createProject(dir, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}
