package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/consist/pkg/consist"
)

const modulePath = "github.com/mesh-intelligence/consist"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the consist version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "consist v%s\nmodule: %s\n", consist.Version, modulePath)
			return nil
		},
	}
}
