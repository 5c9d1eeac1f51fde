package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1A7432/wcf-onebot/internal/domain"
)

func endpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the endpoints that are probed, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for i, ep := range domain.DefaultEndpoints() {
				fmt.Fprintf(out, "%d. %-20s %s\n", i+1, ep.Path, ep.Description)
			}
			return nil
		},
	}
}
