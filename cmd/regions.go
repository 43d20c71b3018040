package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/chloropleth-cli/internal/region"
)

var regionsLong bool

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the supported regions and their states",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

		if regionsLong {
			fmt.Fprintf(w, "REGION\tSTATE\tUSPS\tFIPS\n")
			for _, r := range region.All {
				for _, s := range r.States() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r, s.Name, s.USPS, s.FIPS)
				}
			}
			return w.Flush()
		}

		fmt.Fprintf(w, "REGION\tSTATES\tMEMBERS\n")
		for _, r := range region.All {
			states := r.States()
			names := make([]string, 0, len(states))
			for _, s := range states {
				names = append(names, s.USPS)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", r, len(states), strings.Join(names, " "))
		}
		return w.Flush()
	},
}

func init() {
	regionsCmd.Flags().BoolVarP(&regionsLong, "long", "l", false, "one row per state with name and FIPS code")
	rootCmd.AddCommand(regionsCmd)
}
