package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/chloropleth-cli/internal/classify"
	"github.com/sells-group/chloropleth-cli/internal/region"
)

var statusCheck bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show effective configuration and geometry source health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

		src := "tigerweb"
		if cfg.Shapefile.Path != "" {
			src = "shapefile:" + cfg.Shapefile.Path
		}
		fmt.Fprintf(w, "source\t%s\n", src)
		fmt.Fprintf(w, "default method\t%s\n", cfg.Classify.Method)
		fmt.Fprintf(w, "default palette\t%s\n", cfg.Classify.Palette)
		fmt.Fprintf(w, "canvas\t%dx%d\n", cfg.Render.Width, cfg.Render.Height)
		fmt.Fprintf(w, "hover\tthrottle %s, delay %s\n", cfg.Hover.Throttle(), cfg.Hover.ShowDelay())

		palettes := classify.DefaultPalettes()
		if cfg.Classify.PalettesFile != "" {
			loaded, err := classify.LoadPalettes(cfg.Classify.PalettesFile)
			if err != nil {
				return err
			}
			palettes = loaded
		}
		fmt.Fprintf(w, "palettes\t%s\n", strings.Join(palettes.Names(), " "))

		if statusCheck {
			states, err := newSource().States(ctx)
			if err != nil {
				fmt.Fprintf(w, "geometry source\tunreachable: %v\n", err)
			} else {
				perRegion := make(map[region.Region]int)
				for _, s := range states {
					perRegion[s.Region]++
				}
				fmt.Fprintf(w, "geometry source\tok, %d states\n", len(states))
				for _, r := range region.All {
					fmt.Fprintf(w, "  %s\t%d states\n", r, perRegion[r])
				}
			}
		}
		return w.Flush()
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "query the geometry source to verify reachability")
	rootCmd.AddCommand(statusCmd)
}
