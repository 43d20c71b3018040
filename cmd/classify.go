package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/chloropleth-cli/internal/classify"
	"github.com/sells-group/chloropleth-cli/internal/region"
)

var (
	classifyRegion string
	classifyMethod string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Compute class breaks for a region without rendering",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := region.Parse(classifyRegion)
		if err != nil {
			return err
		}
		method, err := classify.ParseMethod(methodOrDefault(classifyMethod))
		if err != nil {
			return err
		}

		entry, err := newCache().GetOrLoad(ctx, reg)
		if err != nil {
			return err
		}

		result, err := classify.Classify(entry.Records, classify.Population, method)
		if err != nil {
			return err
		}
		if result.Empty {
			fmt.Fprintln(os.Stderr, "No usable population values in region.")
			return nil
		}

		counts := make([]int, classify.NumClasses)
		for _, class := range result.Assignments {
			counts[class]++
		}
		noData := len(entry.Records) - len(result.Assignments)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "CLASS\tLOW\tHIGH\tCOUNTIES\n")
		for i, iv := range result.Intervals {
			fmt.Fprintf(w, "%d\t%.0f\t%.0f\t%d\n", i, iv.Low, iv.High, counts[i])
		}
		if noData > 0 {
			fmt.Fprintf(w, "-\tno data\t\t%d\n", noData)
		}
		return w.Flush()
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyRegion, "region", "r", "", "region to classify")
	classifyCmd.Flags().StringVarP(&classifyMethod, "method", "m", "", "classification method (quantile, jenks, equal-interval)")
	_ = classifyCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(classifyCmd)
}
