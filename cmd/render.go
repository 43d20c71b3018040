package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/chloropleth-cli/internal/classify"
	"github.com/sells-group/chloropleth-cli/internal/export"
	"github.com/sells-group/chloropleth-cli/internal/hittest"
	"github.com/sells-group/chloropleth-cli/internal/region"
	"github.com/sells-group/chloropleth-cli/internal/regioncache"
	"github.com/sells-group/chloropleth-cli/internal/render"
)

var (
	renderRegion  string
	renderMethod  string
	renderPalette string
	renderOutput  string
	renderProbe   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a region's chloropleth and export an HTML snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := region.Parse(renderRegion)
		if err != nil {
			return err
		}
		method, err := classify.ParseMethod(methodOrDefault(renderMethod))
		if err != nil {
			return err
		}
		pal, err := loadPalette(renderPalette)
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

		title := fmt.Sprintf("%s Region Population Chloropleth", reg)
		raster, _, err := render.DrawMap(cfg.Render.Width, cfg.Render.Height, render.MapSpec{
			Region:     reg,
			Title:      title,
			Records:    entry.Records,
			Classified: true,
			Result:     result,
			Palette:    pal,
		})
		if err != nil {
			return err
		}

		if renderProbe != "" {
			if err := probe(cmd, entry, renderProbe); err != nil {
				return err
			}
		}

		out := renderOutput
		if out == "" {
			out = strings.ToLower(string(reg)) + "_chloropleth.html"
		}
		path := filepath.Join(cfg.Render.OutputDir, out)

		meta := export.Metadata{
			Region:      string(reg),
			Title:       title,
			Method:      string(method),
			Palette:     pal.Name,
			CountyCount: len(entry.Records),
			GeneratedAt: time.Now(),
		}
		if err := export.SnapshotFile(path, raster.Snapshot(), meta); err != nil {
			return err
		}

		cmd.Printf("Snapshot written to %s\n", path)
		return nil
	},
}

// probe resolves a lon,lat point against the region's counties and reports
// the hit, through the same spatial index the hover path uses.
func probe(cmd *cobra.Command, entry *regioncache.Entry, raw string) error {
	lon, lat, err := parsePoint(raw)
	if err != nil {
		return err
	}
	index, err := hittest.NewIndex(entry.Records)
	if err != nil {
		return err
	}
	hit := index.Resolve(lon, lat)
	if hit == nil {
		cmd.Printf("Probe (%.4f, %.4f): no county\n", lon, lat)
		return nil
	}
	zap.L().Debug("probe resolved",
		zap.String("geoid", hit.GEOID),
		zap.Float64("lon", lon),
		zap.Float64("lat", lat),
	)
	cmd.Printf("Probe (%.4f, %.4f): %s County (pop %d)\n", lon, lat, hit.Name, hit.Population)
	return nil
}

func init() {
	renderCmd.Flags().StringVarP(&renderRegion, "region", "r", "", "region to render (West, Midwest, Northeast, Southeast, Southwest)")
	renderCmd.Flags().StringVarP(&renderMethod, "method", "m", "", "classification method (quantile, jenks, equal-interval)")
	renderCmd.Flags().StringVarP(&renderPalette, "palette", "p", "", "color palette name")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file name (default <region>_chloropleth.html)")
	renderCmd.Flags().StringVar(&renderProbe, "probe", "", "resolve a lon,lat point to its county after rendering")
	_ = renderCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(renderCmd)
}

// methodOrDefault falls back to the configured default method.
func methodOrDefault(name string) string {
	if name != "" {
		return name
	}
	return cfg.Classify.Method
}

// loadPalette resolves a palette by name from the built-ins merged with the
// configured palettes file.
func loadPalette(name string) (classify.Palette, error) {
	palettes := classify.DefaultPalettes()
	if cfg.Classify.PalettesFile != "" {
		var err error
		palettes, err = classify.LoadPalettes(cfg.Classify.PalettesFile)
		if err != nil {
			return classify.Palette{}, err
		}
	}
	if name == "" {
		name = cfg.Classify.Palette
	}
	return palettes.Get(name)
}

// parsePoint parses "lon,lat".
func parsePoint(raw string) (float64, float64, error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, eris.Errorf("invalid point %q, want lon,lat", raw)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "invalid longitude in %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "invalid latitude in %q", raw)
	}
	return lon, lat, nil
}
