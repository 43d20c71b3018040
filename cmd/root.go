package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/chloropleth-cli/internal/config"
	"github.com/sells-group/chloropleth-cli/internal/regioncache"
	"github.com/sells-group/chloropleth-cli/internal/source"
	"github.com/sells-group/chloropleth-cli/pkg/tigerweb"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "chloropleth-cli",
	Short: "US regional county chloropleth maps",
	Long:  "Fetches county polygons from Census TIGERweb (or a local shapefile), classifies population into five classes, and renders regional chloropleth maps with HTML snapshot export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newSource builds the geometry source: the configured shapefile when one is
// set, TIGERweb otherwise.
func newSource() source.GeometrySource {
	if cfg.Shapefile.Path != "" {
		return &source.Shapefile{
			Path:            cfg.Shapefile.Path,
			PopulationField: cfg.Shapefile.PopulationField,
		}
	}
	client := tigerweb.New(tigerweb.Options{
		StatesURL:   cfg.Tigerweb.StatesURL,
		CountiesURL: cfg.Tigerweb.CountiesURL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.Tigerweb.TimeoutSecs) * time.Second,
		},
		RequestsPerSecond: float64(cfg.Tigerweb.RequestsPerSecond),
		Retries:           cfg.Tigerweb.Retries,
	})
	return &source.TigerwebSource{Client: client}
}

// newCache builds the per-process region geometry cache.
func newCache() *regioncache.Cache {
	return regioncache.New(newSource())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
