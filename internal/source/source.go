// Package source defines the geometry/attribute source seam and the county
// record model shared by the cache, classifier, and hit tester.
package source

import (
	"context"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/chloropleth-cli/internal/region"
)

// CountyRecord is one county polygon with its attributes. Immutable once
// loaded; owned by the cache entry that produced it.
type CountyRecord struct {
	// GEOID is the stable identifier, unique within a region's loaded set
	// (state FIPS + name when no county FIPS is exposed by the source).
	GEOID      string
	Name       string
	StateFIPS  string
	Population int64
	Frame      region.Frame
	// Geometry holds one or more polygons; within each polygon the first
	// ring is the outer boundary and subsequent rings are holes.
	Geometry *geom.MultiPolygon
}

// GeometrySource hands back polygon collections with per-polygon attributes,
// filtered by state identifiers. Implementations: the TIGERweb client and a
// local shapefile reader.
type GeometrySource interface {
	// States returns all state-level records.
	States(ctx context.Context) ([]region.StateRecord, error)
	// Counties returns county records for the given state FIPS codes.
	// Zero results is a valid, degenerate outcome.
	Counties(ctx context.Context, stateFIPS []string) ([]CountyRecord, error)
}
