package source

import (
	"context"
	"fmt"

	"github.com/sells-group/chloropleth-cli/internal/region"
	"github.com/sells-group/chloropleth-cli/pkg/tigerweb"
)

// TigerwebSource adapts the TIGERweb client to the GeometrySource seam.
type TigerwebSource struct {
	Client *tigerweb.Client
}

var _ GeometrySource = (*TigerwebSource)(nil)

// States fetches state records and tags each with its region. States outside
// the five regions (Puerto Rico, USVI) are dropped.
func (s *TigerwebSource) States(ctx context.Context) ([]region.StateRecord, error) {
	features, err := s.Client.States(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]region.StateRecord, 0, len(features))
	for _, f := range features {
		r, ok := region.ForStateFIPS(f.FIPS)
		if !ok {
			continue
		}
		records = append(records, region.StateRecord{
			Name:     f.Name,
			FIPS:     f.FIPS,
			Region:   r,
			Geometry: f.Geometry,
		})
	}
	return records, nil
}

// Counties fetches county records for the given state FIPS codes.
func (s *TigerwebSource) Counties(ctx context.Context, stateFIPS []string) ([]CountyRecord, error) {
	features, err := s.Client.CountiesByState(ctx, stateFIPS)
	if err != nil {
		return nil, err
	}

	records := make([]CountyRecord, 0, len(features))
	for _, f := range features {
		records = append(records, CountyRecord{
			GEOID:      countyGEOID(f.StateFIPS, f.Name),
			Name:       f.Name,
			StateFIPS:  f.StateFIPS,
			Population: f.Population,
			Frame:      region.FrameForState(f.StateFIPS),
			Geometry:   f.Geometry,
		})
	}
	return records, nil
}

// countyGEOID builds a stable identifier from the attributes the counties
// layer exposes. The layer does not return a county FIPS, so the state code
// plus name stands in; names are unique within a state.
func countyGEOID(stateFIPS, name string) string {
	return fmt.Sprintf("%s/%s", stateFIPS, name)
}
