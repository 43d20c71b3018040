package source

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/chloropleth-cli/internal/region"
)

// Shapefile reads county records from a local TIGER/Line county shapefile,
// an offline alternative to the TIGERweb service. Population comes from a
// joined numeric attribute column (TIGER geometry files carry none).
type Shapefile struct {
	// Path to the .shp file.
	Path string
	// PopulationField names the attribute column holding population.
	// Defaults to POP100. A missing column yields zero populations.
	PopulationField string
}

var _ GeometrySource = (*Shapefile)(nil)

// States is not provided by the county shapefile; region membership comes
// from the static tables instead.
func (s *Shapefile) States(ctx context.Context) ([]region.StateRecord, error) {
	return nil, eris.New("source: shapefile source has no state layer")
}

// Counties reads the shapefile and returns records for the requested states.
func (s *Shapefile) Counties(ctx context.Context, stateFIPS []string) ([]CountyRecord, error) {
	reader, err := shp.Open(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open shapefile %s", s.Path)
	}
	defer func() { _ = reader.Close() }()

	popField := s.PopulationField
	if popField == "" {
		popField = "POP100"
	}

	stateIdx := fieldIndex(reader, "STATEFP")
	countyIdx := fieldIndex(reader, "COUNTYFP")
	nameIdx := fieldIndex(reader, "NAME")
	popIdx := fieldIndex(reader, popField)
	if stateIdx < 0 || nameIdx < 0 {
		return nil, eris.New("source: required shapefile fields (STATEFP, NAME) not found")
	}

	wanted := make(map[string]bool, len(stateFIPS))
	for _, f := range stateFIPS {
		wanted[f] = true
	}

	log := zap.L().With(zap.String("component", "source.shapefile"))

	var records []CountyRecord
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "source: read shapefile")
		}
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			continue
		}

		fips := strings.TrimSpace(reader.Attribute(stateIdx))
		if !wanted[fips] {
			continue
		}
		name := strings.TrimSpace(reader.Attribute(nameIdx))

		mp, err := shapeToMultiPolygon(poly)
		if err != nil {
			return nil, err
		}
		if mp == nil {
			log.Warn("skipping county with empty geometry", zap.String("name", name))
			continue
		}

		geoid := countyGEOID(fips, name)
		if countyIdx >= 0 {
			geoid = fips + strings.TrimSpace(reader.Attribute(countyIdx))
		}

		var pop int64
		if popIdx >= 0 {
			pop = parsePopulation(reader.Attribute(popIdx))
		}

		records = append(records, CountyRecord{
			GEOID:      geoid,
			Name:       name,
			StateFIPS:  fips,
			Population: pop,
			Frame:      region.FrameForState(fips),
			Geometry:   mp,
		})
	}

	log.Info("shapefile counties read", zap.Int("count", len(records)))
	return records, nil
}

// fieldIndex returns the index of a named field, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// parsePopulation parses a numeric attribute, tolerating blanks.
func parsePopulation(raw string) int64 {
	var n int64
	for _, ch := range strings.TrimSpace(raw) {
		if ch < '0' || ch > '9' {
			return 0
		}
		n = n*10 + int64(ch-'0')
	}
	return n
}

// shapeToMultiPolygon converts a shapefile polygon to a multipolygon,
// grouping parts by winding: clockwise parts open a new polygon, counter-
// clockwise parts are holes in the preceding one.
func shapeToMultiPolygon(p *shp.Polygon) (*geom.MultiPolygon, error) {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil, nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon

	flush := func() error {
		if current != nil && current.NumLinearRings() > 0 {
			if err := mp.Push(current); err != nil {
				return eris.Wrap(err, "source: push polygon")
			}
		}
		current = nil
		return nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		if ringArea(flat) < 0 || current == nil {
			if err := flush(); err != nil {
				return nil, err
			}
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			return nil, eris.Wrap(err, "source: push ring")
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if mp.NumPolygons() == 0 {
		return nil, nil
	}
	return mp, nil
}

// ringArea is the shoelace area of a flat XY ring; negative = clockwise.
func ringArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[i*2]*flat[j*2+1] - flat[j*2]*flat[i*2+1]
	}
	return sum / 2
}
