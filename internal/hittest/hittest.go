// Package hittest resolves cursor positions to the county polygon beneath
// them. A bounding-box R-tree pre-filter keeps hover cost independent of the
// total vertex count; only candidates whose box contains the cursor get the
// exact ray-cast test.
package hittest

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/chloropleth-cli/internal/source"
)

// pointExtent pads the degenerate query rectangle around the cursor.
const pointExtent = 1e-9

type item struct {
	idx  int
	rect *rtreego.Rect
}

func (it *item) Bounds() *rtreego.Rect {
	return it.rect
}

// Index is an immutable spatial index over one displayed county set.
// Build one per frame so inset counties never shadow the primary frame.
type Index struct {
	tree    *rtreego.Rtree
	records []source.CountyRecord
}

// NewIndex builds the index. Record order is preserved: when polygons
// overlap in violation of the source's guarantee, the first record in input
// order wins deterministically.
func NewIndex(records []source.CountyRecord) (*Index, error) {
	tree := rtreego.NewTree(2, 25, 50)
	for i, rec := range records {
		if rec.Geometry == nil {
			continue
		}
		b := rec.Geometry.Bounds()
		lengths := []float64{
			maxf(b.Max(0)-b.Min(0), pointExtent),
			maxf(b.Max(1)-b.Min(1), pointExtent),
		}
		rect, err := rtreego.NewRect(rtreego.Point{b.Min(0), b.Min(1)}, lengths)
		if err != nil {
			return nil, eris.Wrapf(err, "hittest: index %s", rec.GEOID)
		}
		tree.Insert(&item{idx: i, rect: rect})
	}
	return &Index{tree: tree, records: records}, nil
}

// Resolve returns the county containing the cursor position (in geographic
// plot coordinates), or nil when no polygon contains it.
func (ix *Index) Resolve(x, y float64) *source.CountyRecord {
	rect, err := rtreego.NewRect(rtreego.Point{x, y}, []float64{pointExtent, pointExtent})
	if err != nil {
		return nil
	}

	hits := ix.tree.SearchIntersect(rect)
	if len(hits) == 0 {
		return nil
	}

	candidates := make([]int, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, h.(*item).idx)
	}
	sort.Ints(candidates)

	for _, idx := range candidates {
		if containsPoint(ix.records[idx].Geometry, x, y) {
			return &ix.records[idx]
		}
	}
	return nil
}

// containsPoint tests a multipolygon: inside the outer ring of some polygon
// and not inside any of that polygon's holes.
func containsPoint(mp *geom.MultiPolygon, x, y float64) bool {
	if mp == nil {
		return false
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !pointInRing(poly.LinearRing(0), x, y) {
			continue
		}
		inHole := false
		for r := 1; r < poly.NumLinearRings(); r++ {
			if pointInRing(poly.LinearRing(r), x, y) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// pointInRing is the even-odd ray cast against one ring.
func pointInRing(ring *geom.LinearRing, x, y float64) bool {
	flat := ring.FlatCoords()
	n := len(flat) / 2
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := flat[i*2], flat[i*2+1]
		xj, yj := flat[j*2], flat[j*2+1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
