package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/chloropleth-cli/internal/classify"
	"github.com/sells-group/chloropleth-cli/internal/projection"
	"github.com/sells-group/chloropleth-cli/internal/region"
	"github.com/sells-group/chloropleth-cli/internal/source"
)

// MapSpec describes one chloropleth composition.
type MapSpec struct {
	Region  region.Region
	Title   string
	Records []source.CountyRecord
	// Classified selects colored fills from Result/Palette; when false,
	// counties draw outline-only.
	Classified bool
	Result     classify.Result
	Palette    classify.Palette
}

// Frames holds the per-frame view transforms of a composed map, for
// translating cursor pixels back to data coordinates.
type Frames struct {
	Primary *Viewport
	Alaska  *Viewport
	Hawaii  *Viewport
}

// At returns the frame and viewport containing a pixel, or nil.
func (f *Frames) At(px, py float64) *Viewport {
	for _, v := range []*Viewport{f.Alaska, f.Hawaii, f.Primary} {
		if v != nil && v.Contains(px, py) {
			return v
		}
	}
	return nil
}

var (
	outlineColor = color.RGBA{A: 255}
	titleColor   = color.RGBA{R: 44, G: 62, B: 80, A: 255}
)

// DrawMap composes the full map: county polygons (classified fills or bare
// outlines), auxiliary frames for the West region, legend, north arrow, and
// scale bar.
func DrawMap(width, height int, spec MapSpec) (*Raster, *Frames, error) {
	if len(spec.Records) == 0 {
		return nil, nil, eris.Errorf("render: no counties to draw for %s", spec.Region)
	}

	frames, err := layoutFrames(width, height, spec)
	if err != nil {
		return nil, nil, err
	}

	raster := NewRaster(width, height, frames.Primary)

	for _, rec := range spec.Records {
		view := frames.Primary
		switch rec.Frame {
		case region.FrameAlaska:
			view = frames.Alaska
		case region.FrameHawaii:
			view = frames.Hawaii
		}
		if view == nil {
			continue
		}
		raster.SetView(view)

		var fill color.Color
		if spec.Classified {
			fill, err = parseHexColor(spec.Result.ColorFor(rec.GEOID, spec.Palette))
			if err != nil {
				return nil, nil, err
			}
		}
		raster.FillPolygon(rec.Geometry, fill, outlineColor)
	}
	raster.SetView(frames.Primary)

	drawInsetBorders(raster, frames)
	drawTitle(raster, width, spec.Title)
	if spec.Classified && !spec.Result.Empty {
		drawLegend(raster, spec)
	}
	drawNorthArrow(raster, spec.Region)
	drawScaleBar(raster, spec.Region)

	return raster, frames, nil
}

// layoutFrames computes the per-frame viewports. West gets the original's
// three-frame layout: primary on top, Alaska and Hawaii insets along the
// bottom with their fixed extents.
func layoutFrames(width, height int, spec MapSpec) (*Frames, error) {
	bbox, err := primaryBounds(spec.Records)
	if err != nil {
		return nil, eris.Wrapf(err, "render: %s", spec.Region)
	}

	frames := &Frames{}
	w, h := float64(width), float64(height)

	if spec.Region == region.West {
		frames.Primary = NewViewport(bbox.Min(0), bbox.Max(0), bbox.Min(1), bbox.Max(1),
			image.Rect(int(0.05*w), int(0.05*h), int(0.95*w), int(0.65*h)))
		frames.Alaska = NewViewport(
			region.AlaskaExtent.MinLon, region.AlaskaExtent.MaxLon,
			region.AlaskaExtent.MinLat, region.AlaskaExtent.MaxLat,
			image.Rect(int(0.30*w), int(0.70*h), int(0.65*w), int(0.95*h)))
		frames.Hawaii = NewViewport(
			region.HawaiiExtent.MinLon, region.HawaiiExtent.MaxLon,
			region.HawaiiExtent.MinLat, region.HawaiiExtent.MaxLat,
			image.Rect(int(0.70*w), int(0.70*h), int(0.95*w), int(0.95*h)))
		return frames, nil
	}

	frames.Primary = NewViewport(bbox.Min(0), bbox.Max(0), bbox.Min(1), bbox.Max(1),
		image.Rect(int(0.05*w), int(0.07*h), int(0.95*w), int(0.95*h)))
	return frames, nil
}

// primaryBounds is the geographic bbox of the primary-frame counties.
func primaryBounds(records []source.CountyRecord) (*geom.Bounds, error) {
	var bounds *geom.Bounds
	for _, rec := range records {
		if rec.Frame != region.FramePrimary || rec.Geometry == nil {
			continue
		}
		b := rec.Geometry.Bounds()
		if bounds == nil {
			bounds = geom.NewBounds(geom.XY)
			bounds.Set(b.Min(0), b.Min(1), b.Max(0), b.Max(1))
		} else {
			bounds.Set(
				math.Min(bounds.Min(0), b.Min(0)), math.Min(bounds.Min(1), b.Min(1)),
				math.Max(bounds.Max(0), b.Max(0)), math.Max(bounds.Max(1), b.Max(1)),
			)
		}
	}
	if bounds == nil {
		return nil, eris.New("no primary-frame geometry")
	}
	return bounds, nil
}

func drawInsetBorders(r *Raster, frames *Frames) {
	for _, v := range []*Viewport{frames.Alaska, frames.Hawaii} {
		if v != nil {
			r.FillRect(v.Rect, nil, outlineColor)
		}
	}
}

func drawTitle(r *Raster, width int, title string) {
	if title == "" {
		return
	}
	r.Text(float64(width/2-r.TextWidth(title)/2), 20, title, titleColor)
}

// drawLegend renders the no-data swatch plus the five class swatches with
// comma-formatted bounds. Anchor varies by region, as on screen.
func drawLegend(r *Raster, spec MapSpec) {
	const (
		swatch = 14
		rowGap = 4
		pad    = 8
	)
	labels := []string{"No Data"}
	colors := []string{classify.NoDataColor}
	if spec.Palette.NoData != "" {
		colors[0] = spec.Palette.NoData
	}
	for i, iv := range spec.Result.Intervals {
		labels = append(labels, fmt.Sprintf("%s - %s", commaInt(iv.Low), commaInt(iv.High)))
		colors = append(colors, spec.Palette.Colors[i])
	}

	widest := 0
	for _, l := range labels {
		if w := r.TextWidth(l); w > widest {
			widest = w
		}
	}
	boxW := pad*2 + swatch + 6 + widest
	boxH := pad*2 + len(labels)*(swatch+rowGap) - rowGap

	bounds := r.Snapshot().Bounds()
	var x0, y0 int
	switch spec.Region {
	case region.Midwest, region.Northeast:
		x0 = bounds.Max.X - boxW - 10
		y0 = bounds.Max.Y - boxH - 40
	case region.West:
		x0 = bounds.Max.X - boxW - 10
		y0 = bounds.Min.Y + 40
	default: // Southwest, Southeast: bottom-left
		x0 = bounds.Min.X + 10
		y0 = bounds.Max.Y - boxH - 10
	}

	r.FillRect(image.Rect(x0, y0, x0+boxW, y0+boxH), color.White, outlineColor)
	for i, label := range labels {
		rowY := y0 + pad + i*(swatch+rowGap)
		c, err := parseHexColor(colors[i])
		if err != nil {
			c = color.RGBA{R: 224, G: 224, B: 224, A: 255}
		}
		r.FillRect(image.Rect(x0+pad, rowY, x0+pad+swatch, rowY+swatch), c, outlineColor)
		r.Text(float64(x0+pad+swatch+6), float64(rowY+swatch-3), label, outlineColor)
	}
}

// drawNorthArrow draws the arrow shaft, head, and N label. Top-right for
// most regions; Southeast and Northeast stack it bottom-right above the
// scale bar.
func drawNorthArrow(r *Raster, reg region.Region) {
	bounds := r.Snapshot().Bounds()
	x := float64(bounds.Max.X - 30)

	var top, bottom float64
	switch reg {
	case region.Southeast, region.Northeast:
		bottom = float64(bounds.Max.Y - 60)
		top = bottom - 30
	default:
		top = float64(bounds.Min.Y + 40)
		bottom = top + 30
	}

	r.Line(x, bottom, x, top, outlineColor)
	r.Line(x, top, x-4, top+8, outlineColor)
	r.Line(x, top, x+4, top+8, outlineColor)
	r.Text(x-3, top-6, "N", outlineColor)
}

// drawScaleBar draws a bar spanning 500 statute miles at the primary
// frame's center latitude, with its label.
func drawScaleBar(r *Raster, reg region.Region) {
	const miles = 500
	v := r.View()
	bounds := r.Snapshot().Bounds()

	centerLat := (v.MinLat + v.MaxLat) / 2
	centerLon := (v.MinLon + v.MaxLon) / 2
	milesPerDegree := projection.GeodesicMiles(centerLon, centerLat, centerLon+1, centerLat)
	if milesPerDegree <= 0 {
		return
	}
	x1, _ := v.ToPixel(centerLon, centerLat)
	x2, _ := v.ToPixel(centerLon+miles/milesPerDegree, centerLat)
	barLen := x2 - x1

	var bx, by float64
	switch reg {
	case region.West:
		bx = float64(bounds.Max.X) - barLen - 40
		by = 0.68 * float64(bounds.Max.Y)
	default:
		bx = float64(bounds.Max.X) - barLen - 40
		by = float64(bounds.Max.Y - 20)
	}

	r.Line(bx, by, bx+barLen, by, outlineColor)
	r.Line(bx, by-4, bx, by+4, outlineColor)
	r.Line(bx+barLen, by-4, bx+barLen, by+4, outlineColor)
	label := fmt.Sprintf("%d miles", miles)
	r.Text(bx+barLen/2-float64(r.TextWidth(label))/2, by-8, label, outlineColor)
}

// parseHexColor parses "#rrggbb".
func parseHexColor(s string) (color.Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return nil, eris.Errorf("render: invalid color %q", s)
	}
	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return nil, eris.Wrapf(err, "render: invalid color %q", s)
	}
	return color.RGBA{
		R: uint8(n >> 16),
		G: uint8(n >> 8),
		B: uint8(n),
		A: 255,
	}, nil
}

// commaInt formats a float as a comma-grouped integer, as in the legend.
func commaInt(v float64) string {
	s := strconv.FormatInt(int64(v), 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, ch := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, ch)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
