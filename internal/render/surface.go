// Package render provides the raster rendering surface the CLI composes
// maps onto. The core treats the surface as an external collaborator: it
// only relies on the drawing primitives and the view transform exposed here.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/twpayne/go-geom"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Surface is the drawing contract the map composer needs: filled polygons,
// lines, text, a raster snapshot, and the data<->pixel view transform used
// for the scale bar and for cursor hit testing.
type Surface interface {
	FillPolygon(mp *geom.MultiPolygon, fill, stroke color.Color)
	Line(x1, y1, x2, y2 float64, c color.Color)
	Text(px, py float64, s string, c color.Color)
	Snapshot() image.Image
	DataToPixel(lon, lat float64) (px, py float64)
	PixelToData(px, py float64) (lon, lat float64)
}

// Viewport maps a geographic window onto a pixel rectangle with uniform
// scale (equal aspect), centered within the rectangle.
type Viewport struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
	Rect           image.Rectangle

	scale   float64
	offsetX float64
	offsetY float64
}

// NewViewport fits the geographic window into the pixel rectangle.
func NewViewport(minLon, maxLon, minLat, maxLat float64, rect image.Rectangle) *Viewport {
	v := &Viewport{MinLon: minLon, MaxLon: maxLon, MinLat: minLat, MaxLat: maxLat, Rect: rect}

	lonSpan := maxLon - minLon
	latSpan := maxLat - minLat
	if lonSpan <= 0 {
		lonSpan = 1
	}
	if latSpan <= 0 {
		latSpan = 1
	}
	sx := float64(rect.Dx()) / lonSpan
	sy := float64(rect.Dy()) / latSpan
	v.scale = math.Min(sx, sy)

	// Center the fitted window in the rectangle.
	v.offsetX = float64(rect.Min.X) + (float64(rect.Dx())-lonSpan*v.scale)/2
	v.offsetY = float64(rect.Min.Y) + (float64(rect.Dy())-latSpan*v.scale)/2
	return v
}

// ToPixel converts geographic degrees to pixel coordinates (y grows down).
func (v *Viewport) ToPixel(lon, lat float64) (float64, float64) {
	px := v.offsetX + (lon-v.MinLon)*v.scale
	py := v.offsetY + (v.MaxLat-lat)*v.scale
	return px, py
}

// ToData inverts ToPixel.
func (v *Viewport) ToData(px, py float64) (float64, float64) {
	lon := v.MinLon + (px-v.offsetX)/v.scale
	lat := v.MaxLat - (py-v.offsetY)/v.scale
	return lon, lat
}

// Contains reports whether a pixel lies in the viewport rectangle.
func (v *Viewport) Contains(px, py float64) bool {
	return px >= float64(v.Rect.Min.X) && px < float64(v.Rect.Max.X) &&
		py >= float64(v.Rect.Min.Y) && py < float64(v.Rect.Max.Y)
}

// Raster is an in-memory Surface over an RGBA image.
type Raster struct {
	img  *image.RGBA
	view *Viewport
}

var _ Surface = (*Raster)(nil)

// NewRaster creates a white canvas of the given size with the given view.
func NewRaster(width, height int, view *Viewport) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &Raster{img: img, view: view}
}

// SetView swaps the active view transform (used when drawing into an inset).
func (r *Raster) SetView(view *Viewport) { r.view = view }

// View returns the active view transform.
func (r *Raster) View() *Viewport { return r.view }

// FillPolygon rasterizes a multipolygon under the active view. Outer rings
// and holes wind in opposite directions, so the non-zero winding fill
// leaves holes empty. A nil fill draws outline only.
func (r *Raster) FillPolygon(mp *geom.MultiPolygon, fill, stroke color.Color) {
	if mp == nil {
		return
	}
	bounds := r.img.Bounds()

	if fill != nil {
		z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
		for i := 0; i < mp.NumPolygons(); i++ {
			poly := mp.Polygon(i)
			for ring := 0; ring < poly.NumLinearRings(); ring++ {
				r.addRing(z, poly.LinearRing(ring))
			}
		}
		z.Draw(r.img, bounds, image.NewUniform(fill), image.Point{})
	}

	if stroke != nil {
		for i := 0; i < mp.NumPolygons(); i++ {
			poly := mp.Polygon(i)
			for ring := 0; ring < poly.NumLinearRings(); ring++ {
				r.strokeRing(poly.LinearRing(ring), stroke)
			}
		}
	}
}

func (r *Raster) addRing(z *vector.Rasterizer, ring *geom.LinearRing) {
	flat := ring.FlatCoords()
	n := len(flat) / 2
	if n < 3 {
		return
	}
	px, py := r.view.ToPixel(flat[0], flat[1])
	z.MoveTo(float32(px), float32(py))
	for i := 1; i < n; i++ {
		px, py = r.view.ToPixel(flat[i*2], flat[i*2+1])
		z.LineTo(float32(px), float32(py))
	}
	z.ClosePath()
}

func (r *Raster) strokeRing(ring *geom.LinearRing, c color.Color) {
	flat := ring.FlatCoords()
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		x1, y1 := r.view.ToPixel(flat[i*2], flat[i*2+1])
		x2, y2 := r.view.ToPixel(flat[j*2], flat[j*2+1])
		r.drawPixelLine(x1, y1, x2, y2, c)
	}
}

// Line draws a one-pixel line between two pixel positions.
func (r *Raster) Line(x1, y1, x2, y2 float64, c color.Color) {
	r.drawPixelLine(x1, y1, x2, y2, c)
}

func (r *Raster) drawPixelLine(x1, y1, x2, y2 float64, c color.Color) {
	dx := x2 - x1
	dy := y2 - y1
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		r.img.Set(int(x1+dx*t+0.5), int(y1+dy*t+0.5), c)
	}
}

// Text draws a string with its baseline at the given pixel position.
func (r *Raster) Text(px, py float64, s string, c color.Color) {
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(px), int(py)),
	}
	d.DrawString(s)
}

// TextWidth measures a string in pixels under the surface font.
func (r *Raster) TextWidth(s string) int {
	d := font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}

// FillRect fills an axis-aligned pixel rectangle (legend swatches). A nil
// fill draws the border only.
func (r *Raster) FillRect(rect image.Rectangle, fill, stroke color.Color) {
	if fill != nil {
		draw.Draw(r.img, rect.Intersect(r.img.Bounds()), image.NewUniform(fill), image.Point{}, draw.Src)
	}
	if stroke != nil {
		r.drawPixelLine(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Max.X), float64(rect.Min.Y), stroke)
		r.drawPixelLine(float64(rect.Max.X), float64(rect.Min.Y), float64(rect.Max.X), float64(rect.Max.Y), stroke)
		r.drawPixelLine(float64(rect.Max.X), float64(rect.Max.Y), float64(rect.Min.X), float64(rect.Max.Y), stroke)
		r.drawPixelLine(float64(rect.Min.X), float64(rect.Max.Y), float64(rect.Min.X), float64(rect.Min.Y), stroke)
	}
}

// Snapshot returns the composited raster.
func (r *Raster) Snapshot() image.Image { return r.img }

// DataToPixel converts geographic degrees to pixels under the active view.
func (r *Raster) DataToPixel(lon, lat float64) (float64, float64) {
	return r.view.ToPixel(lon, lat)
}

// PixelToData converts pixels to geographic degrees under the active view.
func (r *Raster) PixelToData(px, py float64) (float64, float64) {
	return r.view.ToData(px, py)
}
