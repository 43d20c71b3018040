// Package export writes self-contained HTML snapshots of a rendered map.
// The raster is PNG-encoded and embedded as a base64 data URI, so the
// artifact opens in any browser with no companion files.
package export

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrEmptyRaster is returned when there is no pixel data to export.
var ErrEmptyRaster = eris.New("export: empty raster")

// Metadata describes the snapshot for the HTML shell around the image.
type Metadata struct {
	Region      string
	Title       string
	Method      string
	Palette     string
	CountyCount int
	GeneratedAt time.Time
}

var snapshotTmpl = template.Must(template.New("snapshot").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="artifact-id" content="{{.ArtifactID}}">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; background: #fafafa; }
h1 { color: #2c3e50; }
.info { color: #555; margin-bottom: 1em; }
img { border: 1px solid #ccc; background: #fff; max-width: 100%; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="info">
<p>Region: {{.Region}} | Counties: {{.CountyCount}}</p>
<p>Classification: {{.Method}} | Color scheme: {{.Palette}}</p>
<p>Generated: {{.Generated}}</p>
</div>
<img {{.ImageAttr}} alt="{{.Title}}">
</body>
</html>
`))

type templateData struct {
	ArtifactID  string
	Title       string
	Region      string
	Method      string
	Palette     string
	CountyCount int
	Generated   string
	// ImageAttr is the pre-built src attribute. html/template entity-escapes
	// attribute values (+ becomes &#43;) even for template.URL content, which
	// would corrupt the base64 payload, so the whole attribute bypasses the
	// escaper. The payload is base64 we encoded ourselves and cannot contain
	// quotes or angle brackets.
	ImageAttr template.HTMLAttr
}

// Snapshot encodes the raster and writes the HTML document to w. The
// document carries a fresh artifact id so repeated exports are
// distinguishable.
func Snapshot(w io.Writer, img image.Image, meta Metadata) error {
	if img == nil {
		return ErrEmptyRaster
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return ErrEmptyRaster
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return eris.Wrap(err, "export: encode png")
	}

	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	data := templateData{
		ArtifactID:  uuid.NewString(),
		Title:       meta.Title,
		Region:      meta.Region,
		Method:      meta.Method,
		Palette:     meta.Palette,
		CountyCount: meta.CountyCount,
		Generated:   generated.Format("2006-01-02 15:04:05 MST"),
		ImageAttr:   template.HTMLAttr(`src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(buf.Bytes()) + `"`),
	}
	if err := snapshotTmpl.Execute(w, data); err != nil {
		return eris.Wrap(err, "export: render template")
	}
	return nil
}

// SnapshotFile writes the snapshot to a path.
func SnapshotFile(path string, img image.Image, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	if err := Snapshot(f, img, meta); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", path)
	}

	zap.L().Info("snapshot exported",
		zap.String("component", "export"),
		zap.String("path", path),
		zap.String("region", meta.Region))
	return nil
}
