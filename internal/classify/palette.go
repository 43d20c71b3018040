package classify

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// NoDataColor fills counties with no usable attribute value.
const NoDataColor = "#e0e0e0"

// Palette maps class indices to fill colors. Colors run light to dark so
// higher classes read as denser.
type Palette struct {
	Name   string             `yaml:"name"`
	Colors [NumClasses]string `yaml:"colors"`
	NoData string             `yaml:"no_data"`
}

// Built-in sequential palettes (ColorBrewer 5-class ramps plus a
// viridis-style ramp).
var builtins = map[string]Palette{
	"Reds":    {Name: "Reds", Colors: [NumClasses]string{"#fee5d9", "#fcae91", "#fb6a4a", "#de2d26", "#a50f15"}},
	"Blues":   {Name: "Blues", Colors: [NumClasses]string{"#eff3ff", "#bdd7e7", "#6baed6", "#3182bd", "#08519c"}},
	"Greens":  {Name: "Greens", Colors: [NumClasses]string{"#edf8e9", "#bae4b3", "#74c476", "#31a354", "#006d2c"}},
	"Purples": {Name: "Purples", Colors: [NumClasses]string{"#f2f0f7", "#cbc9e2", "#9e9ac8", "#756bb1", "#54278f"}},
	"Oranges": {Name: "Oranges", Colors: [NumClasses]string{"#feedde", "#fdbe85", "#fd8d3c", "#e6550d", "#a63603"}},
	"Viridis": {Name: "Viridis", Colors: [NumClasses]string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}},
}

// ErrUnknownPalette is returned when a name matches no loaded palette.
var ErrUnknownPalette = eris.New("classify: unknown palette")

// Palettes holds the available color schemes.
type Palettes struct {
	byName map[string]Palette
}

// DefaultPalettes returns the built-in schemes.
func DefaultPalettes() *Palettes {
	m := make(map[string]Palette, len(builtins))
	for name, p := range builtins {
		m[name] = p
	}
	return &Palettes{byName: m}
}

// LoadPalettes reads additional schemes from a YAML file and merges them
// over the built-ins (same name wins).
func LoadPalettes(path string) (*Palettes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: read palettes %s", path)
	}

	var doc struct {
		Palettes []Palette `yaml:"palettes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "classify: parse palettes")
	}

	ps := DefaultPalettes()
	for _, p := range doc.Palettes {
		if p.Name == "" {
			return nil, eris.New("classify: palette missing name")
		}
		for _, c := range p.Colors {
			if c == "" {
				return nil, eris.Errorf("classify: palette %s has fewer than %d colors", p.Name, NumClasses)
			}
		}
		ps.byName[p.Name] = p
	}
	return ps, nil
}

// Get returns the named palette.
func (ps *Palettes) Get(name string) (Palette, error) {
	p, ok := ps.byName[name]
	if !ok {
		return Palette{}, eris.Wrapf(ErrUnknownPalette, "%q", name)
	}
	return p, nil
}

// Names lists the available palette names, sorted.
func (ps *Palettes) Names() []string {
	names := make([]string, 0, len(ps.byName))
	for name := range ps.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColorFor returns the fill color for a record under this classification:
// the palette color of its class, or the no-data color when the record has
// no assignment.
func (r Result) ColorFor(geoid string, p Palette) string {
	class, ok := r.Assignments[geoid]
	if !ok || r.Empty {
		if p.NoData != "" {
			return p.NoData
		}
		return NoDataColor
	}
	return p.Colors[class]
}
