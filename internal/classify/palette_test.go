package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPalettes(t *testing.T) {
	ps := DefaultPalettes()
	names := ps.Names()
	assert.Equal(t, []string{"Blues", "Greens", "Oranges", "Purples", "Reds", "Viridis"}, names)

	reds, err := ps.Get("Reds")
	require.NoError(t, err)
	assert.Equal(t, "#fee5d9", reds.Colors[0])
	assert.Equal(t, "#a50f15", reds.Colors[4])
}

func TestGetUnknownPalette(t *testing.T) {
	_, err := DefaultPalettes().Get("Sepia")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownPalette))
}

func TestLoadPalettesMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palettes.yaml")
	doc := `
palettes:
  - name: Corporate
    colors: ["#111111", "#333333", "#555555", "#777777", "#999999"]
    no_data: "#ffffff"
  - name: Reds
    colors: ["#000001", "#000002", "#000003", "#000004", "#000005"]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	ps, err := LoadPalettes(path)
	require.NoError(t, err)

	corp, err := ps.Get("Corporate")
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", corp.NoData)

	// Same name overrides the built-in.
	reds, err := ps.Get("Reds")
	require.NoError(t, err)
	assert.Equal(t, "#000001", reds.Colors[0])

	// Untouched built-ins survive the merge.
	_, err = ps.Get("Blues")
	assert.NoError(t, err)
}

func TestLoadPalettesRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palettes.yaml")
	doc := `
palettes:
  - name: Short
    colors: ["#111111", "#333333"]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := LoadPalettes(path)
	assert.Error(t, err)
}

func TestLoadPalettesMissingFile(t *testing.T) {
	_, err := LoadPalettes(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestColorFor(t *testing.T) {
	pal, err := DefaultPalettes().Get("Blues")
	require.NoError(t, err)

	result := Result{
		Method:      Quantile,
		Assignments: map[string]int{"a": 0, "b": 4},
	}
	assert.Equal(t, pal.Colors[0], result.ColorFor("a", pal))
	assert.Equal(t, pal.Colors[4], result.ColorFor("b", pal))
	assert.Equal(t, NoDataColor, result.ColorFor("missing", pal))

	custom := pal
	custom.NoData = "#123456"
	assert.Equal(t, "#123456", result.ColorFor("missing", custom))

	empty := Result{Empty: true, Assignments: map[string]int{"a": 2}}
	assert.Equal(t, NoDataColor, empty.ColorFor("a", pal))
}
