// Package region defines the five fixed US regions used to scope county
// loading and display, plus the static state membership tables behind them.
package region

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Region is one of the five fixed groupings of US states.
type Region string

const (
	West      Region = "West"
	Midwest   Region = "Midwest"
	Northeast Region = "Northeast"
	Southeast Region = "Southeast"
	Southwest Region = "Southwest"
)

// All lists every region in display order.
var All = []Region{West, Midwest, Northeast, Southeast, Southwest}

// ErrUnknownRegion is returned when a name does not match any region.
var ErrUnknownRegion = eris.New("region: unknown region")

// Parse resolves a region name (case-sensitive, as displayed) to a Region.
func Parse(name string) (Region, error) {
	for _, r := range All {
		if string(r) == name {
			return r, nil
		}
	}
	return "", eris.Wrapf(ErrUnknownRegion, "%q", name)
}

// Frame identifies which plot frame a state's counties render into. Alaska
// and Hawaii are drawn in auxiliary inset frames rather than the primary
// frame; the data model does not otherwise distinguish them.
type Frame int

const (
	FramePrimary Frame = iota
	FrameAlaska
	FrameHawaii
)

// State FIPS codes that render in auxiliary frames.
const (
	AlaskaFIPS = "02"
	HawaiiFIPS = "15"
)

// FrameForState returns the frame a state's counties belong to.
func FrameForState(stateFIPS string) Frame {
	switch stateFIPS {
	case AlaskaFIPS:
		return FrameAlaska
	case HawaiiFIPS:
		return FrameHawaii
	default:
		return FramePrimary
	}
}

// Extent is a fixed geographic window (degrees) for an auxiliary frame.
type Extent struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

// Fixed inset extents, matching the windows used for on-screen display.
var (
	AlaskaExtent = Extent{MinLon: -190, MaxLon: -125, MinLat: 50, MaxLat: 73}
	HawaiiExtent = Extent{MinLon: -162, MaxLon: -154, MinLat: 18, MaxLat: 23}
)

// State is one member state of a region. Membership is static configuration.
type State struct {
	Name string
	USPS string
	FIPS string
}

// StateRecord is a state-level geometry record from the external source,
// used by the initial region picker.
type StateRecord struct {
	Name     string
	FIPS     string
	Region   Region
	Geometry *geom.MultiPolygon
}

// members maps each region to its member states. FIPS codes are the 2010
// census state codes; Puerto Rico (72) and the USVI (78) are never members.
var members = map[Region][]State{
	West: {
		{"Alaska", "AK", "02"},
		{"California", "CA", "06"},
		{"Colorado", "CO", "08"},
		{"Hawaii", "HI", "15"},
		{"Idaho", "ID", "16"},
		{"Montana", "MT", "30"},
		{"Nevada", "NV", "32"},
		{"Oregon", "OR", "41"},
		{"Utah", "UT", "49"},
		{"Washington", "WA", "53"},
		{"Wyoming", "WY", "56"},
	},
	Midwest: {
		{"Illinois", "IL", "17"},
		{"Indiana", "IN", "18"},
		{"Iowa", "IA", "19"},
		{"Kansas", "KS", "20"},
		{"Michigan", "MI", "26"},
		{"Minnesota", "MN", "27"},
		{"Missouri", "MO", "29"},
		{"Nebraska", "NE", "31"},
		{"North Dakota", "ND", "38"},
		{"Ohio", "OH", "39"},
		{"South Dakota", "SD", "46"},
		{"Wisconsin", "WI", "55"},
	},
	Northeast: {
		{"Connecticut", "CT", "09"},
		{"Delaware", "DE", "10"},
		{"Maine", "ME", "23"},
		{"Maryland", "MD", "24"},
		{"Massachusetts", "MA", "25"},
		{"New Hampshire", "NH", "33"},
		{"New Jersey", "NJ", "34"},
		{"New York", "NY", "36"},
		{"Pennsylvania", "PA", "42"},
		{"Rhode Island", "RI", "44"},
		{"Vermont", "VT", "50"},
	},
	Southeast: {
		{"Alabama", "AL", "01"},
		{"Arkansas", "AR", "05"},
		{"District of Columbia", "DC", "11"},
		{"Florida", "FL", "12"},
		{"Georgia", "GA", "13"},
		{"Kentucky", "KY", "21"},
		{"Louisiana", "LA", "22"},
		{"Mississippi", "MS", "28"},
		{"North Carolina", "NC", "37"},
		{"South Carolina", "SC", "45"},
		{"Tennessee", "TN", "47"},
		{"Virginia", "VA", "51"},
		{"West Virginia", "WV", "54"},
	},
	Southwest: {
		{"Arizona", "AZ", "04"},
		{"New Mexico", "NM", "35"},
		{"Oklahoma", "OK", "40"},
		{"Texas", "TX", "48"},
	},
}

// stateToRegion is the reverse index, built once at init.
var stateToRegion = func() map[string]Region {
	m := make(map[string]Region)
	for r, states := range members {
		for _, s := range states {
			m[s.FIPS] = r
		}
	}
	return m
}()

// States returns the member states of a region in name order.
func (r Region) States() []State {
	states := make([]State, len(members[r]))
	copy(states, members[r])
	return states
}

// StateFIPS returns the sorted FIPS codes of a region's member states.
func (r Region) StateFIPS() []string {
	states := members[r]
	fips := make([]string, 0, len(states))
	for _, s := range states {
		fips = append(fips, s.FIPS)
	}
	sort.Strings(fips)
	return fips
}

// ForStateFIPS returns the region a state belongs to. Every state belongs to
// exactly one region.
func ForStateFIPS(fips string) (Region, bool) {
	r, ok := stateToRegion[fips]
	return r, ok
}
