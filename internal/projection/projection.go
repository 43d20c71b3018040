// Package projection converts between the spherical Web Mercator plane used
// by the geometry source and geographic WGS84 coordinates used for display
// measurement. All functions are pure and stateless.
package projection

import (
	"math"

	"github.com/rotisserie/eris"
)

// earthRadius is the spherical Web Mercator radius in meters.
const earthRadius = 6378137.0

// maxLat is the latitude at which the Mercator plane is cut off. Beyond it
// the projection diverges; the continental-US domain never approaches it.
const maxLat = 85.051129

// maxMercator is the extent of the square Mercator plane in meters.
var maxMercator = math.Pi * earthRadius

// ErrOutOfDomain indicates input outside the projectable domain. This is a
// contract violation by the caller, not a recoverable data condition.
var ErrOutOfDomain = eris.New("projection: coordinate out of domain")

// ToGeographic converts Web Mercator meters to (lon, lat) degrees.
func ToGeographic(x, y float64) (lon, lat float64, err error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.Abs(x) > maxMercator*(1+1e-9) || math.Abs(y) > maxMercator*(1+1e-9) {
		return 0, 0, eris.Wrapf(ErrOutOfDomain, "mercator (%g, %g)", x, y)
	}
	lon = (x / earthRadius) * (180.0 / math.Pi)
	lat = (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * (180.0 / math.Pi)
	return lon, lat, nil
}

// ToMercator converts (lon, lat) degrees to Web Mercator meters.
func ToMercator(lon, lat float64) (x, y float64, err error) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.Abs(lon) > 180 || math.Abs(lat) > maxLat {
		return 0, 0, eris.Wrapf(ErrOutOfDomain, "geographic (%g, %g)", lon, lat)
	}
	x = lon * (math.Pi / 180.0) * earthRadius
	latRad := lat * (math.Pi / 180.0)
	y = earthRadius * math.Log(math.Tan(math.Pi/4+latRad/2))
	return x, y, nil
}

// GeodesicMiles returns the great-circle distance in statute miles between
// two geographic points. Used for the scale bar.
func GeodesicMiles(lon1, lat1, lon2, lat2 float64) float64 {
	const earthRadiusMiles = 3958.7613
	toRad := math.Pi / 180.0
	phi1, phi2 := lat1*toRad, lat2*toRad
	dPhi := (lat2 - lat1) * toRad
	dLambda := (lon2 - lon1) * toRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
