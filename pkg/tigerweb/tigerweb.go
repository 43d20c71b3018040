// Package tigerweb is a client for the Census TIGERweb ArcGIS REST services.
// It fetches state and county polygons with attributes from the State_County
// MapServer and returns geometry as WGS84 go-geom multipolygons.
package tigerweb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/chloropleth-cli/internal/projection"
	"github.com/sells-group/chloropleth-cli/internal/resilience"
)

// Default TIGERweb State_County MapServer layer endpoints.
const (
	DefaultStatesURL   = "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb/State_County/MapServer/54/query"
	DefaultCountiesURL = "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb/State_County/MapServer/55/query"
)

// ErrFetch is the root of all request-level failures from the service.
var ErrFetch = eris.New("tigerweb: fetch failed")

// StateFeature is one state polygon with its attributes.
type StateFeature struct {
	Name     string
	FIPS     string
	Geometry *geom.MultiPolygon
}

// CountyFeature is one county polygon with its attributes.
type CountyFeature struct {
	Name       string
	StateFIPS  string
	Population int64
	Geometry   *geom.MultiPolygon
}

// Options configures a Client.
type Options struct {
	StatesURL   string
	CountiesURL string
	HTTPClient  *http.Client
	// RequestsPerSecond caps the request rate against the service.
	// Zero means no limiting.
	RequestsPerSecond float64
	// Retries is the total attempt count for transient failures.
	// Zero means the default of 3.
	Retries int
}

// Client queries the TIGERweb REST layers.
type Client struct {
	statesURL   string
	countiesURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
	log         *zap.Logger
}

// New creates a Client with the given options.
func New(opts Options) *Client {
	if opts.StatesURL == "" {
		opts.StatesURL = DefaultStatesURL
	}
	if opts.CountiesURL == "" {
		opts.CountiesURL = DefaultCountiesURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 90 * time.Second}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	retry := resilience.DefaultRetryConfig()
	if opts.Retries > 0 {
		retry.MaxAttempts = opts.Retries
	}
	retry.OnRetry = resilience.RetryLogger("tigerweb", "query")
	return &Client{
		statesURL:   opts.StatesURL,
		countiesURL: opts.CountiesURL,
		httpClient:  opts.HTTPClient,
		limiter:     limiter,
		retry:       retry,
		log:         zap.L().With(zap.String("component", "tigerweb")),
	}
}

// States fetches every state polygon with NAME and STATE attributes.
func (c *Client) States(ctx context.Context) ([]StateFeature, error) {
	params := url.Values{
		"where":             {"1=1"},
		"outFields":         {"NAME,STATE"},
		"returnGeometry":    {"true"},
		"geometryPrecision": {"6"},
		"f":                 {"json"},
	}

	resp, err := c.query(ctx, c.statesURL, params)
	if err != nil {
		return nil, err
	}

	states := make([]StateFeature, 0, len(resp.Features))
	for _, f := range resp.Features {
		mp, err := ringsToMultiPolygon(f.Geometry.Rings)
		if err != nil {
			c.log.Warn("skipping state with bad geometry",
				zap.String("name", f.Attributes.Name),
				zap.Error(err),
			)
			continue
		}
		states = append(states, StateFeature{
			Name:     f.Attributes.Name,
			FIPS:     f.Attributes.State,
			Geometry: mp,
		})
	}

	c.log.Info("states fetched", zap.Int("count", len(states)))
	return states, nil
}

// CountiesByState fetches county polygons for the given state FIPS codes,
// one request per state. A state returning zero counties is not an error.
func (c *Client) CountiesByState(ctx context.Context, fipsCodes []string) ([]CountyFeature, error) {
	var counties []CountyFeature
	for _, fips := range fipsCodes {
		params := url.Values{
			"where":             {"STATE = '" + fips + "'"},
			"outFields":         {"NAME,STATE,POP100"},
			"returnGeometry":    {"true"},
			"geometryPrecision": {"2"},
			"f":                 {"json"},
		}

		resp, err := c.query(ctx, c.countiesURL, params)
		if err != nil {
			return nil, eris.Wrapf(err, "state %s", fips)
		}

		for _, f := range resp.Features {
			mp, err := ringsToMultiPolygon(f.Geometry.Rings)
			if err != nil {
				c.log.Warn("skipping county with bad geometry",
					zap.String("name", f.Attributes.Name),
					zap.String("state", fips),
					zap.Error(err),
				)
				continue
			}
			counties = append(counties, CountyFeature{
				Name:       f.Attributes.Name,
				StateFIPS:  f.Attributes.State,
				Population: int64(f.Attributes.Pop100),
				Geometry:   mp,
			})
		}
		c.log.Debug("state counties fetched",
			zap.String("state", fips),
			zap.Int("count", len(resp.Features)),
		)
	}
	return counties, nil
}

// esriResponse is the subset of the ArcGIS query response we consume.
type esriResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Features []struct {
		Attributes struct {
			Name   string  `json:"NAME"`
			State  string  `json:"STATE"`
			Pop100 float64 `json:"POP100"`
		} `json:"attributes"`
		Geometry struct {
			Rings [][][2]float64 `json:"rings"`
		} `json:"geometry"`
	} `json:"features"`
}

// query runs one rate-limited request against the service, retrying
// transient failures with backoff.
func (c *Client) query(ctx context.Context, endpoint string, params url.Values) (*esriResponse, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*esriResponse, error) {
		return c.queryOnce(ctx, endpoint, params)
	})
}

func (c *Client) queryOnce(ctx context.Context, endpoint string, params url.Values) (*esriResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "tigerweb: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "tigerweb: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(ErrFetch, "request: %v", err), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Wrapf(ErrFetch, "status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "tigerweb: read body")
	}

	var parsed esriResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "tigerweb: parse response")
	}
	if parsed.Error != nil {
		return nil, eris.Wrapf(ErrFetch, "service error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	return &parsed, nil
}

// ringsToMultiPolygon converts esri rings (Web Mercator) to a WGS84
// multipolygon. Esri convention: clockwise rings are outer boundaries,
// counterclockwise rings are holes in the preceding outer ring.
func ringsToMultiPolygon(rings [][][2]float64) (*geom.MultiPolygon, error) {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := mp.Push(current); err != nil {
			return eris.Wrap(err, "tigerweb: push polygon")
		}
		current = nil
		return nil
	}

	for _, ring := range rings {
		if len(ring) < 4 {
			continue
		}
		flat := make([]float64, 0, len(ring)*2)
		for _, pt := range ring {
			lon, lat, err := projection.ToGeographic(pt[0], pt[1])
			if err != nil {
				return nil, eris.Wrap(err, "tigerweb: project vertex")
			}
			flat = append(flat, lon, lat)
		}

		lr := geom.NewLinearRingFlat(geom.XY, flat)
		// Clockwise in the projected plane = outer ring.
		if signedArea(flat) < 0 || current == nil {
			if err := flush(); err != nil {
				return nil, err
			}
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(lr); err != nil {
			return nil, eris.Wrap(err, "tigerweb: push ring")
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if mp.NumPolygons() == 0 {
		return nil, eris.New("tigerweb: geometry has no valid rings")
	}
	return mp, nil
}

// signedArea is the shoelace area of a flat XY ring; negative when the ring
// winds clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[i*2]*flat[j*2+1] - flat[j*2]*flat[i*2+1]
	}
	return sum / 2
}
