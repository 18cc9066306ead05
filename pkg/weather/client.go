package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

// ErrUnavailable is returned when the NASA POWER API cannot deliver
// usable climate data.
var ErrUnavailable = errors.New("weather data unavailable")

// nasaParameters are the agroclimatology variables requested from NASA
// POWER.
var nasaParameters = []string{
	"T2M",               // temperature at 2m (°C)
	"T2M_MAX",           // maximum temperature
	"T2M_MIN",           // minimum temperature
	"PRECTOTCORR",       // precipitation (mm/day)
	"RH2M",              // relative humidity at 2m (%)
	"ALLSKY_SFC_SW_DWN", // solar radiation (MJ/m²/day)
	"WS2M",              // wind speed at 2m (m/s)
}

// Observation aggregates a period of daily NASA POWER data into the
// climate summary the yield model consumes.
type Observation struct {
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	PeriodStart        string  `json:"period_start"`
	PeriodEnd          string  `json:"period_end"`
	TempAvg            float64 `json:"temp_avg"`
	TempMin            float64 `json:"temp_min"`
	TempMax            float64 `json:"temp_max"`
	TotalPrecipitation float64 `json:"total_precipitation"`
	AvgPrecipitation   float64 `json:"avg_precipitation"`
	Humidity           float64 `json:"humidity"`
	SolarRadiation     float64 `json:"solar_radiation"`
	WindSpeed          float64 `json:"wind_speed"`
	Source             string  `json:"data_source"`
}

// Client fetches climate data from the NASA POWER point API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a NASA POWER API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// pointResponse mirrors the NASA POWER JSON layout. Daily values can be
// null or the -999 missing-data sentinel.
type pointResponse struct {
	Properties struct {
		Parameter map[string]map[string]*float64 `json:"parameter"`
	} `json:"properties"`
}

// RecentWeather fetches and aggregates daily data for the trailing
// daysBack window. The window ends five days in the past because NASA
// publishes with a delay.
func (c *Client) RecentWeather(ctx context.Context, latitude, longitude float64, daysBack int) (*Observation, error) {
	end := time.Now().AddDate(0, 0, -5)
	start := end.AddDate(0, 0, -daysBack)
	return c.Weather(ctx, latitude, longitude, start.Format("20060102"), end.Format("20060102"))
}

// Weather fetches and aggregates daily data for an explicit date range
// in YYYYMMDD format.
func (c *Client) Weather(ctx context.Context, latitude, longitude float64, startDate, endDate string) (*Observation, error) {
	params := url.Values{}
	params.Set("parameters", strings.Join(nasaParameters, ","))
	params.Set("community", "AG")
	params.Set("latitude", fmt.Sprintf("%f", latitude))
	params.Set("longitude", fmt.Sprintf("%f", longitude))
	params.Set("start", startDate)
	params.Set("end", endDate)
	params.Set("format", "JSON")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API returned status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var parsed pointResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse weather response: %w", err)
	}

	series := parsed.Properties.Parameter
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: response contains no parameter data", ErrUnavailable)
	}

	obs := &Observation{
		Latitude:    latitude,
		Longitude:   longitude,
		PeriodStart: startDate,
		PeriodEnd:   endDate,
		Source:      "NASA POWER API",
	}

	var ok bool
	if obs.TempAvg, ok = seriesMean(series["T2M"]); !ok {
		return nil, fmt.Errorf("%w: no valid temperature readings", ErrUnavailable)
	}
	obs.TempMax, _ = seriesMax(series["T2M_MAX"])
	obs.TempMin, _ = seriesMin(series["T2M_MIN"])
	obs.TotalPrecipitation, _ = seriesSum(series["PRECTOTCORR"])
	obs.AvgPrecipitation, _ = seriesMean(series["PRECTOTCORR"])
	obs.Humidity, _ = seriesMean(series["RH2M"])
	obs.SolarRadiation, _ = seriesMean(series["ALLSKY_SFC_SW_DWN"])
	obs.WindSpeed, _ = seriesMean(series["WS2M"])

	return obs, nil
}

// validValues filters out nulls and the -999 missing-data sentinel.
func validValues(daily map[string]*float64) []float64 {
	values := make([]float64, 0, len(daily))
	for _, v := range daily {
		if v != nil && *v > -900 {
			values = append(values, *v)
		}
	}
	return values
}

func seriesMean(daily map[string]*float64) (float64, bool) {
	values := validValues(daily)
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func seriesSum(daily map[string]*float64) (float64, bool) {
	values := validValues(daily)
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum, true
}

func seriesMax(daily map[string]*float64) (float64, bool) {
	values := validValues(daily)
	if len(values) == 0 {
		return 0, false
	}
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best, true
}

func seriesMin(daily map[string]*float64) (float64, bool) {
	values := validValues(daily)
	if len(values) == 0 {
		return 0, false
	}
	best := values[0]
	for _, v := range values[1:] {
		if v < best {
			best = v
		}
	}
	return best, true
}
