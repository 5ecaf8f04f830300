package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Client implements domain.WeatherProvider using the OpenWeatherMap
// current weather API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// CurrentWeather fetches the latest observation at lat/lon.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 4, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', 4, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	start := time.Now()
	w, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		c.logger.Warn("weather lookup failed", "error", err, "lat", lat, "lon", lon)
		return domain.Weather{}, err
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return w, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Weather, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Weather{}, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, body)
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		return domain.Weather{}, fmt.Errorf("decode response: %w", err)
	}
	if owm.Main == nil {
		return domain.Weather{}, fmt.Errorf("decode response: missing main block")
	}

	w := domain.Weather{
		Temperature: owm.Main.Temp,
		Humidity:    owm.Main.Humidity,
		Pressure:    owm.Main.Pressure,
		CloudCover:  owm.Clouds.All,
		Rainfall:    owm.Rain.OneHour,
		ObservedAt:  time.Unix(owm.Dt, 0).UTC(),
	}
	if w.Rainfall == 0 {
		w.Rainfall = owm.Rain.ThreeHours
	}
	if len(owm.Weather) > 0 {
		w.Description = owm.Weather[0].Description
	}
	return w, nil
}

// OpenWeatherMap API response types.

type response struct {
	Main    *mainBlock  `json:"main"`
	Clouds  cloudsBlock `json:"clouds"`
	Rain    rainBlock   `json:"rain"`
	Weather []condition `json:"weather"`
	Dt      int64       `json:"dt"`
	Name    string      `json:"name"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
	Pressure float64 `json:"pressure"`
}

type cloudsBlock struct {
	All float64 `json:"all"`
}

type rainBlock struct {
	OneHour    float64 `json:"1h"`
	ThreeHours float64 `json:"3h"`
}

type condition struct {
	Description string `json:"description"`
}
