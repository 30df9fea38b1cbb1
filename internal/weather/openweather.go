package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Pegasus1106/Ecohealth/internal/metrics"
)

// OpenWeatherClient talks to the OpenWeatherMap 2.5 APIs. It serves two
// roles: fallback provider for current conditions and the sole source
// for air pollution and the 5-day/3-hour forecast.
type OpenWeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenWeatherClient(apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:     apiKey,
		baseURL:    "https://api.openweathermap.org",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OpenWeatherClient) Name() string { return "openweathermap" }

// get runs a GET with retry on rate limiting and server errors.
func (c *OpenWeatherClient) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	start := time.Now()
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("fetch %s: %w", endpoint, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("retryable: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", endpoint, resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(c.Name(), endpoint, "error").Inc()
		return nil, err
	}
	metrics.ProviderCallsTotal.WithLabelValues(c.Name(), endpoint, "ok").Inc()
	metrics.ProviderLatency.WithLabelValues(c.Name(), endpoint).Observe(time.Since(start).Seconds())
	return body, nil
}

type owmCurrentResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches current conditions. OpenWeatherMap reports
// temperature, humidity, and wind only; the remaining fields stay nil
// for ApplyDefaults to fill.
func (c *OpenWeatherClient) Current(ctx context.Context, lat, lon float64) (*PartialConditions, error) {
	url := fmt.Sprintf("%s/data/2.5/weather?lat=%.4f&lon=%.4f&appid=%s&units=metric", c.baseURL, lat, lon, c.apiKey)
	body, err := c.get(ctx, "weather", url)
	if err != nil {
		return nil, err
	}

	var data owmCurrentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal weather: %w", err)
	}
	if data.Main.Temp == nil {
		return nil, fmt.Errorf("incomplete weather report")
	}

	return &PartialConditions{
		Temperature: data.Main.Temp,
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
		Source:      c.Name(),
	}, nil
}

type owmComponents struct {
	PM25 *float64 `json:"pm2_5"`
	PM10 *float64 `json:"pm10"`
}

type owmAirResponse struct {
	List []struct {
		Dt         int64         `json:"dt"`
		Components owmComponents `json:"components"`
	} `json:"list"`
}

// AirQuality returns the current PM2.5 and PM10 concentrations.
// A missing pollutant comes back as -1.
func (c *OpenWeatherClient) AirQuality(ctx context.Context, lat, lon float64) (pm25, pm10 float64, err error) {
	url := fmt.Sprintf("%s/data/2.5/air_pollution?lat=%.4f&lon=%.4f&appid=%s", c.baseURL, lat, lon, c.apiKey)
	body, err := c.get(ctx, "air_pollution", url)
	if err != nil {
		return 0, 0, err
	}

	var data owmAirResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, 0, fmt.Errorf("unmarshal air_pollution: %w", err)
	}
	if len(data.List) == 0 {
		return 0, 0, fmt.Errorf("empty air_pollution report")
	}

	pm25, pm10 = data.List[0].Components.PMValues()
	return pm25, pm10, nil
}

// ForecastItem is one 3-hour step of the 5-day forecast.
type ForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

type owmForecastResponse struct {
	List []ForecastItem `json:"list"`
}

// Forecast fetches the 5-day/3-hour temperature forecast.
func (c *OpenWeatherClient) Forecast(ctx context.Context, lat, lon float64) ([]ForecastItem, error) {
	url := fmt.Sprintf("%s/data/2.5/forecast?lat=%.4f&lon=%.4f&appid=%s&units=metric", c.baseURL, lat, lon, c.apiKey)
	body, err := c.get(ctx, "forecast", url)
	if err != nil {
		return nil, err
	}

	var data owmForecastResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal forecast: %w", err)
	}
	if len(data.List) == 0 {
		return nil, fmt.Errorf("empty forecast report")
	}
	return data.List, nil
}

// AirForecastItem is one hourly step of the air pollution forecast.
type AirForecastItem struct {
	Dt         int64         `json:"dt"`
	Components owmComponents `json:"components"`
}

// AirQualityForecast fetches hourly forecast pollutant concentrations.
func (c *OpenWeatherClient) AirQualityForecast(ctx context.Context, lat, lon float64) ([]AirForecastItem, error) {
	url := fmt.Sprintf("%s/data/2.5/air_pollution/forecast?lat=%.4f&lon=%.4f&appid=%s", c.baseURL, lat, lon, c.apiKey)
	body, err := c.get(ctx, "air_pollution_forecast", url)
	if err != nil {
		return nil, err
	}

	var data struct {
		List []AirForecastItem `json:"list"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal air_pollution forecast: %w", err)
	}
	return data.List, nil
}

// PMValues converts optional components to the (-1 = missing) convention.
func (c owmComponents) PMValues() (pm25, pm10 float64) {
	pm25, pm10 = -1, -1
	if c.PM25 != nil {
		pm25 = *c.PM25
	}
	if c.PM10 != nil {
		pm10 = *c.PM10
	}
	return pm25, pm10
}
