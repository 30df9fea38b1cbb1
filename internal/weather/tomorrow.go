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

// TomorrowClient fetches realtime conditions from the Tomorrow.io v4 API.
type TomorrowClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewTomorrowClient(apiKey string) *TomorrowClient {
	return &TomorrowClient{
		apiKey:     apiKey,
		baseURL:    "https://api.tomorrow.io",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TomorrowClient) Name() string { return "tomorrowio" }

type tomorrowResponse struct {
	Data struct {
		Time   string `json:"time"`
		Values struct {
			Temperature              *float64 `json:"temperature"`
			Humidity                 *float64 `json:"humidity"`
			WindSpeed                *float64 `json:"windSpeed"`
			PrecipitationProbability *float64 `json:"precipitationProbability"`
		} `json:"values"`
	} `json:"data"`
}

// Current fetches realtime conditions. The report counts as usable only
// when temperature, humidity, wind speed, and precipitation probability
// are all present; otherwise the next provider in the chain takes over.
func (c *TomorrowClient) Current(ctx context.Context, lat, lon float64) (*PartialConditions, error) {
	url := fmt.Sprintf("%s/v4/weather/realtime?location=%.4f,%.4f&apikey=%s&units=metric&fields=temperature,humidity,windSpeed,precipitationProbability",
		c.baseURL, lat, lon, c.apiKey)

	start := time.Now()
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("fetch realtime: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("retryable: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch realtime: status %d: %s", resp.StatusCode, string(b)))
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
		metrics.ProviderCallsTotal.WithLabelValues(c.Name(), "realtime", "error").Inc()
		return nil, err
	}
	metrics.ProviderCallsTotal.WithLabelValues(c.Name(), "realtime", "ok").Inc()
	metrics.ProviderLatency.WithLabelValues(c.Name(), "realtime").Observe(time.Since(start).Seconds())

	var data tomorrowResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal realtime: %w", err)
	}

	v := data.Data.Values
	if v.Temperature == nil || v.Humidity == nil || v.WindSpeed == nil || v.PrecipitationProbability == nil {
		return nil, fmt.Errorf("incomplete realtime report")
	}

	return &PartialConditions{
		Temperature:       v.Temperature,
		Humidity:          v.Humidity,
		WindSpeed:         v.WindSpeed,
		PrecipProbability: v.PrecipitationProbability,
		Source:            c.Name(),
	}, nil
}
