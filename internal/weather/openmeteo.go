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

// OpenMeteoClient reads historical daily weather and air quality from
// the Open-Meteo archive APIs. No API key required.
type OpenMeteoClient struct {
	archiveURL string
	airURL     string
	httpClient *http.Client
}

func NewOpenMeteoClient() *OpenMeteoClient {
	return &OpenMeteoClient{
		archiveURL: "https://archive-api.open-meteo.com",
		airURL:     "https://air-quality-api.open-meteo.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OpenMeteoClient) Name() string { return "openmeteo" }

func (c *OpenMeteoClient) get(ctx context.Context, endpoint, url string) ([]byte, error) {
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

// ArchiveDay is one day of archived weather. Nil fields mean the
// archive had no reading for that day.
type ArchiveDay struct {
	Date         string // "2006-01-02"
	TempMin      *float64
	TempMax      *float64
	TempMean     *float64
	HumidityMean *float64
}

type archiveResponse struct {
	Daily struct {
		Time         []string   `json:"time"`
		TempMin      []*float64 `json:"temperature_2m_min"`
		TempMax      []*float64 `json:"temperature_2m_max"`
		TempMean     []*float64 `json:"temperature_2m_mean"`
		HumidityMean []*float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

// Archive fetches daily min/max/mean temperature and mean humidity for
// the inclusive date range.
func (c *OpenMeteoClient) Archive(ctx context.Context, lat, lon float64, start, end time.Time) ([]ArchiveDay, error) {
	url := fmt.Sprintf("%s/v1/archive?latitude=%.4f&longitude=%.4f&start_date=%s&end_date=%s&daily=temperature_2m_min,temperature_2m_max,temperature_2m_mean,relative_humidity_2m_mean&timezone=auto",
		c.archiveURL, lat, lon, start.Format("2006-01-02"), end.Format("2006-01-02"))
	body, err := c.get(ctx, "archive", url)
	if err != nil {
		return nil, err
	}

	var data archiveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal archive: %w", err)
	}
	if len(data.Daily.Time) == 0 {
		return nil, fmt.Errorf("empty archive report")
	}

	days := make([]ArchiveDay, len(data.Daily.Time))
	for i, date := range data.Daily.Time {
		day := ArchiveDay{Date: date}
		if i < len(data.Daily.TempMin) {
			day.TempMin = data.Daily.TempMin[i]
		}
		if i < len(data.Daily.TempMax) {
			day.TempMax = data.Daily.TempMax[i]
		}
		if i < len(data.Daily.TempMean) {
			day.TempMean = data.Daily.TempMean[i]
		}
		if i < len(data.Daily.HumidityMean) {
			day.HumidityMean = data.Daily.HumidityMean[i]
		}
		days[i] = day
	}
	return days, nil
}

type airHistoryResponse struct {
	Hourly struct {
		Time  []string   `json:"time"`
		USAQI []*float64 `json:"us_aqi"`
	} `json:"hourly"`
}

// DailyAQI fetches hourly US AQI readings for the range and averages
// them per calendar day. Days without any reading are absent from the
// returned map.
func (c *OpenMeteoClient) DailyAQI(ctx context.Context, lat, lon float64, start, end time.Time) (map[string]float64, error) {
	url := fmt.Sprintf("%s/v1/air-quality?latitude=%.4f&longitude=%.4f&hourly=us_aqi&start_date=%s&end_date=%s&timezone=auto",
		c.airURL, lat, lon, start.Format("2006-01-02"), end.Format("2006-01-02"))
	body, err := c.get(ctx, "air_quality_history", url)
	if err != nil {
		return nil, err
	}

	var data airHistoryResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal air quality history: %w", err)
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, ts := range data.Hourly.Time {
		if i >= len(data.Hourly.USAQI) || data.Hourly.USAQI[i] == nil {
			continue
		}
		if len(ts) < 10 {
			continue
		}
		date := ts[:10]
		sums[date] += *data.Hourly.USAQI[i]
		counts[date]++
	}

	daily := make(map[string]float64, len(sums))
	for date, sum := range sums {
		daily[date] = sum / float64(counts[date])
	}
	return daily, nil
}
