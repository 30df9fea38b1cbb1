package api

import (
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
	"github.com/Pegasus1106/Ecohealth/internal/weather"
)

// CurrentView is the current-conditions card on the dashboard.
type CurrentView struct {
	Place      string
	Conditions weather.Conditions
	TempF      float64
	AQILabel   string
	AQIColor   string
	Observed   string
}

// ChartData feeds the 24-hour chart. The final point is the upcoming
// hour and is drawn separately.
type ChartData struct {
	Labels []string
	Temps  []float64
	AQIs   []float64
}

// ForecastRow is one day of the 7-day outlook table.
type ForecastRow struct {
	Date    string
	TempMin float64
	TempMax float64
	TempAvg float64
	AQIMin  float64
	AQIMax  float64
	AQIAvg  float64
}

// LastWeekRow is one day of the trailing-week table.
type LastWeekRow struct {
	Date         string
	TempMin      float64
	TempMax      float64
	TempMean     float64
	HumidityMean float64
	AQIAvg       float64
}

// Flash is a one-shot result banner carried across a redirect.
type Flash struct {
	Success bool
	Message string
}

// DashboardData is everything the index page renders.
type DashboardData struct {
	City    string
	State   string
	Country string
	Place   string
	Err     string

	Current      *CurrentView
	Hourly       *ChartData
	Forecast     []ForecastRow
	LastWeek     []LastWeekRow
	Advice       string
	AdviceSource string
	Flash        *Flash
}

// TrendData is the seasonal trend page payload.
type TrendData struct {
	City    string
	State   string
	Country string
	Place   string
	Err     string

	Labels []string
	Temps  []float64
	AQIs   []float64
}

// UnsubscribePage drives both the confirm form and the result view.
type UnsubscribePage struct {
	Email   string
	Done    bool
	Success bool
	Message string
}

func (s *Server) currentView(c weather.Conditions, place string) *CurrentView {
	return &CurrentView{
		Place:      place,
		Conditions: c,
		TempF:      aqi.CelsiusToFahrenheit(c.Temperature),
		AQILabel:   aqi.Label(c.AQI),
		AQIColor:   aqi.Color(c.AQI),
		Observed:   c.ObservedAt.In(s.loc).Format("Jan 2, 3:04 PM"),
	}
}

func (s *Server) chartData(points []weather.HourlyPoint) *ChartData {
	data := &ChartData{
		Labels: make([]string, 0, len(points)),
		Temps:  make([]float64, 0, len(points)),
		AQIs:   make([]float64, 0, len(points)),
	}
	for _, p := range points {
		data.Labels = append(data.Labels, p.Time.In(s.loc).Format("3 PM"))
		data.Temps = append(data.Temps, p.Temperature)
		data.AQIs = append(data.AQIs, p.AQI)
	}
	return data
}

func forecastRows(days []weather.ForecastDay) []ForecastRow {
	rows := make([]ForecastRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, ForecastRow{
			Date:    d.Date.Format("2006-01-02"),
			TempMin: d.TempMin,
			TempMax: d.TempMax,
			TempAvg: d.TempAvg,
			AQIMin:  d.AQIMin,
			AQIMax:  d.AQIMax,
			AQIAvg:  d.AQIAvg,
		})
	}
	return rows
}

func lastWeekRows(days []weather.DailySummary) []LastWeekRow {
	rows := make([]LastWeekRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, LastWeekRow{
			Date:         d.Date.Format("2006-01-02"),
			TempMin:      d.TempMin,
			TempMax:      d.TempMax,
			TempMean:     d.TempMean,
			HumidityMean: d.HumidityMean,
			AQIAvg:       d.AQIAvg,
		})
	}
	return rows
}

// JSON API response shapes. Keys follow the original snake_case wire
// format so existing consumers keep working.

type currentResponse struct {
	Location            string    `json:"location"`
	Temperature         float64   `json:"temperature"`
	TemperatureApparent float64   `json:"temperature_apparent"`
	Humidity            float64   `json:"humidity"`
	WindSpeed           float64   `json:"wind_speed"`
	PrecipProbability   float64   `json:"precipitation_probability"`
	CloudCover          float64   `json:"cloud_cover"`
	Pressure            float64   `json:"pressure"`
	Visibility          float64   `json:"visibility"`
	AQI                 float64   `json:"aqi"`
	AQILabel            string    `json:"aqi_label"`
	AQIColor            string    `json:"aqi_color"`
	PM25                float64   `json:"pm25"`
	PM10                float64   `json:"pm10"`
	Source              string    `json:"source"`
	ObservedAt          time.Time `json:"observed_at"`
}

func newCurrentResponse(place string, c weather.Conditions) currentResponse {
	return currentResponse{
		Location:            place,
		Temperature:         c.Temperature,
		TemperatureApparent: c.ApparentTemperature,
		Humidity:            c.Humidity,
		WindSpeed:           c.WindSpeed,
		PrecipProbability:   c.PrecipProbability,
		CloudCover:          c.CloudCover,
		Pressure:            c.Pressure,
		Visibility:          c.Visibility,
		AQI:                 c.AQI,
		AQILabel:            aqi.Label(c.AQI),
		AQIColor:            aqi.Color(c.AQI),
		PM25:                c.PM25,
		PM10:                c.PM10,
		Source:              c.Source,
		ObservedAt:          c.ObservedAt,
	}
}

type historyPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	AQI         float64   `json:"aqi"`
	IsLast24h   bool      `json:"is_last_24h"`
}

type forecastDayResponse struct {
	Date    string  `json:"date"`
	TempMin float64 `json:"temp_min"`
	TempMax float64 `json:"temp_max"`
	TempAvg float64 `json:"temp_avg"`
	AQIMin  float64 `json:"aqi_min"`
	AQIMax  float64 `json:"aqi_max"`
	AQIAvg  float64 `json:"aqi_avg"`
}

type lastWeekDayResponse struct {
	Date         string  `json:"date"`
	TempMin      float64 `json:"temp_min"`
	TempMax      float64 `json:"temp_max"`
	TempMean     float64 `json:"temp_mean"`
	HumidityMean float64 `json:"humidity_mean"`
	AQIAvg       float64 `json:"aqi_avg"`
}

type trendPointResponse struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	AQI         float64 `json:"aqi"`
}

type recommendationsResponse struct {
	Location        string `json:"location"`
	Recommendations string `json:"recommendations"`
	Source          string `json:"source"`
}

type subscriptionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type subscribeRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type unsubscribeRequest struct {
	Email string `json:"email"`
}

type subscriberCountResponse struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status     string            `json:"status"`
	Database   string            `json:"database"`
	Newsletter *NewsletterHealth `json:"newsletter,omitempty"`
	Errors     []string          `json:"errors,omitempty"`
}

// NewsletterHealth reports the most recent newsletter run.
type NewsletterHealth struct {
	LastRun  time.Time `json:"last_run"`
	Status   string    `json:"status"`
	AgeHours int       `json:"age_hours"`
	Stale    bool      `json:"stale"`
}
