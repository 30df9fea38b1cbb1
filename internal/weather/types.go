// Package weather fetches current conditions from an ordered chain of
// upstream providers and synthesizes the hourly, weekly, and seasonal
// series the dashboard and newsletter render.
package weather

import (
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

// PartialConditions holds whatever fields a single provider reported.
// A nil field means the provider did not supply it.
type PartialConditions struct {
	Temperature         *float64
	ApparentTemperature *float64
	Humidity            *float64
	WindSpeed           *float64
	PrecipProbability   *float64
	CloudCover          *float64
	Pressure            *float64
	Visibility          *float64
	AQI                 *float64
	PM25                *float64
	PM10                *float64
	Source              string
}

// Conditions is a fully-populated snapshot of current weather and air
// quality. Every field carries a usable value; missing provider data
// has been filled by ApplyDefaults.
type Conditions struct {
	Temperature         float64 // °C
	ApparentTemperature float64 // °C
	Humidity            float64 // percent
	WindSpeed           float64 // km/h
	PrecipProbability   float64 // percent
	CloudCover          float64 // percent
	Pressure            float64 // hPa
	Visibility          float64 // km
	AQI                 float64
	PM25                float64 // µg/m³, 0 when unreported
	PM10                float64 // µg/m³, 0 when unreported
	Source              string
	ObservedAt          time.Time
}

// HourlyPoint is one entry of the synthesized 24-hour series.
type HourlyPoint struct {
	Time        time.Time
	Temperature float64
	AQI         float64
	IsLast24h   bool
}

// ForecastDay aggregates one calendar day of the 7-day outlook.
type ForecastDay struct {
	Date    time.Time
	TempMin float64
	TempMax float64
	TempAvg float64
	AQIMin  float64
	AQIMax  float64
	AQIAvg  float64
}

// DailySummary is one day of the last-week recap.
type DailySummary struct {
	Date         time.Time
	TempMin      float64
	TempMax      float64
	TempMean     float64
	HumidityMean float64
	AQIAvg       float64
}

// TrendPoint is one sample of the 180-day seasonal series.
type TrendPoint struct {
	Date        time.Time
	Temperature float64
	AQI         float64
}

// Default values used when no provider reported a field.
const (
	DefaultTemperature       = 22.0
	DefaultHumidity          = 50.0
	DefaultWindSpeed         = 5.0
	DefaultPrecipProbability = 0.0
	DefaultAQI               = 50.0
	DefaultCloudCover        = 10.0
	DefaultPressure          = 1013.25
	DefaultVisibility        = 10.0
)

// ApplyDefaults converts a provider report into fully-populated
// Conditions. Apparent temperature falls back to the (possibly
// defaulted) air temperature, and AQI is clamped to [1, 500].
func ApplyDefaults(p PartialConditions, observedAt time.Time) Conditions {
	c := Conditions{
		Source:     p.Source,
		ObservedAt: observedAt,
	}
	if c.Source == "" {
		c.Source = "defaults"
	}
	c.Temperature = valueOr(p.Temperature, DefaultTemperature)
	c.ApparentTemperature = valueOr(p.ApparentTemperature, c.Temperature)
	c.Humidity = valueOr(p.Humidity, DefaultHumidity)
	c.WindSpeed = valueOr(p.WindSpeed, DefaultWindSpeed)
	c.PrecipProbability = valueOr(p.PrecipProbability, DefaultPrecipProbability)
	c.CloudCover = valueOr(p.CloudCover, DefaultCloudCover)
	c.Pressure = valueOr(p.Pressure, DefaultPressure)
	c.Visibility = valueOr(p.Visibility, DefaultVisibility)
	c.AQI = aqi.Clamp(valueOr(p.AQI, DefaultAQI))
	c.PM25 = valueOr(p.PM25, 0)
	c.PM10 = valueOr(p.PM10, 0)
	return c
}

func valueOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func ptr(v float64) *float64 { return &v }
