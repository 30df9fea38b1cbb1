package newsletter

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
	"github.com/Pegasus1106/Ecohealth/internal/geocode"
	"github.com/Pegasus1106/Ecohealth/internal/models"
	"github.com/Pegasus1106/Ecohealth/internal/weather"
)

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, city, state, country string) (*geocode.Coordinates, error)
}

// WeatherService supplies current conditions and the daily forecast.
type WeatherService interface {
	Current(ctx context.Context, lat, lon float64) weather.Conditions
	Forecast(ctx context.Context, lat, lon float64) []weather.ForecastDay
}

// cityWeather is one tracked city's gathered data for a send run.
type cityWeather struct {
	Key      string
	Current  weather.Conditions
	Forecast []weather.ForecastDay
}

// gatherCities fetches current conditions and forecast for each city.
// Cities that cannot be geocoded are logged and skipped.
func (s *Service) gatherCities(ctx context.Context, cities []City) []cityWeather {
	var out []cityWeather
	for _, c := range cities {
		key := c.Key()
		coords, err := s.geo.Lookup(ctx, c.Name, c.State, c.Country)
		if err != nil {
			log.Printf("newsletter: geocode %s: %v", key, err)
			continue
		}
		if coords == nil {
			log.Printf("newsletter: no coordinates for %s", key)
			continue
		}
		out = append(out, cityWeather{
			Key:      key,
			Current:  s.weather.Current(ctx, coords.Lat, coords.Lon),
			Forecast: s.weather.Forecast(ctx, coords.Lat, coords.Lon),
		})
	}
	return out
}

type highlight struct {
	City  string
	Value float64
}

type highlights struct {
	HighestTemp *highlight
	LowestTemp  *highlight
	BestAQI     *highlight
	WorstAQI    *highlight
}

// summarize picks the extreme cities by current temperature and AQI.
func summarize(cities []cityWeather) *highlights {
	if len(cities) == 0 {
		return nil
	}
	h := &highlights{}
	for _, cw := range cities {
		name := shortName(cw.Key)
		if h.HighestTemp == nil || cw.Current.Temperature > h.HighestTemp.Value {
			h.HighestTemp = &highlight{City: name, Value: cw.Current.Temperature}
		}
		if h.LowestTemp == nil || cw.Current.Temperature < h.LowestTemp.Value {
			h.LowestTemp = &highlight{City: name, Value: cw.Current.Temperature}
		}
		if h.BestAQI == nil || cw.Current.AQI < h.BestAQI.Value {
			h.BestAQI = &highlight{City: name, Value: cw.Current.AQI}
		}
		if h.WorstAQI == nil || cw.Current.AQI > h.WorstAQI.Value {
			h.WorstAQI = &highlight{City: name, Value: cw.Current.AQI}
		}
	}
	return h
}

type digestData struct {
	Name           string
	TodayStr       string
	WeekEndStr     string
	India          *highlights
	Global         *highlights
	Location       *locationSection
	IndiaCities    []cityDetail
	GlobalRows     []globalRow
	UnsubscribeURL string
}

type locationSection struct {
	Place       string
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	AQI         float64
	AQILabel    string
	Days        []forecastRow
}

type forecastRow struct {
	Date string
	Min  float64
	Max  float64
	Avg  float64
	AQI  float64
}

type cityDetail struct {
	Name        string
	Temperature float64
	AQI         float64
	AQILabel    string
	Days        []forecastRow
}

type globalRow struct {
	Name        string
	Temperature float64
	AQI         float64
	WeeklyHigh  float64
	WeeklyLow   float64
}

// composeDigest renders the weekly digest for one subscriber. Shared
// city data is gathered once per run; only the subscriber's own
// location section is fetched here.
func (s *Service) composeDigest(ctx context.Context, sub models.Subscriber, india, global []cityWeather) (subject, body string, err error) {
	now := s.now().In(s.loc)

	data := digestData{
		Name:           sub.Name,
		TodayStr:       now.Format("January 02, 2006"),
		WeekEndStr:     now.AddDate(0, 0, 6).Format("January 02, 2006"),
		India:          summarize(india),
		Global:         summarize(global),
		Location:       s.locationSectionFor(ctx, sub),
		IndiaCities:    cityDetails(india),
		GlobalRows:     globalRows(global),
		UnsubscribeURL: s.unsubscribeURL(sub.Email),
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "digest.html", data); err != nil {
		return "", "", fmt.Errorf("rendering digest: %w", err)
	}
	subject = fmt.Sprintf("Your Weekly Weather Update - %s", now.Format("January 02, 2006"))
	return subject, buf.String(), nil
}

// locationSectionFor builds the personalized section. Subscribers
// without a complete city/state/country location get none.
func (s *Service) locationSectionFor(ctx context.Context, sub models.Subscriber) *locationSection {
	city, state, country := sub.LocationCity.String, sub.LocationState.String, sub.LocationCountry.String
	if city == "" || state == "" || country == "" {
		return nil
	}

	coords, err := s.geo.Lookup(ctx, city, state, country)
	if err != nil {
		log.Printf("newsletter: subscriber location for %s: %v", sub.Email, err)
		return nil
	}
	if coords == nil {
		return nil
	}

	current := s.weather.Current(ctx, coords.Lat, coords.Lon)
	place := strings.ReplaceAll(fmt.Sprintf("%s, %s, %s", city, state, country), ", ,", ",")
	sec := &locationSection{
		Place:       place,
		Temperature: current.Temperature,
		Humidity:    current.Humidity,
		WindSpeed:   current.WindSpeed,
		AQI:         current.AQI,
		AQILabel:    aqi.Label(current.AQI),
	}
	for _, day := range s.weather.Forecast(ctx, coords.Lat, coords.Lon) {
		sec.Days = append(sec.Days, forecastRow{
			Date: day.Date.Format("Mon, Jan 02"),
			Min:  day.TempMin,
			Max:  day.TempMax,
			Avg:  day.TempAvg,
			AQI:  day.AQIAvg,
		})
	}
	return sec
}

// cityDetails trims each city's forecast to five days to keep the
// email compact.
func cityDetails(cities []cityWeather) []cityDetail {
	details := make([]cityDetail, 0, len(cities))
	for _, cw := range cities {
		d := cityDetail{
			Name:        shortName(cw.Key),
			Temperature: cw.Current.Temperature,
			AQI:         cw.Current.AQI,
			AQILabel:    aqi.Label(cw.Current.AQI),
		}
		days := cw.Forecast
		if len(days) > 5 {
			days = days[:5]
		}
		for _, day := range days {
			d.Days = append(d.Days, forecastRow{
				Date: day.Date.Format("Mon, Jan 02"),
				Min:  day.TempMin,
				Max:  day.TempMax,
			})
		}
		details = append(details, d)
	}
	return details
}

func globalRows(cities []cityWeather) []globalRow {
	rows := make([]globalRow, 0, len(cities))
	for _, cw := range cities {
		if len(cw.Forecast) == 0 {
			continue
		}
		high := cw.Forecast[0].TempMax
		low := cw.Forecast[0].TempMin
		for _, day := range cw.Forecast[1:] {
			if day.TempMax > high {
				high = day.TempMax
			}
			if day.TempMin < low {
				low = day.TempMin
			}
		}
		rows = append(rows, globalRow{
			Name:        shortName(cw.Key),
			Temperature: cw.Current.Temperature,
			AQI:         cw.Current.AQI,
			WeeklyHigh:  high,
			WeeklyLow:   low,
		})
	}
	return rows
}
