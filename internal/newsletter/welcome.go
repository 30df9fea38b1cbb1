package newsletter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Pegasus1106/Ecohealth/internal/models"
)

type welcomeData struct {
	Name           string
	Date           string
	LocationCity   string
	India          reportSection
	Global         reportSection
	UnsubscribeURL string
}

type reportSection struct {
	Overview  string
	Rows      []reportRow
	TempRange string
	AQIRange  string
}

type reportRow struct {
	City        string
	Temperature float64
	AQI         float64
	Conditions  string
}

// composeWelcome renders the welcome email with a sample report built
// from the smaller city lists.
func (s *Service) composeWelcome(ctx context.Context, sub models.Subscriber) (subject, body string, err error) {
	india := s.gatherCities(ctx, reportIndiaCities)
	global := s.gatherCities(ctx, reportGlobalCities)

	data := welcomeData{
		Name:         sub.Name,
		Date:         s.now().In(s.loc).Format("02 January, 2006"),
		LocationCity: "your area",
		India: reportSectionFor(india,
			"Latest weather conditions across major Indian cities.",
			"Weather data for India is currently unavailable."),
		Global: reportSectionFor(global,
			"Current weather conditions in major cities around the world.",
			"Global weather data is currently unavailable."),
		UnsubscribeURL: s.unsubscribeURL(sub.Email),
	}
	if sub.LocationCity.Valid && sub.LocationCity.String != "" {
		data.LocationCity = sub.LocationCity.String
	}
	// Nothing gathered at all reads as a transient outage rather than
	// two empty reports.
	if len(india) == 0 && len(global) == 0 {
		data.India.Overview = "Weather data for India is currently being updated."
		data.Global.Overview = "Global weather data is currently being updated."
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "welcome.html", data); err != nil {
		return "", "", fmt.Errorf("rendering welcome email: %w", err)
	}
	return "Welcome to IcoHealth Weather Newsletter!", buf.String(), nil
}

func reportSectionFor(cities []cityWeather, overview, unavailable string) reportSection {
	sec := reportSection{
		Overview:  overview,
		TempRange: "Data unavailable",
		AQIRange:  "Data unavailable",
	}
	if len(cities) == 0 {
		sec.Overview = unavailable
		return sec
	}

	minTemp, maxTemp := cities[0].Current.Temperature, cities[0].Current.Temperature
	minAQI, maxAQI := cities[0].Current.AQI, cities[0].Current.AQI
	for _, cw := range cities {
		c := cw.Current
		sec.Rows = append(sec.Rows, reportRow{
			City:        cw.Key,
			Temperature: c.Temperature,
			AQI:         c.AQI,
			Conditions:  "Partly Cloudy", // no sky-state source yet
		})
		if c.Temperature < minTemp {
			minTemp = c.Temperature
		}
		if c.Temperature > maxTemp {
			maxTemp = c.Temperature
		}
		if c.AQI < minAQI {
			minAQI = c.AQI
		}
		if c.AQI > maxAQI {
			maxAQI = c.AQI
		}
	}
	sec.TempRange = fmt.Sprintf("%.1f°C to %.1f°C", minTemp, maxTemp)
	sec.AQIRange = fmt.Sprintf("%.0f to %.0f", minAQI, maxAQI)
	return sec
}
