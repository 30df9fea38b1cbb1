package weather

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

type dayAggregate struct {
	temps []float64
	aqis  []float64
}

// Forecast builds the 7-day outlook from the OpenWeatherMap 5-day/3-hour
// forecast plus the hourly air pollution forecast. Days with no air
// quality data default to AQI 50. When the weather forecast itself is
// unavailable the caller still gets a full 7-day fallback.
func (s *Service) Forecast(ctx context.Context, lat, lon float64) []ForecastDay {
	now := s.now().In(s.loc)

	out, err := s.forecastBreaker.Execute(func() (interface{}, error) {
		return s.owm.Forecast(ctx, lat, lon)
	})
	if err != nil {
		log.Printf("weather: forecast fetch failed: %v", err)
		return s.forecastFallback(now)
	}
	items := out.([]ForecastItem)

	groups := make(map[string]*dayAggregate)
	for _, it := range items {
		date := time.Unix(it.Dt, 0).In(s.loc).Format("2006-01-02")
		g, ok := groups[date]
		if !ok {
			g = &dayAggregate{}
			groups[date] = g
		}
		g.temps = append(g.temps, it.Main.Temp)
	}

	airOut, err := s.airBreaker.Execute(func() (interface{}, error) {
		return s.owm.AirQualityForecast(ctx, lat, lon)
	})
	if err != nil {
		log.Printf("weather: air quality forecast fetch failed: %v", err)
	} else {
		for _, it := range airOut.([]AirForecastItem) {
			date := time.Unix(it.Dt, 0).In(s.loc).Format("2006-01-02")
			if g, ok := groups[date]; ok {
				pm25, pm10 := it.Components.PMValues()
				g.aqis = append(g.aqis, aqi.FromComponents(pm25, pm10))
			}
		}
	}

	days := make([]ForecastDay, 0, len(groups))
	for date, g := range groups {
		if len(g.temps) == 0 {
			continue
		}
		d, err := time.ParseInLocation("2006-01-02", date, s.loc)
		if err != nil {
			continue
		}
		aqis := g.aqis
		if len(aqis) == 0 {
			aqis = []float64{DefaultAQI}
		}
		days = append(days, ForecastDay{
			Date:    d,
			TempMin: minOf(g.temps),
			TempMax: maxOf(g.temps),
			TempAvg: meanOf(g.temps),
			AQIMin:  minOf(aqis),
			AQIMax:  maxOf(aqis),
			AQIAvg:  meanOf(aqis),
		})
	}
	if len(days) == 0 {
		return s.forecastFallback(now)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	if len(days) > 7 {
		days = days[:7]
	}
	return days
}

// forecastFallback yields a neutral 7-day outlook starting tomorrow.
func (s *Service) forecastFallback(now time.Time) []ForecastDay {
	days := make([]ForecastDay, 0, 7)
	for i := 1; i <= 7; i++ {
		d := now.AddDate(0, 0, i)
		days = append(days, ForecastDay{
			Date:    time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc),
			TempMin: 20.0,
			TempMax: 25.0,
			TempAvg: 22.5,
			AQIMin:  45,
			AQIMax:  55,
			AQIAvg:  50,
		})
	}
	return days
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func meanOf(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
