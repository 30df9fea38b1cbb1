package weather

import (
	"math"
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

// seasonalOffset estimates how far a month sits from the hemisphere's
// warm-season peak, mapped onto [-5, +5] °C.
func seasonalOffset(lat float64, month time.Month) float64 {
	peak := time.July
	if lat < 0 {
		peak = time.January
	}
	dist := int(month) - int(peak)
	if dist < 0 {
		dist = -dist
	}
	if dist > 6 {
		dist = 12 - dist
	}
	return 5 - float64(dist)*(10.0/6.0)
}

// Trend synthesizes a 180-day series at six-day steps, oldest first,
// anchored to the current reading: a seasonal temperature swing plus
// daily jitter, and AQI scattered around today's value.
func (s *Service) Trend(lat float64, current Conditions) []TrendPoint {
	now := s.now().In(s.loc)

	if math.IsNaN(current.Temperature) || math.IsNaN(current.AQI) {
		return trendFallback(now)
	}

	anchor := seasonalOffset(lat, now.Month())
	points := make([]TrendPoint, 0, 31)
	for i := 180; i >= 0; i -= 6 {
		date := now.AddDate(0, 0, -i)
		points = append(points, TrendPoint{
			Date:        date,
			Temperature: current.Temperature + seasonalOffset(lat, date.Month()) - anchor + s.randFloat(-2, 2),
			AQI:         aqi.Clamp(current.AQI * s.randFloat(0.8, 1.2)),
		})
	}
	return points
}

// trendFallback is the minimal series shown when the anchor reading is
// unusable.
func trendFallback(now time.Time) []TrendPoint {
	return []TrendPoint{
		{Date: now.AddDate(0, 0, -180), Temperature: 20, AQI: 55},
		{Date: now.AddDate(0, 0, -90), Temperature: 24, AQI: 45},
		{Date: now, Temperature: 22, AQI: 50},
	}
}
