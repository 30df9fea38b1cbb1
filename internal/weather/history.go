package weather

import (
	"math"
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

// diurnalDeviation is the temperature offset from the daily anchor for
// each hour of day: predawn trough, mid-afternoon peak.
var diurnalDeviation = [24]float64{
	-2.5, -2.8, -3.0, -3.0, -2.8, -2.2, // 00-05
	-1.2, 0.0, 1.0, 2.0, 2.8, 3.4, // 06-11
	3.8, 4.0, 4.0, 3.6, 3.0, 2.2, // 12-17
	1.2, 0.4, -0.4, -1.0, -1.6, -2.1, // 18-23
}

// aqiHourFactor scales air quality by time of day: elevated during the
// morning and evening rush, reduced midday and overnight.
func aqiHourFactor(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9:
		return 1.3
	case hour >= 16 && hour <= 19:
		return 1.3
	case hour >= 11 && hour <= 15:
		return 0.8
	case hour >= 22 || hour <= 5:
		return 0.8
	default:
		return 1.0
	}
}

// isWarmSeason reports whether the month falls in the hemisphere's warm
// season: June through September in the north, December through March
// in the south.
func isWarmSeason(lat float64, month time.Month) bool {
	if lat >= 0 {
		return month >= time.June && month <= time.September
	}
	return month == time.December || month <= time.March
}

// climatologicalTemp estimates a plausible temperature from the
// latitude band when the observed value is unusable.
func climatologicalTemp(lat float64, month time.Month) float64 {
	warm := isWarmSeason(lat, month)
	switch abs := math.Abs(lat); {
	case abs < 23.5:
		return 28
	case abs < 66.5:
		if warm {
			return 18
		}
		return 8
	default:
		if warm {
			return 5
		}
		return -10
	}
}

// HourlySeries synthesizes the trailing 24 hours around the current
// observation: exactly 24 hourly points marked IsLast24h, oldest first,
// plus one trailing point at the anchor time carrying the live values.
func (s *Service) HourlySeries(lat float64, current Conditions) []HourlyPoint {
	now := s.now().In(s.loc)

	baseTemp := current.Temperature
	if math.IsNaN(baseTemp) || baseTemp <= -50 || baseTemp >= 50 {
		baseTemp = climatologicalTemp(lat, now.Month())
	}
	baseAQI := current.AQI
	if math.IsNaN(baseAQI) {
		baseAQI = DefaultAQI
	}
	baseAQI = aqi.Clamp(baseAQI)

	anchorDev := diurnalDeviation[now.Hour()]
	points := make([]HourlyPoint, 0, 25)
	for i := 24; i >= 1; i-- {
		t := now.Add(-time.Duration(i) * time.Hour)
		hour := t.In(s.loc).Hour()
		points = append(points, HourlyPoint{
			Time:        t,
			Temperature: baseTemp + diurnalDeviation[hour] - anchorDev + s.randFloat(-0.5, 0.5),
			AQI:         aqi.Clamp(baseAQI * aqiHourFactor(hour) * s.randFloat(0.9, 1.1)),
			IsLast24h:   true,
		})
	}
	points = append(points, HourlyPoint{
		Time:        now,
		Temperature: current.Temperature,
		AQI:         baseAQI,
		IsLast24h:   false,
	})
	return points
}
