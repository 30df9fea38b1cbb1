package weather

import (
	"context"
	"log"
	"time"
)

// LastWeek summarizes the seven days before today, oldest first. Daily
// temperature and humidity come from the Open-Meteo archive; daily AQI
// comes from the air quality archive where available and is otherwise
// fabricated around the current reading. Today is never included.
func (s *Service) LastWeek(ctx context.Context, lat, lon float64, current Conditions) []DailySummary {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	start := today.AddDate(0, 0, -7)
	end := today.AddDate(0, 0, -1)

	archiveByDate := make(map[string]ArchiveDay)
	out, err := s.archiveBreaker.Execute(func() (interface{}, error) {
		return s.meteo.Archive(ctx, lat, lon, start, end)
	})
	if err != nil {
		log.Printf("weather: archive fetch failed: %v", err)
	} else {
		for _, day := range out.([]ArchiveDay) {
			archiveByDate[day.Date] = day
		}
	}

	dailyAQI := make(map[string]float64)
	aqiOut, err := s.airHistoryBreaker.Execute(func() (interface{}, error) {
		return s.meteo.DailyAQI(ctx, lat, lon, start, end)
	})
	if err != nil {
		log.Printf("weather: air quality history fetch failed: %v", err)
	} else {
		dailyAQI = aqiOut.(map[string]float64)
	}

	summaries := make([]DailySummary, 0, 7)
	for i := 7; i >= 1; i-- {
		date := today.AddDate(0, 0, -i)
		key := date.Format("2006-01-02")

		summary := s.fabricatedDay(date, current)
		if day, ok := archiveByDate[key]; ok {
			if day.TempMin != nil {
				summary.TempMin = *day.TempMin
			}
			if day.TempMax != nil {
				summary.TempMax = *day.TempMax
			}
			if day.TempMean != nil {
				summary.TempMean = *day.TempMean
			}
			if day.HumidityMean != nil {
				summary.HumidityMean = *day.HumidityMean
			}
		}
		if v, ok := dailyAQI[key]; ok {
			summary.AQIAvg = v
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// fabricatedDay invents a plausible summary around the current
// conditions for days the archive could not cover.
func (s *Service) fabricatedDay(date time.Time, current Conditions) DailySummary {
	mean := current.Temperature + s.randFloat(-1.5, 1.5)
	return DailySummary{
		Date:         date,
		TempMin:      mean - 2 - s.randFloat(0, 2),
		TempMax:      mean + 2 + s.randFloat(0, 2),
		TempMean:     mean,
		HumidityMean: clampF(current.Humidity+s.randFloat(-8, 8), 0, 100),
		AQIAvg:       clampF(current.AQI+s.randFloat(-15, 15), 10, 300),
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
