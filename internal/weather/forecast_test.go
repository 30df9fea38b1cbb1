package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestForecastGrouping(t *testing.T) {
	day1 := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/data/2.5/forecast"):
			fmt.Fprintf(w, `{"list":[
				{"dt":%d,"main":{"temp":18.0}},
				{"dt":%d,"main":{"temp":24.0}},
				{"dt":%d,"main":{"temp":21.0}},
				{"dt":%d,"main":{"temp":25.0}}
			]}`, day1.Unix(), day1.Add(6*time.Hour).Unix(), day1.Add(9*time.Hour).Unix(), day2.Unix())
		case strings.HasPrefix(r.URL.Path, "/data/2.5/air_pollution/forecast"):
			// Only day one gets air quality data; day two falls back to 50.
			fmt.Fprintf(w, `{"list":[
				{"dt":%d,"components":{"pm2_5":12.0,"pm10":30.0}},
				{"dt":%d,"components":{"pm2_5":35.5,"pm10":30.0}}
			]}`, day1.Unix(), day1.Add(3*time.Hour).Unix())
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	owm := NewOpenWeatherClient("test-key")
	owm.baseURL = srv.URL
	s := newTestService(t, owm, nil)

	days := s.Forecast(context.Background(), 19.07, 72.87)

	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(days))
	}
	if !days[0].Date.Before(days[1].Date) {
		t.Error("days not sorted ascending")
	}

	d1 := days[0]
	if d1.TempMin != 18.0 || d1.TempMax != 24.0 {
		t.Errorf("day1 temp min/max = %v/%v, want 18/24", d1.TempMin, d1.TempMax)
	}
	if d1.TempAvg != 21.0 {
		t.Errorf("day1 TempAvg = %v, want 21", d1.TempAvg)
	}
	// pm2_5 12.0 -> AQI 50, pm2_5 35.5 -> AQI 101 (pm10 30 is lower both times).
	if d1.AQIMin != 50 || d1.AQIMax != 101 {
		t.Errorf("day1 AQI min/max = %v/%v, want 50/101", d1.AQIMin, d1.AQIMax)
	}
	if d1.AQIAvg != 75.5 {
		t.Errorf("day1 AQIAvg = %v, want 75.5", d1.AQIAvg)
	}

	d2 := days[1]
	if d2.AQIMin != 50 || d2.AQIMax != 50 || d2.AQIAvg != 50 {
		t.Errorf("day2 AQI = %v/%v/%v, want 50/50/50 default", d2.AQIMin, d2.AQIMax, d2.AQIAvg)
	}
}

func TestForecastTruncatesToSevenDays(t *testing.T) {
	base := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/data/2.5/forecast"):
			items := make([]string, 0, 9)
			for i := 0; i < 9; i++ {
				items = append(items, fmt.Sprintf(`{"dt":%d,"main":{"temp":20.0}}`, base.AddDate(0, 0, i).Unix()))
			}
			fmt.Fprintf(w, `{"list":[%s]}`, strings.Join(items, ","))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	owm := NewOpenWeatherClient("test-key")
	owm.baseURL = srv.URL
	s := newTestService(t, owm, nil)

	days := s.Forecast(context.Background(), 19.07, 72.87)
	if len(days) != 7 {
		t.Fatalf("len(days) = %d, want 7", len(days))
	}
	for i := 1; i < len(days); i++ {
		if !days[i-1].Date.Before(days[i].Date) {
			t.Errorf("days[%d] %v not after days[%d]", i, days[i].Date, i-1)
		}
	}
}

func TestForecastFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	owm := NewOpenWeatherClient("test-key")
	owm.baseURL = srv.URL
	s := newTestService(t, owm, nil)

	days := s.Forecast(context.Background(), 19.07, 72.87)

	if len(days) != 7 {
		t.Fatalf("len(days) = %d, want 7", len(days))
	}
	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if !days[0].Date.Equal(tomorrow) {
		t.Errorf("first fallback day = %v, want %v", days[0].Date, tomorrow)
	}
	for i, d := range days {
		if d.TempMin != 20.0 || d.TempMax != 25.0 || d.TempAvg != 22.5 {
			t.Errorf("day %d temps = %v/%v/%v, want 20/25/22.5", i, d.TempMin, d.TempMax, d.TempAvg)
		}
		if d.AQIMin != 45 || d.AQIMax != 55 || d.AQIAvg != 50 {
			t.Errorf("day %d AQI = %v/%v/%v, want 45/55/50", i, d.AQIMin, d.AQIMax, d.AQIAvg)
		}
	}
}
