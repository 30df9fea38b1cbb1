package weather

import (
	"math"
	"testing"
	"time"
)

func TestTrendShape(t *testing.T) {
	s := newTestService(t, nil, nil)
	current := ApplyDefaults(PartialConditions{Temperature: ptr(28.0), AQI: ptr(90.0)}, s.now())

	points := s.Trend(19.07, current)

	if len(points) != 31 {
		t.Fatalf("len(points) = %d, want 31", len(points))
	}
	if want := s.now().AddDate(0, 0, -180); !points[0].Date.Equal(want) {
		t.Errorf("first point = %v, want %v", points[0].Date, want)
	}
	if !points[30].Date.Equal(s.now()) {
		t.Errorf("last point = %v, want %v", points[30].Date, s.now())
	}
	for i, p := range points {
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			t.Errorf("point %d not after previous", i)
		}
		if p.AQI < 1 || p.AQI > 500 {
			t.Errorf("point %d AQI = %v, want within [1, 500]", i, p.AQI)
		}
		// Seasonal swing is at most ±10 plus jitter.
		if math.Abs(p.Temperature-current.Temperature) > 13 {
			t.Errorf("point %d temperature = %v, too far from anchor %v", i, p.Temperature, current.Temperature)
		}
		if math.Abs(p.AQI-current.AQI) > current.AQI*0.2+0.001 {
			t.Errorf("point %d AQI = %v, want within 20%% of %v", i, p.AQI, current.AQI)
		}
	}
}

func TestTrendFallback(t *testing.T) {
	s := newTestService(t, nil, nil)
	current := Conditions{Temperature: math.NaN(), AQI: 50}

	points := s.Trend(19.07, current)

	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3 fallback points", len(points))
	}
	if points[2].Temperature != 22 || points[2].AQI != 50 {
		t.Errorf("latest fallback point = %v/%v, want 22/50", points[2].Temperature, points[2].AQI)
	}
	if points[1].Temperature != 24 || points[1].AQI != 45 {
		t.Errorf("mid fallback point = %v/%v, want 24/45", points[1].Temperature, points[1].AQI)
	}
	if points[0].Temperature != 20 || points[0].AQI != 55 {
		t.Errorf("oldest fallback point = %v/%v, want 20/55", points[0].Temperature, points[0].AQI)
	}
}

func TestSeasonalOffset(t *testing.T) {
	tests := []struct {
		name  string
		lat   float64
		month time.Month
		want  float64
	}{
		{"north peak july", 45, time.July, 5},
		{"north trough january", 45, time.January, -5},
		{"south peak january", -35, time.January, 5},
		{"south trough july", -35, time.July, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := seasonalOffset(tt.lat, tt.month); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("seasonalOffset(%v, %v) = %v, want %v", tt.lat, tt.month, got, tt.want)
			}
		})
	}
}
