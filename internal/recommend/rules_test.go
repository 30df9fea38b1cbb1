package recommend

import (
	"strings"
	"testing"
)

func TestTempBandFor(t *testing.T) {
	tests := []struct {
		temp float64
		want TempBand
	}{
		{40, TempExtremeHeat},
		{35, TempExtremeHeat},
		{32, TempHighHeat},
		{27, TempWarm},
		{20, TempModerate},
		{10, TempCool},
		{0, TempCold},
		{-5, TempCold},
		{-15, TempExtremeCold},
	}
	for _, tt := range tests {
		if got := TempBandFor(tt.temp); got != tt.want {
			t.Errorf("TempBandFor(%v) = %q, want %q", tt.temp, got, tt.want)
		}
	}
}

func TestAQIBandFor(t *testing.T) {
	tests := []struct {
		aqi  float64
		want AQIBand
	}{
		{30, AQIGood},
		{50, AQIGood},
		{75, AQIModerate},
		{120, AQIUnhealthySensitive},
		{180, AQIUnhealthy},
		{250, AQIVeryUnhealthy},
		{301, AQIHazardous},
	}
	for _, tt := range tests {
		if got := AQIBandFor(tt.aqi); got != tt.want {
			t.Errorf("AQIBandFor(%v) = %q, want %q", tt.aqi, got, tt.want)
		}
	}
}

func TestRuleBasedHotSmoggyDay(t *testing.T) {
	out := RuleBased("Delhi, Delhi, India", 40, 250)

	if TempBandFor(40) != TempExtremeHeat {
		t.Error("40°C should land in the extreme_heat band")
	}
	if AQIBandFor(250) != AQIVeryUnhealthy {
		t.Error("AQI 250 should land in the very_unhealthy band")
	}
	for _, want := range []string{
		"# Health Recommendations for Delhi, Delhi, India",
		"40.0°C (104.0°F)",
		"## Temperature Precautions (Extreme Heat)",
		"## Air Quality Recommendations (Very Unhealthy)",
		"## General Health Recommendations",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRuleBasedCoversAllBands(t *testing.T) {
	temps := []float64{40, 32, 27, 20, 10, 0, -20}
	aqis := []float64{25, 75, 125, 175, 250, 400}

	for _, temp := range temps {
		for _, a := range aqis {
			out := RuleBased("Testville", temp, a)
			if !strings.Contains(out, "## Temperature Precautions") {
				t.Errorf("RuleBased(%v, %v) missing temperature section", temp, a)
			}
			if !strings.Contains(out, "## Air Quality Recommendations") {
				t.Errorf("RuleBased(%v, %v) missing air quality section", temp, a)
			}
			if !strings.Contains(out, "Individual needs may vary") {
				t.Errorf("RuleBased(%v, %v) missing general footer", temp, a)
			}
		}
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(""); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewGenerator("sk-test"); err != nil {
		t.Errorf("unexpected error with key present: %v", err)
	}
}
