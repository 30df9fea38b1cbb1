package weather

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

// Provider supplies current conditions for a coordinate. Providers are
// tried in order; the first success wins.
type Provider interface {
	Name() string
	Current(ctx context.Context, lat, lon float64) (*PartialConditions, error)
}

// Service orchestrates the provider chain and synthesizes the derived
// series. Every upstream endpoint sits behind its own circuit breaker
// so a flapping provider short-circuits to the next one.
type Service struct {
	providers        []Provider
	providerBreakers []*gobreaker.CircuitBreaker
	owm              *OpenWeatherClient
	meteo            *OpenMeteoClient
	loc              *time.Location

	airBreaker        *gobreaker.CircuitBreaker
	forecastBreaker   *gobreaker.CircuitBreaker
	archiveBreaker    *gobreaker.CircuitBreaker
	airHistoryBreaker *gobreaker.CircuitBreaker

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// NewService builds the orchestrator. providers is the ordered current-
// conditions chain; owm additionally serves air quality and forecasts,
// meteo serves the historical archive.
func NewService(providers []Provider, owm *OpenWeatherClient, meteo *OpenMeteoClient, loc *time.Location) *Service {
	s := &Service{
		providers:         providers,
		owm:               owm,
		meteo:             meteo,
		loc:               loc,
		airBreaker:        newBreaker("openweathermap-air"),
		forecastBreaker:   newBreaker("openweathermap-forecast"),
		archiveBreaker:    newBreaker("openmeteo-archive"),
		airHistoryBreaker: newBreaker("openmeteo-air-history"),
		rnd:               rand.New(rand.NewSource(time.Now().UnixNano())),
		now:               time.Now,
	}
	for _, p := range providers {
		s.providerBreakers = append(s.providerBreakers, newBreaker(p.Name()))
	}
	return s
}

// Location returns the timezone the service groups days in.
func (s *Service) Location() *time.Location { return s.loc }

// Current fetches current conditions and air quality. It never fails:
// whatever no provider could supply is filled with defaults, so the
// result is always fully populated.
func (s *Service) Current(ctx context.Context, lat, lon float64) Conditions {
	var partial PartialConditions
	for i, p := range s.providers {
		out, err := s.providerBreakers[i].Execute(func() (interface{}, error) {
			return p.Current(ctx, lat, lon)
		})
		if err != nil {
			log.Printf("weather: %s current failed: %v", p.Name(), err)
			continue
		}
		partial = *(out.(*PartialConditions))
		break
	}

	if s.owm != nil {
		out, err := s.airBreaker.Execute(func() (interface{}, error) {
			pm25, pm10, err := s.owm.AirQuality(ctx, lat, lon)
			if err != nil {
				return nil, err
			}
			return [2]float64{pm25, pm10}, nil
		})
		if err != nil {
			log.Printf("weather: air quality fetch failed: %v", err)
		} else {
			pm := out.([2]float64)
			partial.AQI = ptr(aqi.FromComponents(pm[0], pm[1]))
			if pm[0] >= 0 {
				partial.PM25 = ptr(pm[0])
			}
			if pm[1] >= 0 {
				partial.PM10 = ptr(pm[1])
			}
		}
	}

	return ApplyDefaults(partial, s.now().In(s.loc))
}

// randFloat returns a uniform value in [lo, hi). The shared generator
// is guarded because handlers call the synthesis paths concurrently.
func (s *Service) randFloat(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rnd.Float64()*(hi-lo)
}
