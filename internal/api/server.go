// Package api serves the dashboard, the JSON API, and the operational
// endpoints over a single HTTP mux.
package api

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Pegasus1106/Ecohealth/internal/geocode"
	"github.com/Pegasus1106/Ecohealth/internal/metrics"
	"github.com/Pegasus1106/Ecohealth/internal/models"
	"github.com/Pegasus1106/Ecohealth/internal/recommend"
	"github.com/Pegasus1106/Ecohealth/internal/sharecard"
	"github.com/Pegasus1106/Ecohealth/internal/store"
	"github.com/Pegasus1106/Ecohealth/internal/weather"
)

// Default location shown before the visitor picks one.
const (
	defaultCity    = "Mumbai"
	defaultState   = "Maharashtra"
	defaultCountry = "India"
)

const lookupFailedMessage = "Unable to find coordinates for the specified location. Please check the spelling and try again."

// Geocoder resolves a place name to coordinates. A nil result with a
// nil error means the place matched nothing.
type Geocoder interface {
	Lookup(ctx context.Context, city, state, country string) (*geocode.Coordinates, error)
}

// WeatherService supplies current conditions and the derived series.
type WeatherService interface {
	Current(ctx context.Context, lat, lon float64) weather.Conditions
	HourlySeries(lat float64, current weather.Conditions) []weather.HourlyPoint
	Forecast(ctx context.Context, lat, lon float64) []weather.ForecastDay
	LastWeek(ctx context.Context, lat, lon float64, current weather.Conditions) []weather.DailySummary
	Trend(lat float64, current weather.Conditions) []weather.TrendPoint
}

// Recommender generates Markdown health advice. A nil Recommender
// leaves only the rule-based fallback.
type Recommender interface {
	Generate(ctx context.Context, location string, tempC, aqiValue float64) (string, error)
}

// WelcomeSender delivers the welcome email after a subscription.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, sub models.Subscriber) error
}

type Server struct {
	store       *store.Store
	geo         Geocoder
	weather     WeatherService
	recommender Recommender
	welcome     WelcomeSender
	cards       *sharecard.Cache
	port        string
	loc         *time.Location
	tmpl        *template.Template
}

// NewServer wires the HTTP layer. recommender and welcome may be nil
// when the corresponding credentials are not configured.
func NewServer(st *store.Store, geo Geocoder, ws WeatherService, recommender Recommender, welcome WelcomeSender, cards *sharecard.Cache, port string, loc *time.Location) *Server {
	return &Server{
		store:       st,
		geo:         geo,
		weather:     ws,
		recommender: recommender,
		welcome:     welcome,
		cards:       cards,
		port:        port,
		loc:         loc,
		tmpl:        newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.instrument("index", s.handleIndex))
	mux.HandleFunc("/trends", s.instrument("trends", s.handleTrends))
	mux.HandleFunc("/subscribe", s.instrument("subscribe", s.handleSubscribe))
	mux.HandleFunc("/unsubscribe", s.instrument("unsubscribe", s.handleUnsubscribe))
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/og-image.png", s.instrument("og-image", s.handleOGImage))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/partials/current", s.instrument("partial-current", s.handleCurrentPartial))
	mux.HandleFunc("/partials/forecast", s.instrument("partial-forecast", s.handleForecastPartial))
	mux.HandleFunc("/partials/lastweek", s.instrument("partial-lastweek", s.handleLastWeekPartial))
	mux.HandleFunc("/api/current", s.instrument("api-current", s.handleAPICurrent))
	mux.HandleFunc("/api/history", s.instrument("api-history", s.handleAPIHistory))
	mux.HandleFunc("/api/forecast", s.instrument("api-forecast", s.handleAPIForecast))
	mux.HandleFunc("/api/lastweek", s.instrument("api-lastweek", s.handleAPILastWeek))
	mux.HandleFunc("/api/trend", s.instrument("api-trend", s.handleAPITrend))
	mux.HandleFunc("/api/recommendations", s.instrument("api-recommendations", s.handleAPIRecommendations))
	mux.HandleFunc("/api/subscribers/count", s.handleAPISubscriberCount)
	mux.HandleFunc("/api/subscribe", s.handleAPISubscribe)
	mux.HandleFunc("/api/unsubscribe", s.handleAPIUnsubscribe)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// locationFromQuery reads city/state/country parameters, falling back
// to the default location when none are given.
func locationFromQuery(r *http.Request) (city, state, country string) {
	q := r.URL.Query()
	city = strings.TrimSpace(q.Get("city"))
	state = strings.TrimSpace(q.Get("state"))
	country = strings.TrimSpace(q.Get("country"))
	if city == "" && state == "" && country == "" {
		return defaultCity, defaultState, defaultCountry
	}
	return city, state, country
}

// resolve geocodes the request's location. The bool reports whether a
// usable coordinate was found; failures have already been written to w.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*geocode.Coordinates, string, bool) {
	city, state, country := locationFromQuery(r)
	place := geocode.Query(city, state, country)

	coords, err := s.geo.Lookup(r.Context(), city, state, country)
	if err != nil {
		log.Printf("api: geocode %q: %v", place, err)
		http.Error(w, "geocoding failed", http.StatusBadGateway)
		return nil, place, false
	}
	if coords == nil {
		http.Error(w, lookupFailedMessage, http.StatusNotFound)
		return nil, place, false
	}
	return coords, place, true
}

// dashboardData assembles everything the index page needs. Geocoding
// failures surface as a page-level error instead of an HTTP error so
// the form stays usable.
func (s *Server) dashboardData(ctx context.Context, r *http.Request) *DashboardData {
	city, state, country := locationFromQuery(r)
	data := &DashboardData{
		City:    city,
		State:   state,
		Country: country,
		Place:   geocode.Query(city, state, country),
	}

	if msg := r.URL.Query().Get("msg"); msg != "" {
		data.Flash = &Flash{Success: r.URL.Query().Get("ok") == "1", Message: msg}
	}

	coords, err := s.geo.Lookup(ctx, city, state, country)
	if err != nil {
		log.Printf("api: geocode %q: %v", data.Place, err)
		data.Err = lookupFailedMessage
		return data
	}
	if coords == nil {
		data.Err = lookupFailedMessage
		return data
	}

	current := s.weather.Current(ctx, coords.Lat, coords.Lon)
	data.Current = s.currentView(current, data.Place)
	data.Hourly = s.chartData(s.weather.HourlySeries(coords.Lat, current))
	data.Forecast = forecastRows(s.weather.Forecast(ctx, coords.Lat, coords.Lon))
	data.LastWeek = lastWeekRows(s.weather.LastWeek(ctx, coords.Lat, coords.Lon, current))
	data.Advice, data.AdviceSource = s.adviceFor(ctx, data.Place, current.Temperature, current.AQI)
	return data
}

// adviceFor prefers the AI recommender and falls back to rule-based
// advice when it is unavailable or fails.
func (s *Server) adviceFor(ctx context.Context, place string, tempC, aqiValue float64) (text, source string) {
	if s.recommender != nil {
		text, err := s.recommender.Generate(ctx, place, tempC, aqiValue)
		if err == nil {
			metrics.RecommendationsTotal.WithLabelValues("openai").Inc()
			return text, "openai"
		}
		log.Printf("api: ai recommendations for %q failed, using rules: %v", place, err)
	}
	metrics.RecommendationsTotal.WithLabelValues("rules").Inc()
	return recommend.RuleBased(place, tempC, aqiValue), "rules"
}
