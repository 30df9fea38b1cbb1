package api

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/geocode"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := s.dashboardData(r.Context(), r)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("template error: %v", err)
	}
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	city, state, country := locationFromQuery(r)
	data := &TrendData{
		City:    city,
		State:   state,
		Country: country,
		Place:   geocode.Query(city, state, country),
	}

	coords, err := s.geo.Lookup(r.Context(), city, state, country)
	switch {
	case err != nil:
		log.Printf("api: geocode %q: %v", data.Place, err)
		data.Err = lookupFailedMessage
	case coords == nil:
		data.Err = lookupFailedMessage
	default:
		current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)
		for _, p := range s.weather.Trend(coords.Lat, current) {
			data.Labels = append(data.Labels, p.Date.Format("Jan 2"))
			data.Temps = append(data.Temps, p.Temperature)
			data.AQIs = append(data.AQIs, p.AQI)
		}
	}

	if err := s.tmpl.ExecuteTemplate(w, "trends.html", data); err != nil {
		log.Printf("template error: %v", err)
	}
}

// handleSubscribe processes the newsletter form and redirects back to
// the dashboard with a flash message. A failed welcome email never
// fails the subscription.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	city := strings.TrimSpace(r.FormValue("city"))
	state := strings.TrimSpace(r.FormValue("state"))
	country := strings.TrimSpace(r.FormValue("country"))

	if name == "" || email == "" {
		s.redirectWithFlash(w, r, city, state, country, false, "Please provide both name and email address.")
		return
	}

	result, err := s.store.Subscribe(name, email, city, state, country)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if result.Success {
		s.sendWelcome(r.Context(), email)
	}
	s.redirectWithFlash(w, r, city, state, country, result.Success, result.Message)
}

func (s *Server) sendWelcome(ctx context.Context, email string) {
	if s.welcome == nil {
		return
	}
	sub, err := s.store.GetSubscriber(email)
	if err != nil || sub == nil {
		log.Printf("api: load subscriber %s for welcome email: %v", email, err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.welcome.SendWelcome(ctx, *sub); err != nil {
		log.Printf("api: welcome email to %s: %v", email, err)
	}
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, city, state, country string, ok bool, msg string) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	if state != "" {
		q.Set("state", state)
	}
	if country != "" {
		q.Set("country", country)
	}
	q.Set("msg", msg)
	if ok {
		q.Set("ok", "1")
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	page := &UnsubscribePage{}

	if r.Method == http.MethodPost {
		result, err := s.store.Unsubscribe(r.FormValue("email"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		page.Done = true
		page.Success = result.Success
		page.Message = result.Message
	} else {
		page.Email = strings.TrimSpace(r.URL.Query().Get("email"))
	}

	if err := s.tmpl.ExecuteTemplate(w, "unsubscribe.html", page); err != nil {
		log.Printf("template error: %v", err)
	}
}

func (s *Server) handleCurrentPartial(w http.ResponseWriter, r *http.Request) {
	coords, place, ok := s.resolve(w, r)
	if !ok {
		return
	}
	current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)
	if err := s.tmpl.ExecuteTemplate(w, "current.html", s.currentView(current, place)); err != nil {
		log.Printf("template error: %v", err)
	}
}

func (s *Server) handleForecastPartial(w http.ResponseWriter, r *http.Request) {
	coords, _, ok := s.resolve(w, r)
	if !ok {
		return
	}
	rows := forecastRows(s.weather.Forecast(r.Context(), coords.Lat, coords.Lon))
	if err := s.tmpl.ExecuteTemplate(w, "forecast.html", rows); err != nil {
		log.Printf("template error: %v", err)
	}
}

func (s *Server) handleLastWeekPartial(w http.ResponseWriter, r *http.Request) {
	coords, _, ok := s.resolve(w, r)
	if !ok {
		return
	}
	current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)
	rows := lastWeekRows(s.weather.LastWeek(r.Context(), coords.Lat, coords.Lon, current))
	if err := s.tmpl.ExecuteTemplate(w, "lastweek.html", rows); err != nil {
		log.Printf("template error: %v", err)
	}
}
