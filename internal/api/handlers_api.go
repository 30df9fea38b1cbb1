package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// newsletterStaleAfter is how long past the weekly cadence the latest
// run may be before /health reports degraded.
const newsletterStaleAfter = 8 * 24 * time.Hour

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func (s *Server) handleAPICurrent(w http.ResponseWriter, r *http.Request) {
	coords, place, ok := s.resolve(w, r)
	if !ok {
		return
	}
	current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)
	s.writeJSON(w, newCurrentResponse(place, current))
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	coords, _, ok := s.resolve(w, r)
	if !ok {
		return
	}
	current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)
	series := s.weather.HourlySeries(coords.Lat, current)

	points := make([]historyPoint, 0, len(series))
	for _, p := range series {
		points = append(points, historyPoint{
			Time:        p.Time,
			Temperature: p.Temperature,
			AQI:         p.AQI,
			IsLast24h:   p.IsLast24h,
		})
	}
	s.writeJSON(w, points)
}

func (s *Server) handleAPIForecast(w http.ResponseWriter, r *http.Request) {
	coords, _, ok := s.resolve(w, r)
	if !ok {
		return
	}
	days := s.weather.Forecast(r.Context(), coords.Lat, coords.Lon)

	out := make([]forecastDayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, forecastDayResponse{
			Date:    d.Date.Format("2006-01-02"),
			TempMin: d.TempMin,
			TempMax: d.TempMax,
			TempAvg: d.TempAvg,
			AQIMin:  d.AQIMin,
			AQIMax:  d.AQIMax,
			AQIAvg:  d.AQIAvg,
		})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleAPILastWeek(w http.ResponseWriter, r *http.Request) {
	coords, _, ok := s.resolve(w, r)
	if !ok {
		return
	}
	current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)
	days := s.weather.LastWeek(r.Context(), coords.Lat, coords.Lon, current)

	out := make([]lastWeekDayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, lastWeekDayResponse{
			Date:         d.Date.Format("2006-01-02"),
			TempMin:      d.TempMin,
			TempMax:      d.TempMax,
			TempMean:     d.TempMean,
			HumidityMean: d.HumidityMean,
			AQIAvg:       d.AQIAvg,
		})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleAPITrend(w http.ResponseWriter, r *http.Request) {
	coords, _, ok := s.resolve(w, r)
	if !ok {
		return
	}
	current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)

	out := make([]trendPointResponse, 0, 180)
	for _, p := range s.weather.Trend(coords.Lat, current) {
		out = append(out, trendPointResponse{
			Date:        p.Date.Format("2006-01-02"),
			Temperature: p.Temperature,
			AQI:         p.AQI,
		})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleAPIRecommendations(w http.ResponseWriter, r *http.Request) {
	coords, place, ok := s.resolve(w, r)
	if !ok {
		return
	}
	current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)
	text, source := s.adviceFor(r.Context(), place, current.Temperature, current.AQI)

	s.writeJSON(w, recommendationsResponse{
		Location:        place,
		Recommendations: text,
		Source:          source,
	})
}

func (s *Server) handleAPISubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := s.store.Subscribe(req.Name, req.Email, req.City, req.State, req.Country)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if result.Success {
		s.sendWelcome(r.Context(), req.Email)
	}
	s.writeJSON(w, subscriptionResponse{Success: result.Success, Message: result.Message})
}

func (s *Server) handleAPIUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := s.store.Unsubscribe(req.Email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, subscriptionResponse{Success: result.Success, Message: result.Message})
}

func (s *Server) handleAPISubscriberCount(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountSubscribers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, subscriberCountResponse{
		Total:    counts.Total,
		Active:   counts.Active,
		Inactive: counts.Inactive,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{Status: "ok", Database: "ok"}

	if err := s.store.Ping(); err != nil {
		health.Status = "error"
		health.Database = "error"
		health.Errors = append(health.Errors, "database: "+err.Error())
	}

	run, err := s.store.LatestNewsletterRun()
	if err != nil {
		health.Status = "error"
		health.Errors = append(health.Errors, "newsletter: "+err.Error())
	} else if run != nil {
		last := run.StartedAt
		if run.CompletedAt.Valid {
			last = run.CompletedAt.Time
		}
		age := time.Since(last)
		nh := &NewsletterHealth{
			LastRun:  last,
			Status:   run.Status,
			AgeHours: int(age.Hours()),
			Stale:    age > newsletterStaleAfter,
		}
		health.Newsletter = nh
		if nh.Stale || run.Status == "failed" {
			if health.Status == "ok" {
				health.Status = "degraded"
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("health: write response: %v", err)
	}
}
