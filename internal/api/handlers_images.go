package api

import (
	"log"
	"net/http"

	"github.com/Pegasus1106/Ecohealth/internal/geocode"
	"github.com/Pegasus1106/Ecohealth/internal/sharecard"
)

// handleOGImage serves the social share card for a location. Cards are
// cached on disk and redrawn once the cached copy goes stale.
func (s *Server) handleOGImage(w http.ResponseWriter, r *http.Request) {
	city, state, country := locationFromQuery(r)
	place := geocode.Query(city, state, country)

	if data, ok := s.cards.Get(place); ok {
		s.serveCard(w, data)
		return
	}

	coords, err := s.geo.Lookup(r.Context(), city, state, country)
	if err != nil || coords == nil {
		if err != nil {
			log.Printf("og-image: geocode %q: %v", place, err)
		}
		// Serve any older card rather than break link previews.
		if data, ok := s.cards.GetAny(); ok {
			s.serveCard(w, data)
			return
		}
		http.Error(w, lookupFailedMessage, http.StatusNotFound)
		return
	}

	current := s.weather.Current(r.Context(), coords.Lat, coords.Lon)
	data, err := sharecard.Generate(sharecard.Data{
		Location:    place,
		Temperature: current.Temperature,
		AQI:         current.AQI,
	})
	if err != nil {
		log.Printf("og-image: render %q: %v", place, err)
		if data, ok := s.cards.GetAny(); ok {
			s.serveCard(w, data)
			return
		}
		http.Error(w, "share card unavailable", http.StatusInternalServerError)
		return
	}

	if err := s.cards.Set(place, data); err != nil {
		log.Printf("og-image: cache %q: %v", place, err)
	}
	s.serveCard(w, data)
}

func (s *Server) serveCard(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=1800")
	w.Write(data)
}
