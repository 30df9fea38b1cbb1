package newsletter

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Pegasus1106/Ecohealth/internal/geocode"
	"github.com/Pegasus1106/Ecohealth/internal/models"
	"github.com/Pegasus1106/Ecohealth/internal/store"
	"github.com/Pegasus1106/Ecohealth/internal/weather"
)

type stubGeocoder struct {
	coords map[string]geocode.Coordinates
}

func (g *stubGeocoder) Lookup(_ context.Context, city, _, _ string) (*geocode.Coordinates, error) {
	c, ok := g.coords[city]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type stubWeather struct {
	byLat    map[float64]weather.Conditions
	forecast []weather.ForecastDay
}

func (w *stubWeather) Current(_ context.Context, lat, _ float64) weather.Conditions {
	if c, ok := w.byLat[lat]; ok {
		return c
	}
	return weather.Conditions{Temperature: 22, Humidity: 50, WindSpeed: 5, AQI: 50, Source: "defaults"}
}

func (w *stubWeather) Forecast(_ context.Context, _, _ float64) []weather.ForecastDay {
	return w.forecast
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sends  []sentMail
	failTo map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.failTo[to] {
		return errors.New("smtp unavailable")
	}
	m.sends = append(m.sends, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db, time.UTC)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

// testForecast builds n days of forecast starting the day after the
// fixed test clock.
func testForecast(n int) []weather.ForecastDay {
	start := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	days := make([]weather.ForecastDay, n)
	for i := range days {
		days[i] = weather.ForecastDay{
			Date:    start.AddDate(0, 0, i),
			TempMin: 18 + float64(i),
			TempMax: 28 + float64(i),
			TempAvg: 23 + float64(i),
			AQIMin:  40,
			AQIMax:  60,
			AQIAvg:  50,
		}
	}
	return days
}

func newTestService(t *testing.T, st *store.Store, geo Geocoder, w WeatherService, m Mailer) *Service {
	t.Helper()
	svc := New(st, geo, w, m, "http://localhost:5000/", time.UTC)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func defaultStubs() (*stubGeocoder, *stubWeather) {
	geo := &stubGeocoder{coords: map[string]geocode.Coordinates{
		"Mumbai": {Lat: 1, Lon: 72},
		"Delhi":  {Lat: 2, Lon: 77},
		"Tokyo":  {Lat: 3, Lon: 139},
	}}
	w := &stubWeather{
		byLat: map[float64]weather.Conditions{
			1: {Temperature: 35, Humidity: 70, WindSpeed: 4, AQI: 150, Source: "tomorrowio"},
			2: {Temperature: 18, Humidity: 40, WindSpeed: 6, AQI: 320, Source: "tomorrowio"},
			3: {Temperature: 10, Humidity: 55, WindSpeed: 3, AQI: 40, Source: "tomorrowio"},
		},
		forecast: testForecast(7),
	}
	return geo, w
}

func TestCityKey(t *testing.T) {
	tests := []struct {
		city City
		want string
	}{
		{City{Name: "Mumbai", State: "Maharashtra", Country: "India"}, "Mumbai, Maharashtra, India"},
		{City{Name: "London", State: "", Country: "United Kingdom"}, "London, United Kingdom"},
		{City{Name: "Singapore", State: "", Country: "Singapore"}, "Singapore, Singapore"},
	}
	for _, tt := range tests {
		if got := tt.city.Key(); got != tt.want {
			t.Errorf("Key(%s) = %q, want %q", tt.city.Name, got, tt.want)
		}
	}
}

func TestShortName(t *testing.T) {
	if got := shortName("New York, New York, United States"); got != "New York" {
		t.Errorf("shortName = %q, want 'New York'", got)
	}
}

func TestSummarize(t *testing.T) {
	cities := []cityWeather{
		{Key: "Mumbai, Maharashtra, India", Current: weather.Conditions{Temperature: 35, AQI: 150}},
		{Key: "Delhi, Delhi, India", Current: weather.Conditions{Temperature: 18, AQI: 320}},
		{Key: "Pune, Maharashtra, India", Current: weather.Conditions{Temperature: 28, AQI: 90}},
	}

	h := summarize(cities)
	if h == nil {
		t.Fatal("summarize returned nil")
	}
	if h.HighestTemp.City != "Mumbai" || h.HighestTemp.Value != 35 {
		t.Errorf("HighestTemp = %+v, want Mumbai 35", h.HighestTemp)
	}
	if h.LowestTemp.City != "Delhi" || h.LowestTemp.Value != 18 {
		t.Errorf("LowestTemp = %+v, want Delhi 18", h.LowestTemp)
	}
	if h.BestAQI.City != "Pune" || h.BestAQI.Value != 90 {
		t.Errorf("BestAQI = %+v, want Pune 90", h.BestAQI)
	}
	if h.WorstAQI.City != "Delhi" || h.WorstAQI.Value != 320 {
		t.Errorf("WorstAQI = %+v, want Delhi 320", h.WorstAQI)
	}

	if summarize(nil) != nil {
		t.Error("summarize(nil) != nil")
	}
}

func TestComposeDigest(t *testing.T) {
	geo, w := defaultStubs()
	svc := newTestService(t, setupTestStore(t), geo, w, &fakeMailer{})

	sub := models.Subscriber{
		Name:            "Asha",
		Email:           "asha@example.com",
		LocationCity:    sql.NullString{String: "Mumbai", Valid: true},
		LocationState:   sql.NullString{String: "Maharashtra", Valid: true},
		LocationCountry: sql.NullString{String: "India", Valid: true},
	}

	india := svc.gatherCities(context.Background(), indiaCities)
	global := svc.gatherCities(context.Background(), globalCities)
	if len(india) != 2 {
		t.Fatalf("gathered %d india cities, want 2 (Mumbai, Delhi)", len(india))
	}
	if len(global) != 1 {
		t.Fatalf("gathered %d global cities, want 1 (Tokyo)", len(global))
	}

	subject, body, err := svc.composeDigest(context.Background(), sub, india, global)
	if err != nil {
		t.Fatalf("composeDigest: %v", err)
	}

	if subject != "Your Weekly Weather Update - March 10, 2026" {
		t.Errorf("subject = %q", subject)
	}

	// Collapse template whitespace so fragments can span line breaks.
	flat := strings.Join(strings.Fields(body), " ")
	wantFragments := []string{
		"Weekly Weather Update: March 10, 2026 - March 16, 2026",
		"Hello Asha,",
		"Weather Highlights Across India",
		`35.0°C</span> in Mumbai`,
		`18.0°C</span> in Delhi`,
		`AQI 150.0</span> in Mumbai`,
		`AQI 320.0</span> in Delhi`,
		"Global Weather Highlights",
		"Weather for Your Location: Mumbai, Maharashtra, India",
		"Wed, Mar 11",
		"Detailed Forecasts - Major Cities in India",
		"Global Weather Snapshot",
		"<td>Tokyo</td>",
		"unsubscribe?email=asha%40example.com",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(flat, frag) {
			t.Errorf("digest missing %q", frag)
		}
	}
}

func TestComposeDigestWithoutLocation(t *testing.T) {
	geo, w := defaultStubs()
	svc := newTestService(t, setupTestStore(t), geo, w, &fakeMailer{})

	sub := models.Subscriber{Name: "Ben", Email: "ben@example.com"}

	india := svc.gatherCities(context.Background(), indiaCities)
	global := svc.gatherCities(context.Background(), globalCities)

	_, body, err := svc.composeDigest(context.Background(), sub, india, global)
	if err != nil {
		t.Fatalf("composeDigest: %v", err)
	}

	if strings.Contains(body, "Weather for Your Location") {
		t.Error("digest has location section for subscriber without location")
	}
	// India details are trimmed to five days.
	if !strings.Contains(body, "Sun, Mar 15") {
		t.Error("digest missing fifth forecast day")
	}
	if strings.Contains(body, "Mon, Mar 16") {
		t.Error("digest shows sixth forecast day in city details")
	}
}

func TestComposeWelcome(t *testing.T) {
	geo, w := defaultStubs()
	svc := newTestService(t, setupTestStore(t), geo, w, &fakeMailer{})

	sub := models.Subscriber{
		Name:         "Asha",
		Email:        "asha@example.com",
		LocationCity: sql.NullString{String: "Mumbai", Valid: true},
	}

	subject, body, err := svc.composeWelcome(context.Background(), sub)
	if err != nil {
		t.Fatalf("composeWelcome: %v", err)
	}

	if subject != "Welcome to IcoHealth Weather Newsletter!" {
		t.Errorf("subject = %q", subject)
	}

	flat := strings.Join(strings.Fields(body), " ")
	wantFragments := []string{
		"Weather Report: 10 March, 2026",
		"Welcome, Asha!",
		"your location (Mumbai)",
		"Latest weather conditions across major Indian cities.",
		"Current weather conditions in major cities around the world.",
		"<td>Mumbai, Maharashtra, India</td>",
		"<td>Delhi, Delhi, India</td>",
		"<td>Tokyo, Japan</td>",
		"18.0°C to 35.0°C",
		"150 to 320",
		"10.0°C to 10.0°C",
		"40 to 40",
		"The IcoHealth Team",
		"unsubscribe?email=asha%40example.com",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(flat, frag) {
			t.Errorf("welcome email missing %q", frag)
		}
	}
}

func TestComposeWelcomeNoData(t *testing.T) {
	geo := &stubGeocoder{coords: map[string]geocode.Coordinates{}}
	svc := newTestService(t, setupTestStore(t), geo, &stubWeather{}, &fakeMailer{})

	sub := models.Subscriber{Name: "Ben", Email: "ben@example.com"}

	_, body, err := svc.composeWelcome(context.Background(), sub)
	if err != nil {
		t.Fatalf("composeWelcome: %v", err)
	}

	wantFragments := []string{
		"Weather data for India is currently being updated.",
		"Global weather data is currently being updated.",
		"Data unavailable",
		"your location (your area)",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(body, frag) {
			t.Errorf("welcome email missing %q", frag)
		}
	}
}

func TestSendAll(t *testing.T) {
	st := setupTestStore(t)
	geo, w := defaultStubs()
	mailer := &fakeMailer{}
	svc := newTestService(t, st, geo, w, mailer)

	if _, err := st.Subscribe("Asha", "asha@example.com", "Mumbai", "Maharashtra", "India"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := st.Subscribe("Ben", "ben@example.com", "", "", ""); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	run, err := svc.SendAll(context.Background())
	if err != nil {
		t.Fatalf("SendAll: %v", err)
	}

	if run.SubscribersTotal != 2 || run.Sent != 2 || run.Failed != 0 {
		t.Errorf("run = %+v, want 2 sent of 2", run)
	}
	if run.Status != "completed" {
		t.Errorf("Status = %q, want 'completed'", run.Status)
	}
	if len(mailer.sends) != 2 {
		t.Fatalf("sent %d mails, want 2", len(mailer.sends))
	}
	if mailer.sends[0].To != "asha@example.com" || mailer.sends[1].To != "ben@example.com" {
		t.Errorf("recipients = %s, %s", mailer.sends[0].To, mailer.sends[1].To)
	}

	sub, err := st.GetSubscriber("asha@example.com")
	if err != nil {
		t.Fatalf("GetSubscriber: %v", err)
	}
	if !sub.LastEmailSent.Valid {
		t.Error("LastEmailSent not stamped after send")
	}

	latest, err := st.LatestNewsletterRun()
	if err != nil {
		t.Fatalf("LatestNewsletterRun: %v", err)
	}
	if latest == nil || latest.ID != run.ID {
		t.Errorf("latest run = %+v, want id %d", latest, run.ID)
	}
}

func TestSendAllCountsFailures(t *testing.T) {
	st := setupTestStore(t)
	geo, w := defaultStubs()
	mailer := &fakeMailer{failTo: map[string]bool{"ben@example.com": true}}
	svc := newTestService(t, st, geo, w, mailer)

	if _, err := st.Subscribe("Asha", "asha@example.com", "", "", ""); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := st.Subscribe("Ben", "ben@example.com", "", "", ""); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	run, err := svc.SendAll(context.Background())
	if err != nil {
		t.Fatalf("SendAll: %v", err)
	}
	if run.Sent != 1 || run.Failed != 1 {
		t.Errorf("run = %+v, want 1 sent 1 failed", run)
	}
	if run.Status != "completed" {
		t.Errorf("Status = %q, want 'completed' despite partial failure", run.Status)
	}

	sub, _ := st.GetSubscriber("ben@example.com")
	if sub.LastEmailSent.Valid {
		t.Error("LastEmailSent stamped for failed send")
	}
}

func TestSendAllAllFailed(t *testing.T) {
	st := setupTestStore(t)
	geo, w := defaultStubs()
	mailer := &fakeMailer{failTo: map[string]bool{"asha@example.com": true}}
	svc := newTestService(t, st, geo, w, mailer)

	if _, err := st.Subscribe("Asha", "asha@example.com", "", "", ""); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	run, err := svc.SendAll(context.Background())
	if err != nil {
		t.Fatalf("SendAll: %v", err)
	}
	if run.Status != "failed" {
		t.Errorf("Status = %q, want 'failed' when every send fails", run.Status)
	}
	if !run.Error.Valid {
		t.Error("Error not recorded for failed run")
	}
}

func TestSendWelcome(t *testing.T) {
	st := setupTestStore(t)
	geo, w := defaultStubs()
	mailer := &fakeMailer{}
	svc := newTestService(t, st, geo, w, mailer)

	sub := models.Subscriber{Name: "Asha", Email: "asha@example.com"}
	if err := svc.SendWelcome(context.Background(), sub); err != nil {
		t.Fatalf("SendWelcome: %v", err)
	}
	if len(mailer.sends) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sends))
	}
	if mailer.sends[0].Subject != "Welcome to IcoHealth Weather Newsletter!" {
		t.Errorf("subject = %q", mailer.sends[0].Subject)
	}
}

func TestRunnerStartStop(t *testing.T) {
	geo, w := defaultStubs()
	svc := newTestService(t, setupTestStore(t), geo, w, &fakeMailer{})

	r := NewRunner(svc)
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Stop()
}
