// Command ecohealth runs the Ecohealth Insights server: a weather and
// air quality dashboard with health recommendations and a weekly email
// newsletter.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/Pegasus1106/Ecohealth/internal/api"
	"github.com/Pegasus1106/Ecohealth/internal/geocode"
	"github.com/Pegasus1106/Ecohealth/internal/newsletter"
	"github.com/Pegasus1106/Ecohealth/internal/recommend"
	"github.com/Pegasus1106/Ecohealth/internal/sharecard"
	"github.com/Pegasus1106/Ecohealth/internal/store"
	"github.com/Pegasus1106/Ecohealth/internal/weather"
)

type CLI struct {
	DB       string `help:"Path to the SQLite database." default:"data/ecohealth.db" env:"ECOHEALTH_DB"`
	Port     string `help:"HTTP listen port." default:"5000" env:"PORT"`
	Timezone string `help:"IANA timezone for daily grouping and the newsletter schedule." default:"Asia/Kolkata" env:"ECOHEALTH_TZ"`
	BaseURL  string `help:"Public base URL used in newsletter links." default:"http://localhost:5000" env:"ECOHEALTH_BASE_URL"`

	OpenWeatherKey string `name:"openweather-key" help:"OpenWeatherMap API key, used for geocoding, forecasts, history, and air quality." env:"OPENWEATHER_API_KEY"`
	TomorrowKey    string `help:"Tomorrow.io API key. Optional; preferred source for current conditions when set." env:"TOMORROW_API_KEY"`
	OpenAIKey      string `name:"openai-key" help:"OpenAI API key for AI health recommendations. Optional; rule-based advice is used without it." env:"OPENAI_API_KEY"`

	SMTPHost     string `help:"SMTP relay host. Email features are disabled when empty." env:"SMTP_HOST"`
	SMTPPort     int    `help:"SMTP relay port." default:"587" env:"SMTP_PORT"`
	SMTPUsername string `help:"SMTP username." env:"SMTP_USERNAME"`
	SMTPPassword string `help:"SMTP password." env:"SMTP_PASSWORD"`
	FromEmail    string `help:"From address on outgoing mail." default:"newsletter@ecohealth.local" env:"FROM_EMAIL"`

	Serve          ServeCmd          `cmd:"" default:"1" help:"Run the dashboard, JSON API, and newsletter scheduler."`
	SendNewsletter SendNewsletterCmd `cmd:"" name:"send-newsletter" help:"Send the weekly digest to all active subscribers and exit."`
	Subscribers    SubscribersCmd    `cmd:"" help:"Inspect and manage newsletter subscribers."`
}

type ServeCmd struct {
	NoSchedule bool `help:"Disable the weekly newsletter scheduler (server only, for local dev)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	loc := loadLocation(cli.Timezone)

	db, st, err := openStore(cli.DB, loc)
	if err != nil {
		return err
	}
	defer db.Close()

	ws, err := buildWeather(cli, loc)
	if err != nil {
		return err
	}
	geo := geocode.NewClient()

	var recommender api.Recommender
	if gen, err := recommend.NewGenerator(cli.OpenAIKey); err != nil {
		log.Printf("AI recommendations disabled: %v", err)
	} else {
		recommender = gen
	}

	news, err := buildNewsletter(cli, st, geo, ws, loc)
	if err != nil {
		return err
	}

	var welcome api.WelcomeSender
	if news == nil {
		log.Println("newsletter email disabled: SMTP_HOST not set")
	} else {
		welcome = news
		if c.NoSchedule {
			log.Println("newsletter scheduler disabled (--no-schedule)")
		} else {
			runner := newsletter.NewRunner(news)
			if err := runner.Start(); err != nil {
				return err
			}
			defer runner.Stop()
		}
	}

	cards := sharecard.NewCache(filepath.Join(filepath.Dir(cli.DB), "cards"), 30*time.Minute)
	server := api.NewServer(st, geo, ws, recommender, welcome, cards, cli.Port, loc)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting server on :%s", cli.Port)
	return server.Run(ctx)
}

type SendNewsletterCmd struct{}

func (c *SendNewsletterCmd) Run(cli *CLI) error {
	loc := loadLocation(cli.Timezone)

	db, st, err := openStore(cli.DB, loc)
	if err != nil {
		return err
	}
	defer db.Close()

	ws, err := buildWeather(cli, loc)
	if err != nil {
		return err
	}
	news, err := buildNewsletter(cli, st, geocode.NewClient(), ws, loc)
	if err != nil {
		return err
	}
	if news == nil {
		return errors.New("SMTP_HOST must be set to send the newsletter")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	run, err := news.SendAll(ctx)
	if err != nil {
		return err
	}
	log.Printf("newsletter run %d: sent %d, failed %d of %d subscribers",
		run.ID, run.Sent, run.Failed, run.SubscribersTotal)
	return nil
}

type SubscribersCmd struct {
	Count  SubscribersCountCmd  `cmd:"" help:"Show subscriber totals."`
	Delete SubscribersDeleteCmd `cmd:"" help:"Permanently delete one subscriber."`
	Clear  SubscribersClearCmd  `cmd:"" help:"Delete every subscriber row."`
}

type SubscribersCountCmd struct{}

func (c *SubscribersCountCmd) Run(cli *CLI) error {
	loc := loadLocation(cli.Timezone)
	db, st, err := openStore(cli.DB, loc)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := st.CountSubscribers()
	if err != nil {
		return err
	}
	fmt.Printf("%d subscribers: %d active, %d inactive\n", counts.Total, counts.Active, counts.Inactive)
	return nil
}

type SubscribersDeleteCmd struct {
	Email string `arg:"" help:"Email address to delete."`
}

func (c *SubscribersDeleteCmd) Run(cli *CLI) error {
	loc := loadLocation(cli.Timezone)
	db, st, err := openStore(cli.DB, loc)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := st.DeleteSubscriber(c.Email)
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Println(res.Message)
	return nil
}

type SubscribersClearCmd struct {
	Force bool `help:"Confirm deleting every subscriber." short:"f"`
}

func (c *SubscribersClearCmd) Run(cli *CLI) error {
	if !c.Force {
		return errors.New("refusing to delete all subscribers without --force")
	}

	loc := loadLocation(cli.Timezone)
	db, st, err := openStore(cli.DB, loc)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := st.ClearSubscribers()
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d subscribers\n", n)
	return nil
}

// loadLocation falls back to UTC so a missing tzdata entry degrades day
// grouping instead of killing the process.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Warning: could not load %s timezone, using UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

func openStore(path string, loc *time.Location) (*sql.DB, *store.Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db, loc)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Println("database migrated")
	return db, st, nil
}

// buildWeather assembles the provider chain. Tomorrow.io leads when a
// key is configured, OpenWeatherMap always participates, and Open-Meteo
// fills history and forecast gaps without a key.
func buildWeather(cli *CLI, loc *time.Location) (*weather.Service, error) {
	if cli.OpenWeatherKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY environment variable required")
	}

	owm := weather.NewOpenWeatherClient(cli.OpenWeatherKey)
	var providers []weather.Provider
	if cli.TomorrowKey != "" {
		providers = append(providers, weather.NewTomorrowClient(cli.TomorrowKey))
	} else {
		log.Println("Tomorrow.io disabled: TOMORROW_API_KEY not set")
	}
	providers = append(providers, owm)

	return weather.NewService(providers, owm, weather.NewOpenMeteoClient(), loc), nil
}

// buildNewsletter wires the SMTP mailer. Returns nil when SMTP_HOST is
// unset so callers can run without email.
func buildNewsletter(cli *CLI, st *store.Store, geo *geocode.Client, ws *weather.Service, loc *time.Location) (*newsletter.Service, error) {
	if cli.SMTPHost == "" {
		return nil, nil
	}
	mailer, err := newsletter.NewSMTPMailer(cli.SMTPHost, cli.SMTPPort, cli.SMTPUsername, cli.SMTPPassword, cli.FromEmail)
	if err != nil {
		return nil, fmt.Errorf("smtp mailer: %w", err)
	}
	return newsletter.New(st, geo, ws, mailer, cli.BaseURL, loc), nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("ecohealth"),
		kong.Description("Weather, air quality, and health advisor with a weekly email newsletter."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli))
}
