package api

import (
	"embed"
	"encoding/json"
	"html/template"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"aqiLabel": aqi.Label,
		"aqiColor": aqi.Color,
		"toF":      aqi.CelsiusToFahrenheit,
		"json": func(v any) (template.JS, error) {
			b, err := json.Marshal(v)
			return template.JS(b), err
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
