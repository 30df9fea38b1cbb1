package htmlutil

import (
	"strings"
	"testing"
)

func TestToText(t *testing.T) {
	html := `<html><body><h1>Weekly Weather Update</h1><p>Temperature: 31.4&deg;C</p><a href="http://example.com/unsubscribe">Unsubscribe</a></body></html>`

	text := ToText(html)
	if strings.Contains(text, "<") {
		t.Errorf("expected tags stripped, got %q", text)
	}
	if !strings.Contains(text, "Weekly Weather Update") {
		t.Errorf("expected heading text preserved, got %q", text)
	}
	if !strings.Contains(text, "31.4°C") {
		t.Errorf("expected entity decoded, got %q", text)
	}
}
