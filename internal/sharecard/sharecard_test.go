package sharecard

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"
)

func TestGenerateDimensions(t *testing.T) {
	data, err := Generate(Data{
		Location:    "Mumbai, Maharashtra, India",
		Temperature: 31.4,
		AQI:         150,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding card: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != Width || bounds.Dy() != Height {
		t.Errorf("card size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), Width, Height)
	}
}

func TestGenerateTintFollowsAQI(t *testing.T) {
	good, err := Generate(Data{Location: "Sydney, Australia", Temperature: 22, AQI: 40})
	if err != nil {
		t.Fatalf("Generate(good) error = %v", err)
	}
	hazardous, err := Generate(Data{Location: "Sydney, Australia", Temperature: 22, AQI: 350})
	if err != nil {
		t.Fatalf("Generate(hazardous) error = %v", err)
	}

	goodImg, err := png.Decode(bytes.NewReader(good))
	if err != nil {
		t.Fatalf("decoding good card: %v", err)
	}
	hazImg, err := png.Decode(bytes.NewReader(hazardous))
	if err != nil {
		t.Fatalf("decoding hazardous card: %v", err)
	}

	// Sample above the bottom shade where the tint dominates.
	g := color.RGBAModel.Convert(goodImg.At(600, 300)).(color.RGBA)
	h := color.RGBAModel.Convert(hazImg.At(600, 300)).(color.RGBA)
	if g == h {
		t.Errorf("expected different background tints, both were %v", g)
	}
	if g.G <= h.G {
		t.Errorf("good card green channel = %d, want more than hazardous %d", g.G, h.G)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff7e00", color.RGBA{255, 126, 0, 255}},
		{"#00e400", color.RGBA{0, 228, 0, 255}},
		{"not-a-color", color.RGBA{64, 64, 64, 255}},
	}
	for _, tt := range tests {
		if got := parseHexColor(tt.in); got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mumbai, Maharashtra, India", "mumbai-maharashtra-india"},
		{"New York", "new-york"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(t.TempDir(), time.Hour)

	if _, ok := c.Get("Mumbai"); ok {
		t.Fatal("expected miss on empty cache")
	}

	payload := []byte("png-bytes")
	if err := c.Set("Mumbai", payload); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get("Mumbai")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Get() = %q, want %q", got, payload)
	}
}

func TestCacheStaleEntry(t *testing.T) {
	c := NewCache(t.TempDir(), time.Hour)
	if err := c.Set("Delhi", []byte("old")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(c.path("Delhi"), stale, stale); err != nil {
		t.Fatalf("aging cache file: %v", err)
	}

	if _, ok := c.Get("Delhi"); ok {
		t.Error("expected stale entry to miss")
	}
}

func TestCacheGetAny(t *testing.T) {
	c := NewCache(t.TempDir(), time.Hour)

	if _, ok := c.GetAny(); ok {
		t.Fatal("expected GetAny miss on empty cache")
	}

	if err := c.Set("Tokyo", []byte("card")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := c.GetAny()
	if !ok || !bytes.Equal(got, []byte("card")) {
		t.Errorf("GetAny() = %q, %v, want card bytes", got, ok)
	}
}
