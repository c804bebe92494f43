package reports

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateColor(t *testing.T) {
	for _, ok := range []string{"", "#4A90E2", "#abcdef"} {
		if err := ValidateColor(ok); err != nil {
			t.Errorf("ValidateColor(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"4A90E2", "#4A90E", "#GGGGGG", "red"} {
		err := ValidateColor(bad)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ValidateColor(%q) = %v, want ErrInvalidInput", bad, err)
		}
	}
}

func TestValidateLogo(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(png, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	bmp := filepath.Join(dir, "logo.svg")
	if err := os.WriteFile(bmp, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateLogo(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
	if err := ValidateLogo(png); err != nil {
		t.Errorf("png: %v", err)
	}
	if err := ValidateLogo(bmp); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("svg: %v", err)
	}
	if err := ValidateLogo(filepath.Join(dir, "missing.png")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing: %v", err)
	}
}

func TestMergeAndHex(t *testing.T) {
	base := Branding{ProjectName: "Base", CompanyName: "Acme", Color: "#112233"}
	got := base.Merge(Branding{ProjectName: "Override", Color: " "})
	if got.ProjectName != "Override" || got.CompanyName != "Acme" || got.Color != "#112233" {
		t.Fatalf("Merge = %+v", got)
	}
	if base.ProjectName != "Base" {
		t.Fatal("Merge mutated the receiver")
	}
	if h := (Branding{Color: "#a1b2c3"}).Hex(); h != "A1B2C3" {
		t.Errorf("Hex = %q", h)
	}
	if h := (Branding{}).Hex(); h != "4A90E2" {
		t.Errorf("default Hex = %q", h)
	}
}
