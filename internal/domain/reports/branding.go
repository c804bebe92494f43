package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultBrandColor is used when no color is configured.
const DefaultBrandColor = "#4A90E2"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var logoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// Branding is passed explicitly into every document build.
type Branding struct {
	ProjectName string `json:"project_name" yaml:"projectName"`
	CompanyName string `json:"company_name" yaml:"companyName"`
	Color       string `json:"brand_color" yaml:"brandColor"`
	LogoPath    string `json:"logo_path" yaml:"logoPath"`
}

// Merge overlays the non-empty fields of override.
func (b Branding) Merge(override Branding) Branding {
	if v := strings.TrimSpace(override.ProjectName); v != "" {
		b.ProjectName = v
	}
	if v := strings.TrimSpace(override.CompanyName); v != "" {
		b.CompanyName = v
	}
	if v := strings.TrimSpace(override.Color); v != "" {
		b.Color = v
	}
	if v := strings.TrimSpace(override.LogoPath); v != "" {
		b.LogoPath = v
	}
	return b
}

// ValidateColor accepts an empty value or "#RRGGBB".
func ValidateColor(color string) error {
	if color == "" || hexColor.MatchString(color) {
		return nil
	}
	return fmt.Errorf("%w: brand color %q is not a #RRGGBB hex color", ErrInvalidInput, color)
}

// ValidateLogo accepts an empty path or an existing image file with a
// supported extension.
func ValidateLogo(path string) error {
	if path == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !logoExtensions[ext] {
		return fmt.Errorf("%w: logo %q has unsupported format", ErrInvalidInput, filepath.Base(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: logo %q not found", ErrInvalidInput, filepath.Base(path))
	}
	if info.IsDir() {
		return fmt.Errorf("%w: logo %q is a directory", ErrInvalidInput, filepath.Base(path))
	}
	return nil
}

// Hex returns the brand color as "RRGGBB", falling back to the default.
func (b Branding) Hex() string {
	c := b.Color
	if !hexColor.MatchString(c) {
		c = DefaultBrandColor
	}
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}
