package config

import (
	_ "embed"
	"fmt"
	"os"

	"logistics-contact-backend/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultSiteInfo []byte

// LoadSiteInfo reads the company contact information from path.
// An empty path selects the embedded default document.
func LoadSiteInfo(path string) (*domain.SiteInfo, error) {
	data := defaultSiteInfo
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read site info: %w", err)
		}
		data = b
	}

	var info domain.SiteInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse site info: %w", err)
	}

	for i, opt := range info.Subjects {
		subject := domain.ParseSubject(string(opt.Subject))
		if !subject.Valid() {
			return nil, fmt.Errorf("site info: unknown subject %q", opt.Subject)
		}
		info.Subjects[i].Subject = subject
	}

	return &info, nil
}
