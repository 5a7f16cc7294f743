package domain

// SiteInfo holds the company's public contact channels
type SiteInfo struct {
	Company       string          `yaml:"company" json:"company"`
	Phones        []string        `yaml:"phones" json:"phones"`
	Emails        []string        `yaml:"emails" json:"emails"`
	Address       []string        `yaml:"address" json:"address"`
	BusinessHours []string        `yaml:"business_hours" json:"businessHours"`
	Office        OfficeLocation  `yaml:"office" json:"office"`
	Subjects      []SubjectOption `yaml:"subjects" json:"subjects"`
}

// OfficeLocation is the pin shown by the map widget
type OfficeLocation struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
	Label     string  `yaml:"label" json:"label"`
}

// SubjectOption describes one selectable subject
type SubjectOption struct {
	Subject     Subject `yaml:"subject" json:"subject"`
	Description string  `yaml:"description" json:"description"`
}

// PrimaryEmail returns the first listed email, or "" when none is configured
func (s *SiteInfo) PrimaryEmail() string {
	if s == nil || len(s.Emails) == 0 {
		return ""
	}
	return s.Emails[0]
}
