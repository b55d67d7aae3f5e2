package types

// ExperienceEntry represents one parsed job
type ExperienceEntry struct {
	Title       string   `json:"title" yaml:"title"`
	Company     string   `json:"company" yaml:"company"`
	Period      string   `json:"period" yaml:"period"`           // Free text, e.g. "2020 - Present"
	Description []string `json:"description" yaml:"description"` // Bullet lines in document order
}

// Complete reports whether title, company and period are all set
func (e ExperienceEntry) Complete() bool {
	return e.Title != "" && e.Company != "" && e.Period != ""
}

// EducationEntry represents one education record
type EducationEntry struct {
	Degree      string `json:"degree" yaml:"degree"`
	Institution string `json:"institution" yaml:"institution"`
	Year        string `json:"year" yaml:"year"`
}

// PersonalInfo holds the candidate's identity and contact fields
type PersonalInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Email   string   `json:"email" yaml:"email"`
	Phone   string   `json:"phone" yaml:"phone"`
	Summary []string `json:"summary" yaml:"summary"`
}

// ParsedResumeData is the structured profile recovered from raw resume text
type ParsedResumeData struct {
	PersonalInfo PersonalInfo      `json:"personalInfo" yaml:"personalInfo"`
	Experiences  []ExperienceEntry `json:"experiences" yaml:"experiences"`
	Education    []EducationEntry  `json:"education" yaml:"education"`
	Skills       []string          `json:"skills" yaml:"skills"`
}

// ParseTextInput represents the input for parsing already-decoded text
type ParseTextInput struct {
	Text string `json:"text"`
}

// ParseFileInput represents a document awaiting decoding and parsing
type ParseFileInput struct {
	Filename string
	MIMEType string
	Data     []byte
}
