package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ParseStatus is the resume parsing lifecycle state.
type ParseStatus string

const (
	ParseStatusPending    ParseStatus = "pending"
	ParseStatusProcessing ParseStatus = "processing"
	ParseStatusCompleted  ParseStatus = "completed"
	ParseStatusFailed     ParseStatus = "failed"
)

var (
	ErrEndBeforeStart      = errors.New("end date is before start date")
	ErrCurrentFlagMismatch = errors.New("is_current must be set exactly when end date is empty")
)

// Candidate is a person in the recruiting pool, pre-joined with the resumes and
// work history the matching engine needs.
type Candidate struct {
	ID                   uuid.UUID        `json:"id"`
	FullName             string           `json:"full_name"`
	Email                string           `json:"email"`
	Phone                string           `json:"phone,omitempty"`
	CurrentPosition      string           `json:"current_position,omitempty"`
	CurrentCompany       string           `json:"current_company,omitempty"`
	TotalExperienceYears *float64         `json:"total_experience_years,omitempty"`
	Location             string           `json:"location,omitempty"`
	IsAvailable          bool             `json:"is_available"`
	Resumes              []Resume         `json:"resumes,omitempty"`
	Experiences          []WorkExperience `json:"experiences,omitempty"`
}

// CompletedResumes returns the resumes eligible for matching.
func (c Candidate) CompletedResumes() []Resume {
	var out []Resume
	for _, r := range c.Resumes {
		if r.Status == ParseStatusCompleted {
			out = append(out, r)
		}
	}
	return out
}

// PrimaryResume returns the most recently updated completed resume.
func (c Candidate) PrimaryResume() (Resume, bool) {
	var (
		best  Resume
		found bool
	)
	for _, r := range c.CompletedResumes() {
		if !found || r.UpdatedAt.After(best.UpdatedAt) {
			best = r
			found = true
		}
	}
	return best, found
}

// Resume holds the parsed content of an uploaded CV.
type Resume struct {
	ID          uuid.UUID       `json:"id"`
	CandidateID uuid.UUID       `json:"candidate_id"`
	Skills      []string        `json:"skills"`
	Education   []string        `json:"education,omitempty"`
	Status      ParseStatus     `json:"parsing_status"`
	ParsedData  json.RawMessage `json:"parsed_data,omitempty"`
	ParsedText  string          `json:"-"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WorkExperience is one employment entry. A nil EndDate means the role is current.
type WorkExperience struct {
	ID           uuid.UUID  `json:"id"`
	CandidateID  uuid.UUID  `json:"candidate_id"`
	Company      string     `json:"company"`
	Position     string     `json:"position"`
	Department   *string    `json:"department,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsCurrent    bool       `json:"is_current"`
	Colleagues   []string   `json:"colleagues,omitempty"`
	Technologies []string   `json:"technologies,omitempty"`
}

// Validate checks the date invariants of the entry.
func (w WorkExperience) Validate() error {
	if w.EndDate != nil && w.EndDate.Before(w.StartDate) {
		return fmt.Errorf("%s at %s: %w", w.Position, w.Company, ErrEndBeforeStart)
	}
	if w.IsCurrent != (w.EndDate == nil) {
		return fmt.Errorf("%s at %s: %w", w.Position, w.Company, ErrCurrentFlagMismatch)
	}
	return nil
}

// Span returns the employment interval, with an open end resolved to now.
func (w WorkExperience) Span(now time.Time) (time.Time, time.Time) {
	if w.EndDate == nil {
		return w.StartDate, now
	}
	return w.StartDate, *w.EndDate
}

// DepartmentName returns the department or an empty string.
func (w WorkExperience) DepartmentName() string {
	if w.Department == nil {
		return ""
	}
	return *w.Department
}

// PoolFilter narrows the candidate pool on the database side.
type PoolFilter struct {
	Locations          []string
	Companies          []string
	Departments        []string
	MaxExperienceYears *float64
	AvailableOnly      bool
	// AnyResumeStatus drops the completed-resume requirement (colleague lookups
	// look at work history only).
	AnyResumeStatus bool
}

// SearchHistoryEntry is the audit record written after every search.
type SearchHistoryEntry struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"user_id"`
	QueryText   string          `json:"query_text"`
	Criteria    json.RawMessage `json:"criteria"`
	ResultCount int             `json:"result_count"`
	TopResults  json.RawMessage `json:"top_results"`
	ElapsedMS   int64           `json:"elapsed_ms"`
	CreatedAt   time.Time       `json:"created_at"`
}
