package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType identifies which upstream content module a normalized
// question came from.
type QuestionType string

const (
	QuestionTypeMultipleChoice   QuestionType = "multiple-choice"
	QuestionTypeToggle           QuestionType = "toggle"
	QuestionTypeList             QuestionType = "list"
	QuestionTypeGrid             QuestionType = "grid"
	QuestionTypeWordfill         QuestionType = "wordfill"
	QuestionTypeImageDescription QuestionType = "image-description"
)

// Question is one normalized question/answer pair. Question and Answer are
// always non-empty trimmed strings; modules that cannot produce both are
// skipped during extraction. Multi-value answers (wordfill, image-description)
// are joined with ", " — renderers may split on that exact separator.
type Question struct {
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	// ToggleGroup links toggle questions that came from the same toggles
	// module; they share one prompt and differ only in the answer.
	ToggleGroup string `json:"toggleGroup,omitempty"`
}

// Concept is a non-question explanatory block interleaved between question
// runs. Content is opaque rich text/HTML and is not parsed further.
type Concept struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Section is one entry in an extraction result: either a run of questions
// (Questions non-empty, Concept nil) or a single concept block (Concept
// non-nil, Questions nil). A run never contains zero questions.
type Section struct {
	Questions []Question `json:"questions,omitempty"`
	Concept   *Concept   `json:"concept,omitempty"`
}

// IsConcept reports whether the section is a concept block.
func (s Section) IsConcept() bool {
	return s.Concept != nil
}

// ExtractionResult is the normalized, render-ready form of one assignment.
// Sections preserve the order the originating modules were encountered in.
type ExtractionResult struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// QuestionCount returns the number of questions across all run sections.
func (r *ExtractionResult) QuestionCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Questions)
	}
	return n
}

// Extraction is one history row recording a completed extraction.
type Extraction struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	CourseID      string    `json:"course_id"`
	SectionID     string    `json:"section_id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"question_count"`
	FromCache     bool      `json:"from_cache"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExtractRequest is the payload for running an extraction.
type ExtractRequest struct {
	URL string `json:"url" binding:"required,url,max=2048"`
}
