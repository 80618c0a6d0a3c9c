package seneca

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sparx365/homework-backend/internal/model"
)

func decodePayload(t *testing.T, literal string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(literal), &v); err != nil {
		t.Fatalf("bad test literal: %v", err)
	}
	return v
}

func extract(t *testing.T, literal string) *model.ExtractionResult {
	t.Helper()
	result, err := NewExtractor(zerolog.Nop()).Extract(decodePayload(t, literal))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	return result
}

func TestExtract_TitleAndSingleRun(t *testing.T) {
	result := extract(t, `{
		"title": "Biology Unit 2: Cells",
		"contents": [{"contentModules": [
			{"moduleType":"multiple-choice","content":{"question":"Q1","correctAnswer":"A1"}},
			{"moduleType":"multiple-choice","content":{"question":"Q2","correctAnswer":"A2"}}
		]}]
	}`)

	if result.Title != "Biology Unit 2: Cells" {
		t.Errorf("wrong title %q", result.Title)
	}
	if len(result.Sections) != 1 {
		t.Fatalf("expected one run section, got %d", len(result.Sections))
	}
	if got := len(result.Sections[0].Questions); got != 2 {
		t.Errorf("expected 2 questions in run, got %d", got)
	}
}

func TestExtract_ConceptSplitsRuns(t *testing.T) {
	result := extract(t, `{
		"title": "T",
		"contents": [{"contentModules": [
			{"moduleType":"multiple-choice","content":{"question":"Q1","correctAnswer":"A1"}},
			{"moduleType":"concept","content":{"title":"Cells","text":"body"}},
			{"moduleType":"multiple-choice","content":{"question":"Q2","correctAnswer":"A2"}}
		]}]
	}`)

	if len(result.Sections) != 3 {
		t.Fatalf("expected [run, concept, run], got %d sections", len(result.Sections))
	}
	if result.Sections[0].IsConcept() || len(result.Sections[0].Questions) != 1 {
		t.Errorf("section 0 should be a 1-question run: %+v", result.Sections[0])
	}
	if !result.Sections[1].IsConcept() {
		t.Errorf("section 1 should be the concept: %+v", result.Sections[1])
	}
	if result.Sections[2].IsConcept() || len(result.Sections[2].Questions) != 1 {
		t.Errorf("section 2 should be a 1-question run: %+v", result.Sections[2])
	}
}

func TestExtract_LeadingConceptEmitsNoEmptyRun(t *testing.T) {
	result := extract(t, `{
		"contents": [{"contentModules": [
			{"moduleType":"concept","content":{"title":"Intro","text":"x"}},
			{"moduleType":"multiple-choice","content":{"question":"Q","correctAnswer":"A"}}
		]}]
	}`)

	if len(result.Sections) != 2 {
		t.Fatalf("expected [concept, run], got %d sections", len(result.Sections))
	}
	if !result.Sections[0].IsConcept() {
		t.Error("first section should be the concept; no empty run may precede it")
	}
}

func TestExtract_ToggleGroupContiguous(t *testing.T) {
	result := extract(t, `{
		"contents": [{"contentModules": [
			{"moduleType":"multiple-choice","content":{"question":"Q","correctAnswer":"A"}},
			{"moduleType":"toggles","content":{"statement":"S","toggles":[
				{"correct":"True"},{"correct":"Both"}
			]}},
			{"moduleType":"list","content":{"title":"L","items":["i1"]}}
		]}]
	}`)

	if len(result.Sections) != 1 {
		t.Fatalf("expected a single run, got %d sections", len(result.Sections))
	}
	run := result.Sections[0].Questions
	if len(run) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(run))
	}
	// The two toggle questions sit between the neighbours, contiguously,
	// sharing one group key.
	if run[1].Type != model.QuestionTypeToggle || run[2].Type != model.QuestionTypeToggle {
		t.Fatalf("toggle questions not contiguous: %+v", run)
	}
	if run[1].ToggleGroup == "" || run[1].ToggleGroup != run[2].ToggleGroup {
		t.Errorf("toggle questions should share a group key: %q vs %q", run[1].ToggleGroup, run[2].ToggleGroup)
	}
	if run[0].ToggleGroup != "" || run[3].ToggleGroup != "" {
		t.Error("non-toggle questions must not carry a group key")
	}
}

func TestExtract_ConsecutiveTogglesGetDistinctGroups(t *testing.T) {
	result := extract(t, `{
		"contents": [{"contentModules": [
			{"moduleType":"toggles","content":{"statement":"Same statement","toggles":[{"correct":"A"}]}},
			{"moduleType":"toggles","content":{"statement":"Same statement","toggles":[{"correct":"B"}]}}
		]}]
	}`)

	if len(result.Sections) != 1 {
		t.Fatalf("expected a single run, got %d sections", len(result.Sections))
	}
	run := result.Sections[0].Questions
	if len(run) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(run))
	}
	// Each toggles module is self-contained: a shared statement must not
	// merge two modules into one group.
	if run[0].ToggleGroup == run[1].ToggleGroup {
		t.Errorf("groups must not span modules: both have key %q", run[0].ToggleGroup)
	}
}

func TestExtract_StreamContinuesAcrossContentItems(t *testing.T) {
	result := extract(t, `{
		"contents": [
			{"contentModules": [
				{"moduleType":"multiple-choice","content":{"question":"Q1","correctAnswer":"A1"}}
			]},
			{"contentModules": [
				{"moduleType":"multiple-choice","content":{"question":"Q2","correctAnswer":"A2"}}
			]}
		]
	}`)

	// State is not reset between content items, so both questions land in
	// one run.
	if len(result.Sections) != 1 {
		t.Fatalf("expected a single run across content items, got %d sections", len(result.Sections))
	}
	if got := len(result.Sections[0].Questions); got != 2 {
		t.Errorf("expected 2 questions, got %d", got)
	}
}

func TestExtract_EmptyContents(t *testing.T) {
	for name, literal := range map[string]string{
		"empty array":     `{"title":"T","contents":[]}`,
		"missing":         `{"title":"T"}`,
		"wrong type":      `{"title":"T","contents":"nope"}`,
		"payload scalar":  `42`,
		"payload not map": `["a","b"]`,
	} {
		t.Run(name, func(t *testing.T) {
			result := extract(t, literal)
			if len(result.Sections) != 0 {
				t.Errorf("expected no sections, got %d", len(result.Sections))
			}
		})
	}
}

func TestExtract_FallbackTitle(t *testing.T) {
	result := extract(t, `{"contents":[]}`)

	if result.Title != FallbackTitle {
		t.Errorf("expected fallback title %q, got %q", FallbackTitle, result.Title)
	}
}

func TestExtract_MalformedModuleDoesNotAbort(t *testing.T) {
	result := extract(t, `{
		"contents": [{"contentModules": [
			{"moduleType":"multiple-choice","content":{"question":"only question"}},
			"not even an object",
			{"moduleType":"multiple-choice","content":{"question":"Q","correctAnswer":"A"}}
		]}]
	}`)

	if len(result.Sections) != 1 {
		t.Fatalf("expected one run, got %d sections", len(result.Sections))
	}
	run := result.Sections[0].Questions
	if len(run) != 1 || run[0].Question != "Q" {
		t.Errorf("later modules must survive earlier malformed ones: %+v", run)
	}
}

func TestExtract_QuestionCount(t *testing.T) {
	result := extract(t, `{
		"contents": [{"contentModules": [
			{"moduleType":"list","content":{"title":"L","items":["a","b","c"]}},
			{"moduleType":"concept","content":{"title":"C"}},
			{"moduleType":"multiple-choice","content":{"question":"Q","correctAnswer":"A"}}
		]}]
	}`)

	if got := result.QuestionCount(); got != 4 {
		t.Errorf("expected 4 questions across sections, got %d", got)
	}
}

func TestExtractStream_EmitsSectionsInOrder(t *testing.T) {
	payload := decodePayload(t, `{
		"title": "Streamed",
		"contents": [{"contentModules": [
			{"moduleType":"multiple-choice","content":{"question":"Q","correctAnswer":"A"}},
			{"moduleType":"concept","content":{"title":"C","text":"x"}}
		]}]
	}`)

	var sections []model.Section
	title, err := NewExtractor(zerolog.Nop()).ExtractStream(payload, func(s model.Section) {
		sections = append(sections, s)
	})
	if err != nil {
		t.Fatalf("ExtractStream failed: %v", err)
	}
	if title != "Streamed" {
		t.Errorf("wrong title %q", title)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 emitted sections, got %d", len(sections))
	}
	if sections[0].IsConcept() || !sections[1].IsConcept() {
		t.Errorf("sections emitted out of order: %+v", sections)
	}
}
