package seneca

import (
	"encoding/json"
	"testing"

	"github.com/sparx365/homework-backend/internal/model"
)

// decodeContent parses a JSON object literal into the generic form the
// interpreter consumes.
func decodeContent(t *testing.T, literal string) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(literal), &v); err != nil {
		t.Fatalf("bad test literal: %v", err)
	}
	return v
}

func TestInterpretMultipleChoice(t *testing.T) {
	content := decodeContent(t, `{"question":"  What is the basic unit of life?  ","correctAnswer":" Cell "}`)

	out := interpretModule(moduleMultipleChoice, content, "")

	if len(out.questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out.questions))
	}
	q := out.questions[0]
	if q.Type != model.QuestionTypeMultipleChoice {
		t.Errorf("expected multiple-choice type, got %q", q.Type)
	}
	if q.Question != "What is the basic unit of life?" {
		t.Errorf("question not trimmed: %q", q.Question)
	}
	if q.Answer != "Cell" {
		t.Errorf("answer not trimmed: %q", q.Answer)
	}
}

func TestInterpretMultipleChoice_MissingAnswerSkipped(t *testing.T) {
	content := decodeContent(t, `{"question":"What is the basic unit of life?"}`)

	out := interpretModule(moduleMultipleChoice, content, "")

	if len(out.questions) != 0 || out.concept != nil {
		t.Errorf("expected no output for module missing correctAnswer, got %+v", out)
	}
}

func TestInterpretToggles(t *testing.T) {
	content := decodeContent(t, `{
		"statement": "Osmosis moves water across a membrane",
		"toggles": [
			{"correct": "True"},
			{"options": ["maybe"]},
			{"correct": "Down the concentration gradient"}
		]
	}`)

	out := interpretModule(moduleToggles, content, "toggle-3")

	if len(out.questions) != 2 {
		t.Fatalf("expected one question per correct-carrying toggle, got %d", len(out.questions))
	}
	for i, q := range out.questions {
		if q.Type != model.QuestionTypeToggle {
			t.Errorf("question %d: expected toggle type, got %q", i, q.Type)
		}
		if q.Question != "Osmosis moves water across a membrane" {
			t.Errorf("question %d: wrong prompt %q", i, q.Question)
		}
		if q.ToggleGroup != "toggle-3" {
			t.Errorf("question %d: wrong group key %q", i, q.ToggleGroup)
		}
	}
	if out.questions[0].Answer != "True" || out.questions[1].Answer != "Down the concentration gradient" {
		t.Errorf("answers out of order: %q, %q", out.questions[0].Answer, out.questions[1].Answer)
	}
}

func TestInterpretToggles_NoStatement(t *testing.T) {
	content := decodeContent(t, `{"toggles":[{"correct":"True"}]}`)

	if out := interpretModule(moduleToggles, content, "toggle-0"); len(out.questions) != 0 {
		t.Errorf("expected no output without a statement, got %d questions", len(out.questions))
	}
}

func TestInterpretList(t *testing.T) {
	content := decodeContent(t, `{"title":"Planets","items":["Mercury","Venus"]}`)

	out := interpretModule(moduleList, content, "")

	if len(out.questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(out.questions))
	}
	for i, q := range out.questions {
		if q.Question != "Planets" {
			t.Errorf("question %d: expected shared title prompt, got %q", i, q.Question)
		}
		if q.Type != model.QuestionTypeList {
			t.Errorf("question %d: expected list type, got %q", i, q.Type)
		}
	}
	if out.questions[0].Answer != "Mercury" || out.questions[1].Answer != "Venus" {
		t.Errorf("items out of order: %q, %q", out.questions[0].Answer, out.questions[1].Answer)
	}
}

func TestInterpretList_StringifiesNonStringItems(t *testing.T) {
	content := decodeContent(t, `{"title":"Numbers","items":[7, "eight"]}`)

	out := interpretModule(moduleList, content, "")

	if len(out.questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(out.questions))
	}
	if out.questions[0].Answer != "7" {
		t.Errorf("expected numeric item stringified to \"7\", got %q", out.questions[0].Answer)
	}
}

func TestInterpretGrid(t *testing.T) {
	content := decodeContent(t, `{"definitions":[
		{"word":"Mitochondria","text":"Produces energy"},
		{"word":"Nucleus","text":"Controls the cell"}
	]}`)

	out := interpretModule(moduleGrid, content, "")

	if len(out.questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(out.questions))
	}
	if out.questions[0].Question != "Mitochondria" || out.questions[0].Answer != "Produces energy" {
		t.Errorf("first definition wrong: %+v", out.questions[0])
	}
	if out.questions[1].Question != "Nucleus" || out.questions[1].Answer != "Controls the cell" {
		t.Errorf("order not preserved: %+v", out.questions[1])
	}
}

func TestInterpretGrid_WordFragments(t *testing.T) {
	content := decodeContent(t, `{"definitions":[
		{"word":["Photo","synthesis"],"text":"Makes glucose from light"}
	]}`)

	out := interpretModule(moduleGrid, content, "")

	if len(out.questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out.questions))
	}
	if out.questions[0].Question != "Photosynthesis" {
		t.Errorf("expected fragments concatenated, got %q", out.questions[0].Question)
	}
}

func TestInterpretWordfill(t *testing.T) {
	content := decodeContent(t, `{"words":["The capital of France is ", {"word":"Paris"}, "."]}`)

	out := interpretModule(moduleWordfill, content, "")

	if len(out.questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out.questions))
	}
	q := out.questions[0]
	if q.Question != "The capital of France is Paris." {
		t.Errorf("expected filled sentence, got %q", q.Question)
	}
	if q.Answer != "Paris" {
		t.Errorf("expected answer Paris, got %q", q.Answer)
	}
}

func TestInterpretWordfill_MultipleBlanks(t *testing.T) {
	content := decodeContent(t, `{"words":[
		{"word":"Oxygen"}, " and ", {"word":"glucose"}, " are products"
	]}`)

	out := interpretModule(moduleWordfill, content, "")

	if len(out.questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out.questions))
	}
	if out.questions[0].Answer != "Oxygen, glucose" {
		t.Errorf("expected comma-joined answers in order, got %q", out.questions[0].Answer)
	}
}

func TestInterpretWordfill_AcceptedSpellingsUseFirst(t *testing.T) {
	content := decodeContent(t, `{"words":["Colour of chlorophyll: ", {"word":["green","Green"]}]}`)

	out := interpretModule(moduleWordfill, content, "")

	if len(out.questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out.questions))
	}
	if out.questions[0].Question != "Colour of chlorophyll: green" {
		t.Errorf("expected first accepted spelling inline, got %q", out.questions[0].Question)
	}
	if out.questions[0].Answer != "green" {
		t.Errorf("expected answer green, got %q", out.questions[0].Answer)
	}
}

func TestInterpretImageDescription(t *testing.T) {
	content := decodeContent(t, `{"words":["The capital of France is ", {"word":"Paris"}, "."]}`)

	out := interpretModule(moduleImageDescription, content, "")

	if len(out.questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out.questions))
	}
	q := out.questions[0]
	if q.Question != "The capital of France is ____." {
		t.Errorf("expected placeholder sentence, got %q", q.Question)
	}
	if q.Answer != "Paris" {
		t.Errorf("expected answer Paris, got %q", q.Answer)
	}
}

func TestInterpretConcept(t *testing.T) {
	content := decodeContent(t, `{"title":"Cells","text":"<p>All organisms are made of cells.</p>"}`)

	out := interpretModule(moduleConcept, content, "")

	if out.concept == nil {
		t.Fatal("expected a concept")
	}
	if out.concept.Title != "Cells" {
		t.Errorf("wrong title %q", out.concept.Title)
	}
	if out.concept.Content != "<p>All organisms are made of cells.</p>" {
		t.Errorf("wrong content %q", out.concept.Content)
	}
}

func TestInterpretConcept_Fallbacks(t *testing.T) {
	out := interpretModule(moduleConcept, map[string]any{}, "")

	if out.concept == nil {
		t.Fatal("expected a concept even with empty content")
	}
	if out.concept.Title != "Concept" {
		t.Errorf("expected fallback title, got %q", out.concept.Title)
	}
	if out.concept.Content != "" {
		t.Errorf("expected empty content, got %q", out.concept.Content)
	}
}

func TestInterpretUnknownType(t *testing.T) {
	content := decodeContent(t, `{"question":"?","correctAnswer":"!"}`)

	out := interpretModule("flashcards-v2", content, "")

	if len(out.questions) != 0 || out.concept != nil {
		t.Errorf("expected unknown module type to yield nothing, got %+v", out)
	}
}

func TestInterpretNilContent(t *testing.T) {
	out := interpretModule(moduleMultipleChoice, nil, "")

	if len(out.questions) != 0 || out.concept != nil {
		t.Errorf("expected nil content to yield nothing, got %+v", out)
	}
}

// Wrong-typed fields must behave like absent ones, whatever the module type.
func TestInterpretWrongTypedFields(t *testing.T) {
	cases := []struct {
		name       string
		moduleType string
		literal    string
	}{
		{"mc question is number", moduleMultipleChoice, `{"question":42,"correctAnswer":"x"}`},
		{"toggles is object", moduleToggles, `{"statement":"s","toggles":{"correct":"True"}}`},
		{"list items is string", moduleList, `{"title":"t","items":"Mercury"}`},
		{"grid definitions holds scalars", moduleGrid, `{"definitions":["Nucleus"]}`},
		{"wordfill words missing", moduleWordfill, `{"sentence":"no words array"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := interpretModule(tc.moduleType, decodeContent(t, tc.literal), "toggle-0")
			if len(out.questions) != 0 {
				t.Errorf("expected no questions, got %+v", out.questions)
			}
		})
	}
}
