package seneca

import (
	"strings"

	"github.com/sparx365/homework-backend/internal/model"
)

// Module type discriminators seen in Seneca section payloads. Anything else
// is passed over without output.
const (
	moduleConcept          = "concept"
	moduleMultipleChoice   = "multiple-choice"
	moduleToggles          = "toggles"
	moduleList             = "list"
	moduleGrid             = "grid"
	moduleWordfill         = "wordfill"
	moduleImageDescription = "image-description"
)

// answerSeparator joins multi-value answers. Renderers split on this exact
// separator to show bullet lists.
const answerSeparator = ", "

// moduleOutput is what interpreting one raw module yields: zero or more
// questions, or one concept, or nothing at all.
type moduleOutput struct {
	questions []model.Question
	concept   *model.Concept
}

// interpretModule maps one raw content module to normalized output. It is
// pure and total: a module lacking the fields its type requires yields empty
// output, never an error. groupKey tags toggle questions so questions from
// the same toggles module stay visually grouped downstream.
func interpretModule(moduleType string, content map[string]any, groupKey string) moduleOutput {
	if content == nil {
		return moduleOutput{}
	}

	switch moduleType {
	case moduleConcept:
		return interpretConcept(content)
	case moduleMultipleChoice:
		return interpretMultipleChoice(content)
	case moduleToggles:
		return interpretToggles(content, groupKey)
	case moduleList:
		return interpretList(content)
	case moduleGrid:
		return interpretGrid(content)
	case moduleWordfill:
		return interpretBlanks(content, model.QuestionTypeWordfill)
	case moduleImageDescription:
		return interpretBlanks(content, model.QuestionTypeImageDescription)
	default:
		return moduleOutput{}
	}
}

func interpretConcept(content map[string]any) moduleOutput {
	title := str(content, "title")
	if title == "" {
		title = "Concept"
	}
	return moduleOutput{concept: &model.Concept{
		Title:   title,
		Content: str(content, "text", "html"),
	}}
}

func interpretMultipleChoice(content map[string]any) moduleOutput {
	question := str(content, "question")
	answer := str(content, "correctAnswer")
	if question == "" || answer == "" {
		return moduleOutput{}
	}
	return moduleOutput{questions: []model.Question{{
		Type:     model.QuestionTypeMultipleChoice,
		Question: question,
		Answer:   answer,
	}}}
}

// interpretToggles emits one question per toggle entry carrying a correct
// value. All of them share the statement as prompt and the same group key,
// distinguished only by their answers.
func interpretToggles(content map[string]any, groupKey string) moduleOutput {
	statement := str(content, "statement")
	if statement == "" {
		return moduleOutput{}
	}

	var out moduleOutput
	for _, entry := range asSlice(content["toggles"]) {
		toggle := asMap(entry)
		if toggle == nil {
			continue
		}
		correct := str(toggle, "correct")
		if correct == "" {
			continue
		}
		out.questions = append(out.questions, model.Question{
			Type:        model.QuestionTypeToggle,
			Question:    statement,
			Answer:      correct,
			ToggleGroup: groupKey,
		})
	}
	return out
}

func interpretList(content map[string]any) moduleOutput {
	title := str(content, "title")
	if title == "" {
		return moduleOutput{}
	}

	var out moduleOutput
	for _, item := range asSlice(content["items"]) {
		answer := strings.TrimSpace(text(item))
		if answer == "" {
			continue
		}
		out.questions = append(out.questions, model.Question{
			Type:     model.QuestionTypeList,
			Question: title,
			Answer:   answer,
		})
	}
	return out
}

func interpretGrid(content map[string]any) moduleOutput {
	var out moduleOutput
	for _, entry := range asSlice(content["definitions"]) {
		def := asMap(entry)
		if def == nil {
			continue
		}
		word := wordText(def["word"])
		definition := str(def, "text")
		if word == "" || definition == "" {
			continue
		}
		out.questions = append(out.questions, model.Question{
			Type:     model.QuestionTypeGrid,
			Question: word,
			Answer:   definition,
		})
	}
	return out
}

// interpretBlanks handles the shared fragment/blank model of wordfill and
// image-description modules. The words array mixes literal text fragments
// with blank slots; the question is the sentence rebuilt in order, with each
// blank shown as its expected word (wordfill) or a ____ placeholder
// (image-description). The answer lists the expected words in order.
func interpretBlanks(content map[string]any, questionType model.QuestionType) moduleOutput {
	words := asSlice(content["words"])
	if words == nil {
		return moduleOutput{}
	}

	var sentence strings.Builder
	var answers []string
	for _, element := range words {
		if fragment, ok := element.(string); ok {
			sentence.WriteString(fragment)
			continue
		}
		slot := asMap(element)
		if slot == nil {
			continue
		}
		expected := blankWord(slot)
		if expected == "" {
			continue
		}
		if questionType == model.QuestionTypeImageDescription {
			sentence.WriteString("____")
		} else {
			sentence.WriteString(expected)
		}
		answers = append(answers, expected)
	}

	question := strings.TrimSpace(sentence.String())
	if question == "" || len(answers) == 0 {
		return moduleOutput{}
	}
	return moduleOutput{questions: []model.Question{{
		Type:     questionType,
		Question: question,
		Answer:   strings.Join(answers, answerSeparator),
	}}}
}
