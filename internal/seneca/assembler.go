package seneca

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sparx365/homework-backend/internal/model"
)

// ErrExtractionFailed is returned when the payload cannot be walked at all.
// Per-module problems never surface as errors; they are logged and skipped.
var ErrExtractionFailed = errors.New("failed to process content")

// FallbackTitle is used when the upstream payload carries no title.
const FallbackTitle = "Seneca Homework"

// Extractor normalizes raw Seneca section payloads into render-ready
// sections. It is stateless and safe for concurrent use; all per-call state
// lives in the assembler created inside Extract.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log.With().Str("component", "extractor").Logger()}
}

// Extract walks every contentModules array of every content item as one
// continuous module stream and returns the ordered sections. A payload that
// is not an object or has no usable contents array yields an empty result
// with the fallback title, not an error.
func (e *Extractor) Extract(payload any) (*model.ExtractionResult, error) {
	var sections []model.Section
	title, err := e.ExtractStream(payload, func(s model.Section) {
		sections = append(sections, s)
	})
	if err != nil {
		return nil, err
	}
	return &model.ExtractionResult{Title: title, Sections: sections}, nil
}

// ExtractStream is the callback form of Extract: emit is invoked once per
// completed section, in document order. The WebSocket handler uses this to
// push sections to the client as they are assembled.
func (e *Extractor) ExtractStream(payload any, emit func(model.Section)) (title string, err error) {
	// One recovery boundary for structural failures outside the per-module
	// walk. Retrying is pointless — the pipeline is deterministic — so the
	// caller gets a single generic failure.
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("Extraction aborted")
			err = ErrExtractionFailed
		}
	}()

	title = FallbackTitle
	root := asMap(payload)
	if root == nil {
		return title, nil
	}
	if t := str(root, "title"); t != "" {
		title = t
	}

	contents := asSlice(root["contents"])
	if contents == nil {
		return title, nil
	}

	// State is reset here and only here: the whole payload is one stream,
	// not one stream per content item.
	asm := &assembler{log: e.log, emit: emit}
	for _, item := range contents {
		for _, raw := range asSlice(asMap(item)["contentModules"]) {
			asm.feed(raw)
		}
	}
	asm.finish()
	return title, nil
}

// assembler folds the module stream into sections. It tracks the current run
// of questions and, while a toggles module is being processed, an open
// toggle group. Concepts force the run to close; a toggle group closes as
// soon as its own module's entries are exhausted, so a group can never span
// two modules even when consecutive toggles modules repeat a statement.
type assembler struct {
	log   zerolog.Logger
	emit  func(model.Section)
	run   []model.Question
	group []model.Question
	index int
}

// feed processes one raw module. A panic while interpreting it is recovered
// and logged so one malformed module never blanks out the whole assignment.
func (a *assembler) feed(raw any) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn().Int("module_index", a.index).Interface("panic", r).
				Msg("Skipping malformed module")
		}
		a.index++
	}()

	module := asMap(raw)
	if module == nil {
		return
	}
	moduleType := str(module, "moduleType")
	content := asMap(module["content"])

	out := interpretModule(moduleType, content, fmt.Sprintf("toggle-%d", a.index))

	switch {
	case out.concept != nil:
		a.flushGroup()
		a.flushRun()
		a.emit(model.Section{Concept: out.concept})

	case moduleType == moduleToggles:
		a.flushGroup()
		a.group = append(a.group, out.questions...)
		// A toggles module is self-contained: close its group immediately.
		a.flushGroup()

	default:
		a.flushGroup()
		a.run = append(a.run, out.questions...)
	}
}

// finish flushes whatever is still buffered at end of stream.
func (a *assembler) finish() {
	a.flushGroup()
	a.flushRun()
}

func (a *assembler) flushGroup() {
	if len(a.group) == 0 {
		return
	}
	a.run = append(a.run, a.group...)
	a.group = nil
}

func (a *assembler) flushRun() {
	if len(a.run) == 0 {
		return
	}
	a.emit(model.Section{Questions: a.run})
	a.run = nil
}
