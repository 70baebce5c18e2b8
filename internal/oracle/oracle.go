// Package oracle talks to the language model that proposes classification codes.
//
// The model is treated as an opaque text source: [Oracle.Classify] returns
// whatever the model answered, which may or may not contain a code. Callers
// extract and normalize the code themselves (see package hscode).
//
// Backends ([OpenAI], [Gemini]) are wrapped by decorators that add retries,
// answer caching and metrics. [Build] assembles the stack from config.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/hsclassify/internal/hscode"
)

// ErrEmptyAnswer is returned when the model responds without any content.
var ErrEmptyAnswer = errors.New("oracle returned an empty answer")

// Oracle proposes classification codes and answers questions about them.
type Oracle interface {
	// Classify returns the model's raw answer for a product description.
	Classify(ctx context.Context, description string, hint Hint) (string, error)

	// Answer responds to a question using only the given rows as context.
	Answer(ctx context.Context, question string, rows []Row) (string, error)
}

// Hint tells the model which tariff schedule to answer for.
// The zero Hint asks for a plain Harmonized System code.
type Hint struct {
	Jurisdiction hscode.Jurisdiction
	Label        string
	Digits       int
}

// HintFor builds a Hint from a jurisdiction table entry.
func HintFor(table *hscode.Table, j hscode.Jurisdiction) Hint {
	e, ok := table.Lookup(j)
	if !ok {
		return Hint{Jurisdiction: j.Normalize()}
	}
	return Hint{Jurisdiction: e.ID, Label: e.Label, Digits: e.Length}
}

// Row is one classified product given to Answer as context.
type Row struct {
	Description string `json:"description"`
	Code        string `json:"hsc_code"`
}

const classifySystemPrompt = "You are an expert in international trade classifications. " +
	"When asked for a classification code, reply with only the numeric code, " +
	"with no additional text, explanation, or punctuation."

const answerSystemPrompt = "You are a helpful assistant that answers questions based on a table of " +
	"product descriptions and HSC codes. Use only the information provided; do not invent data."

func classifyPrompt(description string, hint Hint) string {
	schedule := "Harmonized System Code (HSC, 6 or 8 digits)"
	if hint.Label != "" && hint.Digits > 0 {
		schedule = fmt.Sprintf("%s classification code (%d digits)", hint.Label, hint.Digits)
	}
	return fmt.Sprintf("Provide the %s for the following product description:\n\n'%s'", schedule, description)
}

func answerPrompt(question string, rows []Row) string {
	var b strings.Builder
	b.WriteString("Here is the table of products and HSC codes:\n")
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s -> %s", i+1, r.Description, r.Code)
	}
	fmt.Fprintf(&b, "\n\nQuestion: %s", question)
	return b.String()
}
