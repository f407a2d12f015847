// Package advisor decides what a questionnaire session should ask next.
//
// A Source inspects the transcript of answered questions and returns either
// one follow-up question or a conclusion with care suggestions. The server
// treats the Source as a black box so the rule engine can later be swapped
// for a model-backed implementation without touching the session code.
package advisor

import "context"

// QuestionType enumerates the answer widgets a question can render with.
type QuestionType string

const (
	TypeText        QuestionType = "text"
	TypeChoice      QuestionType = "choice"
	TypeMultiselect QuestionType = "multiselect"
)

// MaxOptions caps how many options a generated question may carry.
const MaxOptions = 5

// Exchange is one answered prompt from the session transcript, in the order
// the questions were asked.
type Exchange struct {
	Prompt string
	Type   QuestionType
	Answer []string
}

// Question is a follow-up the advisor wants asked next.
type Question struct {
	Prompt      string
	Type        QuestionType
	Options     []string
	Placeholder string
}

// Conclusion closes a session with a summary and care suggestions.
type Conclusion struct {
	Summary     string
	Suggestions []string
}

// Result carries exactly one of Question or Conclusion.
type Result struct {
	Question   *Question
	Conclusion *Conclusion
}

// Source produces the next step for a session. remaining is how many more
// questions the session may still ask; when it reaches zero the Source must
// conclude.
type Source interface {
	Next(ctx context.Context, history []Exchange, remaining int) (*Result, error)
}
