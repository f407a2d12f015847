package surveyclient

import (
	"context"
	"errors"
	"strings"
)

// MaxRenderedOptions caps how many options a choice question renders. Extra
// options supplied by the backend are silently dropped.
const MaxRenderedOptions = 5

// ErrEmptyAnswer marks a confirm with no usable input. It is a local no-op:
// the caller re-prompts without any network call having been made.
var ErrEmptyAnswer = errors.New("answer is empty")

// QuestionView is a question prepared for rendering.
type QuestionView struct {
	Prompt      string
	Type        string
	Options     []string
	Placeholder string
}

// View prepares a question for display, applying the option cap.
func View(q *Question) *QuestionView {
	v := &QuestionView{
		Prompt:      q.Prompt,
		Type:        q.Type,
		Options:     q.Options,
		Placeholder: q.Placeholder,
	}
	if len(v.Options) > MaxRenderedOptions {
		v.Options = v.Options[:MaxRenderedOptions]
	}
	return v
}

// BuildAnswer turns raw widget input into the answer shape Submit expects,
// enforcing the per-type rules: free text must have non-whitespace content,
// a single choice must be exactly one rendered option, a multi-choice must
// be a non-empty subset of the rendered options. Empty input returns
// ErrEmptyAnswer before any network activity.
func BuildAnswer(q *Question, raw []string) ([]string, error) {
	view := View(q)
	switch q.Type {
	case TypeText:
		joined := strings.TrimSpace(strings.Join(raw, "\n"))
		if joined == "" {
			return nil, ErrEmptyAnswer
		}
		return []string{joined}, nil

	case TypeChoice:
		selected := nonEmpty(raw)
		if len(selected) == 0 {
			return nil, ErrEmptyAnswer
		}
		if len(selected) != 1 {
			return nil, errors.New("select exactly one option")
		}
		if !contains(view.Options, selected[0]) {
			return nil, errors.New("selection is not one of the offered options")
		}
		return selected, nil

	case TypeMultiselect:
		var answer []string
		for _, s := range nonEmpty(raw) {
			if !contains(view.Options, s) {
				return nil, errors.New("selection is not one of the offered options")
			}
			if !contains(answer, s) {
				answer = append(answer, s)
			}
		}
		if len(answer) == 0 {
			return nil, ErrEmptyAnswer
		}
		return answer, nil
	}
	return nil, errors.New("unknown question type: " + q.Type)
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// Prompter collects raw input for one rendered question. Implementations
// return the user's selections or typed text; empty input is allowed and
// treated as a no-op confirm.
type Prompter interface {
	Ask(ctx context.Context, view *QuestionView, progress Progress) ([]string, error)
	Concluded(ctx context.Context, conclusion *Conclusion) error
}

// Run drives a full session: initialize, loop prompting and submitting until
// the session is Terminal, then report the conclusion. Empty confirms
// re-prompt; transport errors abort with the question preserved in the
// engine so a caller may resume.
func Run(ctx context.Context, engine *Engine, prompter Prompter) error {
	if _, err := engine.Initialize(ctx); err != nil {
		return err
	}
	for engine.State() != StateTerminal {
		q := engine.CurrentQuestion()
		raw, err := prompter.Ask(ctx, View(q), engine.Progress())
		if err != nil {
			return err
		}
		step, err := engine.Submit(ctx, raw)
		if errors.Is(err, ErrEmptyAnswer) {
			continue
		}
		if err != nil {
			return err
		}
		if step.Done {
			return prompter.Concluded(ctx, step.Conclusion)
		}
	}
	return prompter.Concluded(ctx, engine.Conclusion())
}
