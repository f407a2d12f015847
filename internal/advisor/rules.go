package advisor

import (
	"context"
	"fmt"
	"strings"
)

// rule pairs a trigger with the question to ask when it fires. Rules are
// evaluated in order and a prompt is never asked twice in one session.
type rule struct {
	matches  func(history []Exchange) bool
	question Question
}

// RuleSource is a deterministic Source driven by an ordered rule table.
type RuleSource struct {
	rules []rule
}

// NewRuleSource builds the default triage rule set used for patient intake.
func NewRuleSource() *RuleSource {
	return &RuleSource{rules: defaultRules()}
}

func defaultRules() []rule {
	return []rule{
		{
			matches: always,
			question: Question{
				Prompt:      "What brings you in today? Describe your main concern.",
				Type:        TypeText,
				Placeholder: "e.g. persistent headaches for the past week",
			},
		},
		{
			matches: always,
			question: Question{
				Prompt:  "How long have you been experiencing this concern?",
				Type:    TypeChoice,
				Options: []string{"Less than a week", "1-4 weeks", "1-6 months", "More than 6 months"},
			},
		},
		{
			matches: always,
			question: Question{
				Prompt:  "How severe would you rate your symptoms?",
				Type:    TypeChoice,
				Options: []string{"Mild", "Moderate", "Severe", "Very severe"},
			},
		},
		{
			matches: answered("diabetes"),
			question: Question{
				Prompt:  "How often do you monitor your blood sugar?",
				Type:    TypeChoice,
				Options: []string{"Daily", "Weekly", "Rarely", "Never"},
			},
		},
		{
			matches: answered("hypertension"),
			question: Question{
				Prompt:  "When did you last have your blood pressure checked?",
				Type:    TypeChoice,
				Options: []string{"Within the last month", "Within the last year", "Over a year ago", "Never"},
			},
		},
		{
			matches: answered("asthma"),
			question: Question{
				Prompt:  "Have you needed your rescue inhaler in the past month?",
				Type:    TypeChoice,
				Options: []string{"No", "Once or twice", "Weekly", "Daily"},
			},
		},
		{
			matches: always,
			question: Question{
				Prompt:  "Which of the following apply to your current symptoms?",
				Type:    TypeMultiselect,
				Options: []string{"Fever", "Fatigue", "Pain", "Nausea", "Sleep problems", "Appetite changes"},
			},
		},
		{
			matches: always,
			question: Question{
				Prompt:      "Are you currently taking any medications? List them if so.",
				Type:        TypeText,
				Placeholder: "e.g. metformin 500mg twice daily, or 'none'",
			},
		},
	}
}

func always(_ []Exchange) bool { return true }

// answered reports whether any recorded answer contains the given term.
func answered(term string) func([]Exchange) bool {
	return func(history []Exchange) bool {
		for _, ex := range history {
			for _, a := range ex.Answer {
				if strings.Contains(strings.ToLower(a), term) {
					return true
				}
			}
		}
		return false
	}
}

func asked(history []Exchange, prompt string) bool {
	for _, ex := range history {
		if ex.Prompt == prompt {
			return true
		}
	}
	return false
}

// Next returns the first unasked question whose rule fires, or a conclusion
// when the question budget is spent or the rule table is exhausted.
func (s *RuleSource) Next(_ context.Context, history []Exchange, remaining int) (*Result, error) {
	if remaining > 0 {
		for _, r := range s.rules {
			if asked(history, r.question.Prompt) {
				continue
			}
			if !r.matches(history) {
				continue
			}
			q := r.question
			if len(q.Options) > MaxOptions {
				q.Options = q.Options[:MaxOptions]
			}
			return &Result{Question: &q}, nil
		}
	}
	return &Result{Conclusion: conclude(history)}, nil
}

func conclude(history []Exchange) *Conclusion {
	var concern, severity string
	for _, ex := range history {
		switch ex.Prompt {
		case "What brings you in today? Describe your main concern.":
			if len(ex.Answer) > 0 {
				concern = ex.Answer[0]
			}
		case "How severe would you rate your symptoms?":
			if len(ex.Answer) > 0 {
				severity = ex.Answer[0]
			}
		}
	}

	summary := "Intake complete. A clinician will review your responses."
	if concern != "" {
		summary = fmt.Sprintf("Intake complete for reported concern: %s.", concern)
	}

	suggestions := []string{"Schedule a consultation to review your responses with a clinician."}
	switch severity {
	case "Severe", "Very severe":
		suggestions = append(suggestions, "Given the severity you reported, consider seeking care promptly.")
	}
	for _, ct := range conditionTips {
		if answered(ct.term)(history) {
			suggestions = append(suggestions, ct.tip)
		}
	}
	if len(suggestions) > MaxOptions {
		suggestions = suggestions[:MaxOptions]
	}

	return &Conclusion{Summary: summary, Suggestions: suggestions}
}

var conditionTips = []struct {
	term string
	tip  string
}{
	{"diabetes", "Keep a log of your blood sugar readings to share at your visit."},
	{"hypertension", "Bring recent blood pressure readings to your visit if you have them."},
	{"asthma", "Note how often you use your rescue inhaler before your visit."},
}
