package content

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PassingScore is the minimum raw (0-10) score at which a task counts as
// completed rather than merely attempted.
const PassingScore = 7

var (
	scoreRegex    = regexp.MustCompile(`Score:\s*(\d+(\.\d+)?)/10`)
	feedbackRegex = regexp.MustCompile(`(?i)Feedback Summary:\s*(.*)`)
	ten           = decimal.NewFromInt(10)
)

// Evaluation is the content service's assessment of a submitted prompt and
// output.
type Evaluation struct {
	// Text is the free-form evaluation exactly as returned.
	Text string `json:"evaluation"`
	// RawScore is on the 0-10 scale used in the evaluation text.
	RawScore float64 `json:"rawScore"`
	// Score is RawScore projected onto a 0-100 scale.
	Score float64 `json:"score"`
	// FeedbackSummary is the one-line summary following "Feedback Summary:",
	// if the evaluation text included one.
	FeedbackSummary string `json:"feedbackSummary,omitempty"`
}

// Passed returns true if the Evaluation's score meets PassingScore.
func (e Evaluation) Passed() bool {
	return e.RawScore >= PassingScore
}

// ParseEvaluation extracts a score of the form "Score: X/10" and a feedback
// summary of the form "Feedback Summary: ..." from free-form evaluation text.
// Text lacking a recognizable score yields a score of zero; text lacking a
// feedback summary yields an empty summary. ParseEvaluation never fails.
func ParseEvaluation(text string) Evaluation {
	eval := Evaluation{Text: text}
	if match := scoreRegex.FindStringSubmatch(text); match != nil {
		if raw, err := decimal.NewFromString(match[1]); err == nil {
			eval.RawScore, _ = raw.Float64()
			eval.Score, _ = raw.Mul(ten).Float64()
		}
	}
	if match := feedbackRegex.FindStringSubmatch(text); match != nil {
		eval.FeedbackSummary = strings.TrimSpace(match[1])
	}
	return eval
}

// withRawScore overrides the parsed score with one the service reported as a
// structured field.
func (e Evaluation) withRawScore(rawScore float64) Evaluation {
	raw := decimal.NewFromFloat(rawScore)
	e.RawScore, _ = raw.Float64()
	e.Score, _ = raw.Mul(ten).Float64()
	return e
}
