package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEvaluation(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		assertions func(t *testing.T, eval Evaluation)
	}{
		{
			name: "score and feedback",
			text: "Score: 7.5/10\nFeedback Summary: Good job",
			assertions: func(t *testing.T, eval Evaluation) {
				require.Equal(t, 7.5, eval.RawScore)
				require.Equal(t, 75.0, eval.Score)
				require.Equal(t, "Good job", eval.FeedbackSummary)
				require.True(t, eval.Passed())
			},
		},
		{
			name: "integer score with whitespace",
			text: "Overall...\nScore:   6/10\nfeedback summary:   Be more specific.  ",
			assertions: func(t *testing.T, eval Evaluation) {
				require.Equal(t, 6.0, eval.RawScore)
				require.Equal(t, 60.0, eval.Score)
				require.Equal(t, "Be more specific.", eval.FeedbackSummary)
				require.False(t, eval.Passed())
			},
		},
		{
			name: "decimal arithmetic is exact",
			text: "Score: 7.3/10",
			assertions: func(t *testing.T, eval Evaluation) {
				require.Equal(t, 73.0, eval.Score)
			},
		},
		{
			name: "no score",
			text: "This evaluation forgot to include a score.",
			assertions: func(t *testing.T, eval Evaluation) {
				require.Equal(t, 0.0, eval.RawScore)
				require.Equal(t, 0.0, eval.Score)
				require.Empty(t, eval.FeedbackSummary)
				require.False(t, eval.Passed())
			},
		},
		{
			name: "score not in X/10 form",
			text: "Score: 8 out of 10",
			assertions: func(t *testing.T, eval Evaluation) {
				require.Equal(t, 0.0, eval.Score)
			},
		},
		{
			name: "empty text",
			text: "",
			assertions: func(t *testing.T, eval Evaluation) {
				require.Equal(t, Evaluation{}, eval)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			eval := ParseEvaluation(testCase.text)
			require.Equal(t, testCase.text, eval.Text)
			testCase.assertions(t, eval)
		})
	}
}

func TestEvaluationWithRawScore(t *testing.T) {
	eval := ParseEvaluation("Score: 2/10").withRawScore(9.5)
	require.Equal(t, 9.5, eval.RawScore)
	require.Equal(t, 95.0, eval.Score)
}
