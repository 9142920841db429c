package tracks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecommend(t *testing.T) {
	testCases := []struct {
		name         string
		prefs        Preferences
		expectedSlug string
		expectedName string
	}{
		{
			name:         "no preferences",
			prefs:        Preferences{},
			expectedSlug: SlugChatGPT,
			expectedName: "ChatGPT Mastery",
		},
		{
			name:         "goal is coding",
			prefs:        Preferences{Role: "student", Goal: "coding"},
			expectedSlug: SlugAICoding,
			expectedName: "AI for Developers",
		},
		{
			name:         "role is developer",
			prefs:        Preferences{Role: "developer", Goal: "career"},
			expectedSlug: SlugAICoding,
			expectedName: "AI for Developers",
		},
		{
			name:         "productivity-minded professional",
			prefs:        Preferences{Role: "professional", Goal: "productivity"},
			expectedSlug: SlugChatGPT,
			expectedName: "ChatGPT Mastery",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			slug, name := Recommend(testCase.prefs)
			require.Equal(t, testCase.expectedSlug, slug)
			require.Equal(t, testCase.expectedName, name)
		})
	}
}

func TestQuestionnaire(t *testing.T) {
	questions := Questionnaire("")
	require.Len(t, questions, 3)
	require.Equal(t, "Tell us about yourself", questions[0].Title)
	questions = Questionnaire("CANVA AI")
	require.Equal(t, "Personalizing CANVA AI", questions[0].Title)
	prefs := Preferences{}
	for _, question := range questions {
		prefs.Set(question.ID, question.Options[0].Value)
	}
	require.Equal(
		t,
		Preferences{Role: "student", Goal: "productivity", Level: "beginner"},
		prefs,
	)
}

func TestLookupCatalog(t *testing.T) {
	entry, ok := LookupCatalog("canva")
	require.True(t, ok)
	require.Equal(t, "CANVA AI", entry.Title)
	_, ok = LookupCatalog("bogus")
	require.False(t, ok)
}
