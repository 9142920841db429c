package tracks

// Well-known Track slugs.
const (
	SlugChatGPT  = "chatgpt"
	SlugAICoding = "ai-coding"
)

// Recommend picks a Track for a User who has not chosen one, based on their
// stated Preferences. Developers, and anyone whose goal is building AI apps,
// are steered toward AI-assisted coding; everyone else starts with ChatGPT.
func Recommend(prefs Preferences) (slug string, name string) {
	if prefs.Goal == "coding" || prefs.Role == "developer" {
		return SlugAICoding, "AI for Developers"
	}
	return SlugChatGPT, "ChatGPT Mastery"
}

// Question is one step of the enrollment questionnaire.
type Question struct {
	// ID is the Preferences field the answer populates: role, goal, or level.
	ID      string
	Title   string
	Options []Option
}

// Option is a selectable answer to a Question.
type Option struct {
	Label string
	Value string
}

// Questionnaire returns the questions asked before enrolling. When
// trackTitle is non-empty, the first question is phrased as personalizing
// that Track rather than recommending one.
func Questionnaire(trackTitle string) []Question {
	roleTitle := "Tell us about yourself"
	if trackTitle != "" {
		roleTitle = "Personalizing " + trackTitle
	}
	return []Question{
		{
			ID:    "role",
			Title: roleTitle,
			Options: []Option{
				{Label: "Student", Value: "student"},
				{Label: "Professional", Value: "professional"},
				{Label: "Developer", Value: "developer"},
				{Label: "Entrepreneur", Value: "founder"},
			},
		},
		{
			ID:    "goal",
			Title: "What is your main goal?",
			Options: []Option{
				{Label: "Boost Productivity", Value: "productivity"},
				{Label: "Learn Prompt Engineering", Value: "prompting"},
				{Label: "Build AI Apps", Value: "coding"},
				{Label: "Upskill for Career", Value: "career"},
			},
		},
		{
			ID:    "level",
			Title: "What's your current AI knowledge?",
			Options: []Option{
				{Label: "Total Beginner", Value: "beginner"},
				{Label: "I've used ChatGPT", Value: "intermediate"},
				{Label: "Advanced User", Value: "advanced"},
			},
		},
	}
}

// Set records an answer to the Question with the given ID.
func (p *Preferences) Set(questionID string, value string) {
	switch questionID {
	case "role":
		p.Role = value
	case "goal":
		p.Goal = value
	case "level":
		p.Level = value
	}
}

// CatalogEntry describes a Track anyone may browse and enroll in.
type CatalogEntry struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Catalog lists the Tracks offered by Mentora.
var Catalog = []CatalogEntry{
	{
		Slug:        SlugChatGPT,
		Title:       "ChatGPT Mastery",
		Description: "Master prompt engineering and AI workflows",
	},
	{
		Slug:        "canva",
		Title:       "CANVA AI",
		Description: "Design with AI-powered tools",
	},
	{
		Slug:        "notion",
		Title:       "NOTION AI",
		Description: "Boost productivity with AI assistance",
	},
	{
		Slug:        "cursor",
		Title:       "CURSOR AI",
		Description: "AI-powered code editor mastery",
	},
	{
		Slug:        "jasper",
		Title:       "JASPER AI",
		Description: "Content creation with AI",
	},
	{
		Slug:        "midjourney",
		Title:       "MIDJOURNEY",
		Description: "AI art generation mastery",
	},
}

// LookupCatalog returns the CatalogEntry with the given slug.
func LookupCatalog(slug string) (CatalogEntry, bool) {
	for _, entry := range Catalog {
		if entry.Slug == slug {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}
