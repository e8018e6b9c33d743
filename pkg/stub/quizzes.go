package stub

import (
	"encoding/json"

	"github.com/cosmohq/cosmo/pkg/api"
)

func rawBool(b bool) json.RawMessage {
	if b {
		return json.RawMessage("true")
	}
	return json.RawMessage("false")
}

func rawInt(i int) json.RawMessage {
	data, _ := json.Marshal(i)
	return data
}

func rawString(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

// cannedQuizzes is the built-in catalog served by the stub. One quiz per
// section type keeps every grading path reachable offline.
func cannedQuizzes() []api.Quiz {
	return []api.Quiz{
		{
			ID:    "react-basics",
			Title: "React Basics",
			Scope: "components, hooks, and state",
			Sections: []api.Section{
				{
					Type: api.SectionTrueFalse,
					Questions: []api.Question{
						{
							Question: "Hooks can be called inside conditionals.",
							Answer:   rawBool(false),
						},
						{
							Question: "useState returns the current value and a setter.",
							Answer:   rawBool(true),
						},
					},
				},
				{
					Type: api.SectionMultipleChoice,
					Questions: []api.Question{
						{
							Question: "Which hook stores local component state?",
							Options:  []string{"useRef", "useState", "useMemo", "useCallback"},
							Answer:   rawInt(1),
						},
					},
				},
				{
					Type: api.SectionShortAnswer,
					Questions: []api.Question{
						{
							Question: "What does lifting state up mean?",
							Answer:   rawString("Moving shared state to the closest common ancestor component."),
						},
					},
				},
			},
		},
		{
			ID:    "hooks-deep-dive",
			Title: "Hooks Deep Dive",
			Scope: "effects and dependencies",
			Sections: []api.Section{
				{
					Type: api.SectionShortAnswer,
					Questions: []api.Question{
						{
							Question: "When does useEffect with an empty dependency array run?",
							Answer:   rawString("Once, after the first render."),
						},
					},
				},
			},
		},
	}
}
