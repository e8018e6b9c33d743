package stub

import (
	"fmt"
	"strings"
)

// cannedAnswer builds a synthetic answer that exercises every structure
// the renderer handles: a citation, inline code, and a fenced block.
func cannedAnswer(question string) string {
	return fmt.Sprintf(
		"Here is what the indexed notes say about %q [1].\n\n"+
			"The short version: reach for `useState` when a component needs "+
			"local state, and move shared state up [2].\n\n"+
			"```jsx\nconst [count, setCount] = useState(0);\n```\n\n"+
			"See source [1] for the full walkthrough.",
		question,
	)
}

// tokenize splits text into word-sized tokens, each carrying its trailing
// whitespace, the same shape a model's token stream has.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	inSpace := false
	for _, r := range text {
		isSpace := r == ' ' || r == '\n' || r == '\t'
		if inSpace && !isSpace && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		inSpace = isSpace
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
