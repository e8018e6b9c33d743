package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

const fence = "```"

var citationPattern = regexp.MustCompile(`\[([0-9]+)\]`)

// Parse scans input left to right and returns its ordered render nodes.
//
// At each cursor position the three delimited forms compete by earliest
// match position; ties resolve fenced block, then inline code, then
// citation. Text between matches coalesces into maximal plain-text runs.
// A lone opening delimiter with no matching close is never promoted; it
// stays plain text. Empty input yields an empty sequence.
//
// There is no escape mechanism for a literal backtick or bracket; this
// mirrors the upstream answer format, which never produces one.
func Parse(input string) []Node {
	var nodes []Node

	cursor := 0
	for cursor < len(input) {
		node, start, ok := nextToken(input, cursor)
		if !ok {
			nodes = append(nodes, plainText(input[cursor:]))
			break
		}

		if start > cursor {
			nodes = append(nodes, plainText(input[cursor:start]))
		}
		nodes = append(nodes, node)
		cursor = start + len(node.Surface)
	}

	return nodes
}

func plainText(run string) Node {
	return Node{Kind: NodePlainText, Text: run, Surface: run}
}

// nextToken finds the earliest delimited token at or after cursor.
func nextToken(input string, cursor int) (Node, int, bool) {
	best := -1
	var bestNode Node

	type matcher func(string, int) (Node, int, bool)
	for _, match := range []matcher{matchFence, matchInlineCode, matchCitation} {
		if node, start, ok := match(input, cursor); ok && (best < 0 || start < best) {
			best = start
			bestNode = node
		}
	}

	if best < 0 {
		return Node{}, 0, false
	}
	return bestNode, best, true
}

// matchFence finds the next fenced code block. The language tag is the
// non-whitespace token following the opening fence on the same line. An
// unterminated fence extends to end of input.
func matchFence(input string, cursor int) (Node, int, bool) {
	rel := strings.Index(input[cursor:], fence)
	if rel < 0 {
		return Node{}, 0, false
	}
	start := cursor + rel

	// Opening fence line: optional language tag, then the line break that
	// begins the block content.
	rest := input[start+len(fence):]
	lang := ""
	lineEnd := strings.IndexByte(rest, '\n')

	openLine := rest
	if lineEnd >= 0 {
		openLine = rest[:lineEnd]
	}
	if fields := strings.Fields(openLine); len(fields) > 0 {
		lang = fields[0]
	}

	if lineEnd < 0 {
		// Fence opened on the final line: no content at all.
		return Node{Kind: NodeCodeBlock, Lang: lang, Surface: input[start:]}, start, true
	}

	contentStart := start + len(fence) + lineEnd + 1
	body := input[contentStart:]

	// Closing fence begins a new line (or the content is empty and the
	// close immediately follows the opening line).
	var content string
	var end int
	switch {
	case strings.HasPrefix(body, fence):
		content = ""
		end = contentStart + len(fence)
	default:
		if closeAt := strings.Index(body, "\n"+fence); closeAt >= 0 {
			content = body[:closeAt]
			end = contentStart + closeAt + 1 + len(fence)
		} else {
			// Unterminated: the block runs to end of input.
			content = body
			end = len(input)
		}
	}

	node := Node{
		Kind:    NodeCodeBlock,
		Text:    content,
		Lang:    lang,
		Surface: input[start:end],
	}
	return node, start, true
}

// matchInlineCode finds the next single-backtick span. The closing
// delimiter must sit on the same line with at least one character between
// the two backticks.
func matchInlineCode(input string, cursor int) (Node, int, bool) {
	pos := cursor
	for {
		rel := strings.IndexByte(input[pos:], '`')
		if rel < 0 {
			return Node{}, 0, false
		}
		open := pos + rel

		rel = strings.IndexByte(input[open+1:], '`')
		if rel < 0 {
			return Node{}, 0, false
		}
		closing := open + 1 + rel

		content := input[open+1 : closing]
		if content != "" && !strings.ContainsRune(content, '\n') {
			node := Node{
				Kind:    NodeInlineCode,
				Text:    content,
				Surface: input[open : closing+1],
			}
			return node, open, true
		}

		// Empty span or a line break between delimiters: the closing
		// backtick becomes the next opening candidate.
		pos = closing
	}
}

// matchCitation finds the next bracketed positive integer.
func matchCitation(input string, cursor int) (Node, int, bool) {
	pos := cursor
	for {
		loc := citationPattern.FindStringIndex(input[pos:])
		if loc == nil {
			return Node{}, 0, false
		}
		start, end := pos+loc[0], pos+loc[1]

		surface := input[start:end]
		index, err := strconv.Atoi(surface[1 : len(surface)-1])
		if err == nil && index > 0 {
			node := Node{
				Kind:    NodeCitation,
				Index:   index,
				Surface: surface,
			}
			return node, start, true
		}

		// [0] or an overflowing digit run is not a citation.
		pos = start + 1
	}
}
