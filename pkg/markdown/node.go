// Package markdown classifies answer text into typed render nodes in a
// single deterministic pass: plain prose, inline code, fenced code blocks
// with an optional language tag, and numbered citation markers.
//
// The parser is pure and allocation-light; it keeps no state between calls
// and may be used concurrently.
package markdown

// NodeKind discriminates the four render node variants.
type NodeKind int

const (
	// NodePlainText is an unclassified run of prose, reproduced verbatim.
	NodePlainText NodeKind = iota

	// NodeInlineCode is a backtick-delimited inline code span.
	NodeInlineCode

	// NodeCodeBlock is a triple-backtick fenced block with an optional
	// language tag.
	NodeCodeBlock

	// NodeCitation is a bracketed positive integer like [1].
	NodeCitation
)

// Node is one classified span of the input.
//
// Surface always holds the verbatim source span the node was parsed from,
// so concatenating the Surface of every node in a parse reconstructs the
// original input exactly: no characters dropped, duplicated, or reordered.
type Node struct {
	Kind NodeKind

	// Text is the node content: the verbatim run for plain text, the text
	// between the delimiters for inline code, or the lines between the
	// fence lines for a code block. Empty for citations.
	Text string

	// Lang is the code block language tag, empty when absent.
	Lang string

	// Index is the parsed citation number.
	Index int

	// Surface is the exact source span, delimiters included.
	Surface string
}

func (k NodeKind) String() string {
	switch k {
	case NodePlainText:
		return "plain_text"
	case NodeInlineCode:
		return "inline_code"
	case NodeCodeBlock:
		return "code_block"
	case NodeCitation:
		return "citation"
	default:
		return "unknown"
	}
}
