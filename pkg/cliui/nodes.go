package cliui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cosmohq/cosmo/pkg/markdown"
)

var (
	citationStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	inlineCodeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	codeBlockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).Padding(0, 1)
	codeLangStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// RenderNodes converts a parsed answer into styled terminal output.
// Plain text passes through untouched; citations, inline code, and
// fenced code blocks each get their own styling.
func RenderNodes(nodes []markdown.Node) string {
	var b strings.Builder

	for _, node := range nodes {
		switch node.Kind {
		case markdown.NodePlainText:
			b.WriteString(node.Text)

		case markdown.NodeCitation:
			b.WriteString(citationStyle.Render(fmt.Sprintf("[%d]", node.Index)))

		case markdown.NodeInlineCode:
			b.WriteString(inlineCodeStyle.Render(node.Text))

		case markdown.NodeCodeBlock:
			b.WriteString("\n")
			if node.Lang != "" {
				b.WriteString(codeLangStyle.Render(node.Lang))
				b.WriteString("\n")
			}
			b.WriteString(codeBlockStyle.Render(strings.TrimRight(node.Text, "\n")))
			b.WriteString("\n")

		default:
			b.WriteString(node.Surface)
		}
	}

	return b.String()
}

// Citations returns the distinct citation indices in first-appearance order.
// Used to print a source legend under an answer.
func Citations(nodes []markdown.Node) []int {
	seen := make(map[int]bool)
	var indices []int

	for _, node := range nodes {
		if node.Kind != markdown.NodeCitation {
			continue
		}
		if seen[node.Index] {
			continue
		}
		seen[node.Index] = true
		indices = append(indices, node.Index)
	}

	return indices
}
