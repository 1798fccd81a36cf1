package agents

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// wordsPerMinute is the reading speed assumed for reading-time estimates.
const wordsPerMinute = 200

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips any HTML a model may have emitted from plain-text
// fields such as the excerpt or meta description.
func SanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// WordCount counts words in the prose of a markdown document, skipping code
// blocks and raw HTML.
func WordCount(md string) int {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))

	count := 0
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Text:
			count += len(strings.Fields(string(n.Literal)))
		case *ast.CodeBlock, *ast.HTMLBlock:
			return ast.SkipChildren
		}
		return ast.GoToNext
	})
	return count
}

// ReadingTime estimates reading time in minutes for markdown content,
// rounding up and never returning less than 1 for non-empty content.
func ReadingTime(md string) int {
	words := WordCount(md)
	if words == 0 {
		return 0
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
