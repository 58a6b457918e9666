package ui

import (
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
)

const codeBar = "┃"

// renderMarkdown renders a bot reply for the terminal. Links are reduced to
// their URL and left to the terminal to detect.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	content = mdLinkRegex.ReplaceAllString(content, "$2")

	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	doc := p.Parse([]byte(content))
	rendered := string(gomarkdown.Render(doc, markdown.NewRenderer(width-4, 0)))

	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")
	return strings.TrimRight(frameCodeBlocks(rendered, width), "\n")
}

// frameCodeBlocks replaces the renderer's left bar on code lines with a rule
// above and below the block.
func frameCodeBlocks(s string, width int) string {
	const darkGray, reset = "\x1b[90m", "\x1b[0m"
	rule := darkGray + strings.Repeat("━", max(width-4, 1)) + reset

	var out []string
	inCode := false
	for _, line := range strings.Split(s, "\n") {
		idx := strings.Index(line, codeBar)
		if idx < 0 {
			if inCode {
				out = append(out, rule)
				inCode = false
			}
			out = append(out, line)
			continue
		}
		if !inCode {
			out = append(out, rule)
			inCode = true
		}
		rest := line[idx+len(codeBar):]
		out = append(out, strings.TrimPrefix(rest, " "))
	}
	if inCode {
		out = append(out, rule)
	}
	return strings.Join(out, "\n")
}
