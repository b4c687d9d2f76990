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
	urlRegex        = regexp.MustCompile(`(https?://[^\s\x1b]+)`)
)

const (
	ansiRed      = "\x1b[31m"
	ansiDarkGray = "\x1b[90m"
	ansiReset    = "\x1b[0m"

	codeGutter = "┃"
)

// renderMarkdown renders an answer for a terminal of the given width.
// Autolinking is off so URLs stay plain text the terminal can detect.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	content = preprocessLinks(content)

	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	r := markdown.NewRenderer(width-4, 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

	out := fixInlineCode(string(rendered))
	out = colorURLs(out)
	out = frameCodeBlocks(out, width)
	return strings.TrimRight(out, "\n")
}

// preprocessLinks reduces [text](url) to the bare url.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the renderer's blue-background inline code for red text.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, ansiRed+"$1"+ansiReset)
}

func colorURLs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.Contains(line, codeGutter) {
			continue
		}
		lines[i] = urlRegex.ReplaceAllString(line, ansiRed+"$1"+ansiReset)
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the gutter of rendered code blocks with a
// horizontal frame labelled [code].
func frameCodeBlocks(s string, width int) string {
	lineLen := width - 4
	if lineLen < 8 {
		lineLen = 8
	}
	label := "[code]"
	left := (lineLen - len(label)) / 2
	top := ansiDarkGray + strings.Repeat("━", left) + ansiReset + label +
		ansiDarkGray + strings.Repeat("━", lineLen-len(label)-left) + ansiReset
	bottom := ansiDarkGray + strings.Repeat("━", lineLen) + ansiReset

	var out []string
	inBlock := false
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, codeGutter) {
			if !inBlock {
				inBlock = true
				out = append(out, "", top)
			}
			out = append(out, stripGutter(line))
			continue
		}
		if inBlock {
			inBlock = false
			out = append(out, bottom, "")
		}
		out = append(out, line)
	}
	if inBlock {
		out = append(out, bottom, "")
	}
	return strings.Join(out, "\n")
}

func stripGutter(line string) string {
	idx := strings.Index(line, codeGutter)
	if idx < 0 {
		return line
	}
	rest := line[idx+len(codeGutter):]
	return strings.TrimPrefix(rest, " ")
}
