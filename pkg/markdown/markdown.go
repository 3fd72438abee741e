package markdown

import (
	"regexp"
	"strings"
)

// Clean drops stray emphasis-marker lines ("**" or "__") and trims the result.
func Clean(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "**" || t == "__" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

type Kind int

const (
	Paragraph Kind = iota
	Heading1
	Heading2
	Heading3
	ListItem
	Quote
	Code
	Blank
)

// Block is one renderable line group of a report.
type Block struct {
	Kind Kind
	Text string
}

var (
	orderedItem = regexp.MustCompile(`^\d+[.)]\s+`)
	inlineMarks = regexp.MustCompile("(\\*\\*|__|`)")
	linkPattern = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// StripInline removes emphasis/code markers and collapses links to their label.
func StripInline(s string) string {
	s = linkPattern.ReplaceAllString(s, "$1")
	return inlineMarks.ReplaceAllString(s, "")
}

// Parse splits cleaned markdown into blocks. It covers the subset the report
// generator emits: ATX headings, bullet/numbered lists, quotes, fenced code and
// paragraphs.
func Parse(content string) []Block {
	var blocks []Block
	var para []string
	inCode := false

	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, Block{Kind: Paragraph, Text: StripInline(strings.Join(para, " "))})
			para = nil
		}
	}

	for _, line := range strings.Split(Clean(content), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			flush()
			inCode = !inCode
			continue
		}
		if inCode {
			blocks = append(blocks, Block{Kind: Code, Text: line})
			continue
		}

		switch {
		case trimmed == "":
			flush()
			if n := len(blocks); n > 0 && blocks[n-1].Kind != Blank {
				blocks = append(blocks, Block{Kind: Blank})
			}
		case strings.HasPrefix(trimmed, "### "):
			flush()
			blocks = append(blocks, Block{Kind: Heading3, Text: StripInline(trimmed[4:])})
		case strings.HasPrefix(trimmed, "## "):
			flush()
			blocks = append(blocks, Block{Kind: Heading2, Text: StripInline(trimmed[3:])})
		case strings.HasPrefix(trimmed, "# "):
			flush()
			blocks = append(blocks, Block{Kind: Heading1, Text: StripInline(trimmed[2:])})
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			flush()
			blocks = append(blocks, Block{Kind: ListItem, Text: StripInline(trimmed[2:])})
		case orderedItem.MatchString(trimmed):
			flush()
			blocks = append(blocks, Block{Kind: ListItem, Text: StripInline(trimmed)})
		case strings.HasPrefix(trimmed, ">"):
			flush()
			blocks = append(blocks, Block{Kind: Quote, Text: StripInline(strings.TrimSpace(trimmed[1:]))})
		default:
			para = append(para, trimmed)
		}
	}
	flush()

	for len(blocks) > 0 && blocks[len(blocks)-1].Kind == Blank {
		blocks = blocks[:len(blocks)-1]
	}
	return blocks
}
