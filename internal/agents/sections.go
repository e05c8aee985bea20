package agents

import "strings"

// Section is one labeled block of a sectioned completion.
type Section struct {
	Title string   `json:"title"`
	Body  []string `json:"body,omitempty"`
	Items []string `json:"items,omitempty"`
}

// Sections splits free-form completion text into labeled sections by line
// prefix: markdown headings and "Label:" lines open a section, bullet
// prefixes collect into Items, everything else into Body. The heuristics
// are intentionally shallow — the model output is not a format we control.
func Sections(text string) []Section {
	var sections []Section
	current := Section{Title: "Response"}
	touched := false

	flush := func() {
		if touched {
			sections = append(sections, current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if title, ok := headingTitle(line); ok {
			flush()
			current = Section{Title: title}
			touched = true
			continue
		}

		if item, ok := bulletItem(line); ok {
			current.Items = append(current.Items, item)
		} else {
			current.Body = append(current.Body, line)
		}
		touched = true
	}
	flush()
	return sections
}

func headingTitle(line string) (string, bool) {
	if strings.HasPrefix(line, "#") {
		return strings.TrimSpace(strings.TrimLeft(line, "#")), true
	}
	// "Key Points:" style labels, short enough to be a heading.
	if strings.HasSuffix(line, ":") && len(line) <= 40 {
		return strings.TrimSuffix(line, ":"), true
	}
	return "", false
}

func bulletItem(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	// Numbered lists: "1. idea"
	if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && line[1] == '.' {
		return strings.TrimSpace(line[2:]), true
	}
	return "", false
}
