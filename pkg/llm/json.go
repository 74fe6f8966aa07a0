package llm

import "strings"

// Text concatenates all text content blocks from a message response.
func Text(resp *MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ExtractJSON pulls the first top-level JSON value out of oracle output that
// may be wrapped in markdown fences or surrounded by prose. It returns the
// first balanced `{...}` or `[...]` span, or the trimmed input when no span
// is found. Callers still json.Unmarshal the result; this only isolates the
// candidate span.
func ExtractJSON(text string) string {
	text = stripFences(text)

	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return text
	}

	if end := balancedEnd(text, start); end > start {
		return text[start : end+1]
	}
	return text
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```json", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimPrefix(text, fence)
			if idx := strings.LastIndex(text, "```"); idx >= 0 {
				text = text[:idx]
			}
			return strings.TrimSpace(text)
		}
	}
	return text
}

// balancedEnd scans from the opening bracket at start and returns the index
// of its matching close bracket, honoring JSON string literals and escapes.
// Returns -1 when the span never closes (truncated output).
func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
