package vision

import "strings"

// ExtractJSON pulls a JSON object out of free-form model output.
// Models wrap structured answers in prose or Markdown fences more often
// than not, so the extraction is deliberately tolerant: a fenced
// ```json block wins, then the outermost brace-delimited span.
func ExtractJSON(text string) (string, bool) {
	if _, after, found := strings.Cut(text, "```json"); found {
		if block, _, closed := strings.Cut(after, "```"); closed {
			block = strings.TrimSpace(block)
			if block != "" {
				return block, true
			}
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1], true
	}
	return "", false
}
