package cleaner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// systemPrompt is the fixed instruction template prepended to every
// row. The model must answer with exactly one JSON object.
const systemPrompt = `### SYSTEM TASK ###
You are an automotive expert assistant helping extract structured knowledge from car repair discussions for a mechanic-assist chatbot and emergency troubleshooting system.

Your job is to extract a clear "problem" and the best matching "solution" from real forum car-related posts.

### INSTRUCTIONS ###
1. Carefully read the post title, post body, and top comments (1 to 3 comments, each labeled with the commenter and their score).
2. Determine if the post includes a specific, actionable car problem.
3. Determine if a comment provides a mechanically sound, complete solution.
4. If either is missing, return:
{"is_valid": false, "problem": null, "solution": null}
5. If both are present, return:
{"is_valid": true, "problem": "...", "solution": "..."}
6. If is_valid is true, you may add suggested general extra help:
{"is_valid": true, "problem": "...", "solution": "...", "extra_help": "..."}
7. Output only one single valid JSON object following the rules above. Do NOT include any explanation or extra text.`

// CommentEntry is one labeled comment recovered from the replies blob.
type CommentEntry struct {
	Author string
	Score  int
	Body   string
}

// entryPattern matches the canonical "{author} (Score: {n}): {body}"
// encoding; (?s) lets the body span embedded newlines.
var entryPattern = regexp.MustCompile(`(?s)^(.+?) \(Score: (-?\d+)\): (.*)$`)

// ParseComments deserializes the replies blob back into labeled comment
// entries. An entry that does not match the encoding falls back to its
// raw text verbatim; this function never fails.
func ParseComments(blob string) []CommentEntry {
	var entries []CommentEntry
	for _, chunk := range strings.Split(blob, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		m := entryPattern.FindStringSubmatch(chunk)
		if m == nil {
			entries = append(entries, CommentEntry{Body: chunk})
			continue
		}
		score, err := strconv.Atoi(m[2])
		if err != nil {
			entries = append(entries, CommentEntry{Body: chunk})
			continue
		}
		entries = append(entries, CommentEntry{Author: m[1], Score: score, Body: strings.TrimSpace(m[3])})
	}
	return entries
}

// BuildPrompt composes the instruction template with the row's title,
// body, and structured comment list.
func BuildPrompt(title, body string, comments []CommentEntry) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nPOST TITLE\n")
	sb.WriteString(title)
	sb.WriteString("\n\nPOST BODY\n")
	sb.WriteString(body)
	sb.WriteString("\n\nTOP COMMENTS\n")
	sb.WriteString(formatComments(comments))
	sb.WriteString("\n\nYOUR RESPONSE (JSON ONLY, NO EXPLANATION)\n")
	return sb.String()
}

// formatComments renders entries as a numbered JSON list so the model
// sees clearly delimited comments.
func formatComments(comments []CommentEntry) string {
	items := make([]map[string]string, 0, len(comments))
	for i, c := range comments {
		label := fmt.Sprintf("Comment %d", i+1)
		text := c.Body
		if c.Author != "" {
			text = fmt.Sprintf("%s (Score: %d): %s", c.Author, c.Score, c.Body)
		}
		items = append(items, map[string]string{label: text})
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
