package core

import (
	"fmt"
	"strings"
)

const tagsPrompt = `
Analyze the following context and generate 3 to 5 useful tags that represent its key themes or categories.

Context:
"""%s"""

Respond with a plain list of comma-separated tags like:
urgent, planning, client, budget, design
`

// QuotaTags is used in place of derived tags when the completion service is
// out of quota.
func QuotaTags() []string {
	return []string{"general", "ai", "context"}
}

func TagsPrompt(content string) string {
	return fmt.Sprintf(tagsPrompt, content)
}

// ParseTags never fails: the reply is split on commas and newlines, each
// token is trimmed, lower-cased and loses a leading '#'. Empty tokens are
// dropped, order and duplicates are kept.
func ParseTags(reply string) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		tag := strings.ToLower(strings.TrimSpace(f))
		tag = strings.TrimSpace(strings.TrimPrefix(tag, "#"))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
