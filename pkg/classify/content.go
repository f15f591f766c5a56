package classify

import (
	"encoding/json"
	"strings"
)

// contentBlock is one entry of an array-form message body. Tool invocations
// appear under two historical block types ("tool_use" and "toolCall"); both
// are honored.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Name string `json:"name"`
}

// decodeBlocks unmarshals array-form content, skipping entries that are not
// JSON objects the way malformed transcript lines are skipped elsewhere.
func decodeBlocks(content json.RawMessage) ([]contentBlock, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, false
	}
	blocks := make([]contentBlock, 0, len(raw))
	for _, r := range raw {
		var b contentBlock
		if err := json.Unmarshal(r, &b); err != nil {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, true
}

// TextContent extracts prose from a message body. String-form content is
// returned verbatim; array-form content yields the text blocks joined with
// single spaces. Anything else yields "".
func TextContent(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}

	blocks, ok := decodeBlocks(content)
	if !ok {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, " ")
}

// ToolNames extracts tool invocation names from array-form content, in
// block order. A tool block without a name reports as "unknown". String-form
// content never carries tools.
func ToolNames(content json.RawMessage) []string {
	blocks, ok := decodeBlocks(content)
	if !ok {
		return nil
	}
	var tools []string
	for _, b := range blocks {
		if b.Type == "tool_use" || b.Type == "toolCall" {
			name := b.Name
			if name == "" {
				name = "unknown"
			}
			tools = append(tools, name)
		}
	}
	return tools
}
