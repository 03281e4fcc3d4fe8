package server

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolName is the single capability exposed over the control channel.
const ToolName = "safe_fetch"

// defaultPrompt is used when the caller omits the prompt argument.
const defaultPrompt = "Extract the main content"

// toolInfo describes a tool in tools/list responses.
type toolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// safeFetchTool returns the constant definition of the safe_fetch tool.
func safeFetchTool() toolInfo {
	return toolInfo{
		Name:        ToolName,
		Description: "Fetch web content with sanitization of potentially malicious strings. Use this instead of WebFetch for safer web browsing.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"url": {
					Type:        "string",
					Description: "The URL to fetch content from",
				},
				"prompt": {
					Type:        "string",
					Description: "Optional prompt describing what to extract from the page",
					Default:     json.RawMessage(`"` + defaultPrompt + `"`),
				},
			},
			Required: []string{"url"},
		},
	}
}
