package domain

// ToolCall is a request from the model to invoke one tool.
type ToolCall struct {
	ID   string         `json:"id" yaml:"id" mapstructure:"id"`                             // Provider call ID (generated when the provider omits it)
	Name string         `json:"name" yaml:"name" mapstructure:"name"`                       // Tool name as requested by the model
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"` // Decoded arguments
}

// ToolResult is the textual outcome of a tool call.
// Domain failures are ordinary results; IsError marks routing or handler faults.
type ToolResult struct {
	ID      string `json:"id"` // Must match the ToolCall.ID
	Name    string `json:"name"`
	Output  string `json:"output"`
	IsError bool   `json:"is_error,omitempty"`
}

// Parameter describes one argument of a tool.
type Parameter struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Type        string `json:"type" yaml:"type" mapstructure:"type"` // JSON schema primitive: string, integer, number, boolean
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
}

// Tool defines metadata about a tool available to the model.
type Tool struct {
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Description string      `json:"description" yaml:"description" mapstructure:"description"`
	Parameters  []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// JSONSchema renders the parameters as a JSON schema object.
func (t Tool) JSONSchema() map[string]any {
	props := make(map[string]any, len(t.Parameters))
	required := make([]string, 0, len(t.Parameters))
	for _, p := range t.Parameters {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		prop := map[string]any{"type": typ}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
