package domain

// ShipmentResponse is the structured answer of the shipment assistant.
type ShipmentResponse struct {
	Response  string   `json:"response"`
	ToolsUsed []string `json:"tools_used"`
}

// ResearchResponse is the structured answer of the research assistant.
type ResearchResponse struct {
	Topic     string   `json:"topic"`
	Result    string   `json:"result"`
	Summary   string   `json:"summary"`
	Sources   []string `json:"sources"`
	ToolsUsed []string `json:"tools_used"`
}
