package models

// ButtonAction is the behaviour of a frame button.
type ButtonAction string

const (
	ActionPost ButtonAction = "post"
	ActionLink ButtonAction = "link"
)

// Button is a follow-up action offered under a frame image.
type Button struct {
	Label  string       `json:"label"`
	Action ButtonAction `json:"action"`
	// Target is a path under the frame base for post buttons and an absolute URL for link buttons.
	Target string `json:"target"`
	// Value is carried back to Target as the "value" query parameter when the button is pressed.
	Value string `json:"value,omitempty"`
}

// FrameAction is the part of an inbound frame request the handlers act on.
type FrameAction struct {
	FID         int64  `json:"fid,omitempty"`
	ButtonIndex int    `json:"buttonIndex,omitempty"`
	InputText   string `json:"inputText,omitempty"`
	ButtonValue string `json:"buttonValue,omitempty"`
	// Submitted is true when the request carried a frame action payload.
	Submitted bool `json:"submitted"`
}

// Input returns the submitted text, falling back to the carried button value.
func (a FrameAction) Input() string {
	if a.InputText != "" {
		return a.InputText
	}
	return a.ButtonValue
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	ChainID      int64  `json:"chainId"`
	Network      string `json:"network"`
	TokenAddress string `json:"tokenAddress"`
	TokenSymbol  string `json:"tokenSymbol"`
}

// APIError is the standard error response.
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail contains error code and message.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProviderHealth is the status of one RPC endpoint.
type ProviderHealth struct {
	Name      string `json:"name"`
	ChainID   int64  `json:"chainId"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}
