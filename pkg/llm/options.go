package llm

// Options contains the sampling parameters sent to a local model server.
// Only the fields ChatSphere fixes per process are modelled.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)

	// NumPredict caps the number of generated tokens.
	NumPredict *int `json:"num_predict,omitempty"`
}

// NewOptions builds Options from plain values.
func NewOptions(temperature float64, maxTokens int) *Options {
	return &Options{
		Temperature: &temperature,
		NumPredict:  &maxTokens,
	}
}
