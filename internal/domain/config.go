package domain

// VectorConfig holds vectorization settings shared by the index and the embedder chain.
type VectorConfig struct {
	Model               string
	Dimensions          int
	DocumentInstruction string
	QueryInstruction    string
}

// DefaultVectorConfig returns settings for the all-MiniLM-L6-v2 sentence model.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "all-minilm",
		Dimensions: DefaultDimensions,
	}
}
