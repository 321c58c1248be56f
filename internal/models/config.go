package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// OCR engine config
	OCR OCRConfig `yaml:"ocr"`

	// AI config
	AI AIConfig `yaml:"ai"`

	// Extraction pipeline config
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Extraction strategies, applied to every document in listed order
	Strategies []StrategyConfig `yaml:"strategies"`
}

// OCRConfig points at the external OCR engine.
type OCRConfig struct {
	Endpoint       string `yaml:"endpoint"`        // block-analysis HTTP endpoint
	TimeoutSeconds int    `yaml:"timeout_seconds"` // default: 60
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// OpenAI
	OpenAI OpenAIConfig `yaml:"openai"`

	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// Ollama (local)
	Ollama OllamaConfig `yaml:"ollama"`
}

// OpenAIConfig for OpenAI/Azure OpenAI
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o"
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// OllamaConfig for local Ollama
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // Default: "http://localhost:11434"
	Model   string `yaml:"model"`    // e.g., "mistral", "llama3"
}

// PipelineConfig tunes the orchestrator.
type PipelineConfig struct {
	// Workers bounds extraction parallelism across the (document, strategy)
	// grid. 0 or 1 means fully sequential.
	Workers int `yaml:"workers"`

	// LegacyJSONScan switches the response scanner back to the first
	// non-greedy {...} span instead of balanced-brace matching.
	LegacyJSONScan bool `yaml:"legacy_json_scan"`
}

// StrategyConfig is one named (model, OCR-flag) pairing from the config file.
// Provider "regex" selects the deterministic parser path with no model call.
type StrategyConfig struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"` // "openai", "gemini", "ollama", "regex"
	Model    string `yaml:"model,omitempty"`
	UseOCR   bool   `yaml:"use_ocr"`
}
