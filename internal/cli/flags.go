package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	LogLevel   string
	ListModels bool

	// Translation flags
	Context      string
	File         string
	Output       string
	ContextLines int

	// Chat flags
	Chat      bool
	SessionID string

	// OpenAI flags
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAIProxy   string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:     "info",
		ContextLines: 2,
		OpenAIModel:  "gpt-3.5-turbo",
	}
}
