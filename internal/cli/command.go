package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/subtrans/internal"
	"codeberg.org/snonux/subtrans/internal/session"
	"codeberg.org/snonux/subtrans/internal/translation"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "subtrans [text]",
		Short: "Subtitle translator into Chinese",
		Long: `subtrans translates subtitle lines into Simplified Chinese using an
OpenAI-compatible chat completion API.

Examples:
  subtrans "How are you?"                    # Translate a single line
  subtrans --context "Hi Tom." "Long time."   # Translate with surrounding lines
  subtrans --file movie.srt                   # Translate a subtitle file to movie.zh.srt
  subtrans --chat --session demo              # Multi-turn chat in Chinese`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.subtrans.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")

	// Local flags
	cmd.Flags().StringVarP(&flags.Context, "context", "c", "", "Surrounding subtitle lines used to keep names and tone consistent")
	cmd.Flags().StringVarP(&flags.File, "file", "f", "", "Translate a subtitle file (.srt or plain text, one line per cue)")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Output file for --file (default is <name>.zh<ext>)")
	cmd.Flags().IntVar(&flags.ContextLines, "context-lines", flags.ContextLines, "Neighbouring cues on each side passed as context when translating files")
	cmd.Flags().BoolVar(&flags.Chat, "chat", false, "Start a multi-turn chat session reading messages from stdin")
	cmd.Flags().StringVar(&flags.SessionID, "session", "", "Chat session id (default: random)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List chat models available for the current API key")

	// OpenAI flags
	cmd.Flags().StringVar(&flags.OpenAIModel, "model", flags.OpenAIModel, "Chat model used for translation")
	cmd.Flags().StringVar(&flags.OpenAIBaseURL, "base-url", "", "OpenAI-compatible API endpoint (/v1 is appended when missing)")
	cmd.Flags().StringVar(&flags.OpenAIProxy, "proxy", "", "HTTPS proxy, e.g. http://127.0.0.1:7890")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("openai.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("openai.base_url", cmd.Flags().Lookup("base-url"))
	viper.BindPFlag("openai.proxy", cmd.Flags().Lookup("proxy"))
	viper.BindPFlag("translate.context_lines", cmd.Flags().Lookup("context-lines"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".subtrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".subtrans")
	}

	// Environment variables
	viper.SetEnvPrefix("SUBTRANS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.api_key")
}

// TranslatorConfig assembles the translator configuration from flags, config file and environment
func TranslatorConfig() translation.Config {
	config := translation.Config{
		APIKey:  GetOpenAIKey(),
		BaseURL: viper.GetString("openai.base_url"),
		Model:   viper.GetString("openai.model"),
		User:    viper.GetString("openai.user"),
	}
	if proxy := viper.GetString("openai.proxy"); proxy != "" {
		config.Proxy = translation.ProxyConfig{"https": proxy}
	}
	return config
}

// SessionConfig returns the chat session cache bounds
func SessionConfig() session.Config {
	config := session.DefaultConfig()
	if viper.IsSet("session.max_size") {
		config.MaxSize = viper.GetInt("session.max_size")
	}
	if viper.IsSet("session.ttl") {
		config.TTL = viper.GetDuration("session.ttl")
	}
	return config
}

// NewLogger creates a text slog logger writing to w at the given level
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
