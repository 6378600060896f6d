package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kuhul/internal/config"
	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/provider"
)

// ChatOptions holds flags for the chat command.
type ChatOptions struct {
	*RootOptions
	Provider    string
	Model       string
	Message     string
	System      string
	Temperature float64
	MaxTokens   int
	BaseURL     string
	APIKey      string
	ConfigFile  string
}

// NewChatCommand creates the chat command.
func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat request to a model provider",
		Long: fmt.Sprintf(`Send a chat request to a model provider and record the outcome in the
event journal: ai.chat.completed on success, ai.chat.failed on error.
State is unaffected either way.

Providers: %s

API keys come from --api-key, the providers config file, or the
provider's environment variable (e.g. OPENAI_API_KEY), in that order.

Exit codes:
  0 - Completion received
  1 - Provider failure (recorded as ai.chat.failed)
  2 - Command error`, strings.Join(provider.Names(), ", ")),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Provider, "provider", "", "target provider (required)")
	_ = cmd.MarkFlagRequired("provider")
	cmd.Flags().StringVar(&opts.Model, "model", "", "model name (required)")
	_ = cmd.MarkFlagRequired("model")
	cmd.Flags().StringVar(&opts.Message, "message", "", "user message (required)")
	_ = cmd.MarkFlagRequired("message")
	cmd.Flags().StringVar(&opts.System, "system", "", "optional system prompt")
	cmd.Flags().Float64Var(&opts.Temperature, "temperature", 0.2, "sampling temperature")
	cmd.Flags().IntVar(&opts.MaxTokens, "max-tokens", 512, "max response tokens")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "override provider API base URL")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "override provider API key")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "providers config file (YAML)")

	return cmd
}

func runChat(opts *ChatOptions, cmd *cobra.Command) error {
	if _, ok := provider.Registry[opts.Provider]; !ok {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unsupported provider %q (known: %s)", opts.Provider, strings.Join(provider.Names(), ", ")))
	}

	s, err := newSession(opts.RootOptions, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	command, err := s.issueCommand(journal.OpChat, map[string]any{
		"provider":    opts.Provider,
		"model":       opts.Model,
		"message":     opts.Message,
		"system":      opts.System,
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
	})
	if err != nil {
		return err
	}
	if err := s.apply(command); err != nil {
		return err
	}

	req, err := resolveRequest(opts)
	if err != nil {
		return err
	}

	content, meta, err := provider.NewClient().Chat(cmd.Context(), req)
	if err != nil {
		if _, emitErr := s.engine.EmitEvent(command.ID, journal.ChatFailed{
			Provider: opts.Provider,
			Error:    err.Error(),
		}); emitErr != nil {
			return WrapExitError(ExitFailure, "record chat failure", emitErr)
		}
		return WrapExitError(ExitFailure, "chat request failed", err)
	}

	if _, err := s.engine.EmitEvent(command.ID, journal.ChatCompleted{
		Provider: opts.Provider,
		Model:    opts.Model,
		Response: content,
		Meta:     meta,
	}); err != nil {
		return WrapExitError(ExitFailure, "record chat completion", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(map[string]any{
			"command_id": command.ID,
			"provider":   opts.Provider,
			"model":      opts.Model,
			"response":   content,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), content)
	return nil
}

// resolveRequest combines flags, the providers config file, and
// environment credentials into a provider request.
func resolveRequest(opts *ChatOptions) (provider.Request, error) {
	overrides, err := config.LoadOverrides(opts.ConfigFile)
	if err != nil {
		return provider.Request{}, WrapExitError(ExitCommandError, "load providers config", err)
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return provider.Request{}, WrapExitError(ExitCommandError, "load credentials", err)
	}

	override := overrides.Providers[opts.Provider]

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = override.BaseURL
	}
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = override.APIKey
	}
	if apiKey == "" {
		apiKey = creds.For(opts.Provider)
	}

	return provider.Request{
		Provider:    opts.Provider,
		Model:       opts.Model,
		Message:     opts.Message,
		System:      opts.System,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		BaseURL:     baseURL,
		APIKey:      apiKey,
	}, nil
}
