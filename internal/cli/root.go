// Package cli defines the cobra commands of the terminal advisor client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fi-advisor-backend/internal/config"
	"fi-advisor-backend/internal/logging"
	"fi-advisor-backend/internal/models"
	"fi-advisor-backend/internal/repository"
	"fi-advisor-backend/internal/services"
)

type options struct {
	provider        string
	credentialsFile string
	logLevel        string
}

// app is what every subcommand works against once flags are resolved.
type app struct {
	cfg         *config.Config
	credentials *repository.FileCredentialRepo
}

func (a *app) newSession(errOut io.Writer) (*services.Session, error) {
	provider, err := services.NewProvider(services.ProviderOptions{
		Kind:        a.cfg.Provider,
		Credentials: a.credentials,
		Endpoint:    a.cfg.GeminiEndpoint,
		Model:       a.cfg.GeminiModel,
		LocalDelay:  a.cfg.LocalResponseDelay,
	})
	if err != nil {
		return nil, err
	}
	return services.NewSession(uuid.New(), services.SessionOptions{
		Provider:  provider,
		Publisher: toastPrinter(errOut),
		Timeout:   a.cfg.AdvisorTimeout,
	}), nil
}

// toastPrinter shows notifications on the terminal. Other events are dropped
// because the commands print turns themselves.
func toastPrinter(w io.Writer) services.EventPublisher {
	return services.PublisherFunc(func(_ context.Context, _ uuid.UUID, event models.Event) error {
		if event.Type != models.EventToast {
			return nil
		}
		n, ok := event.Payload.(models.Notification)
		if !ok {
			return nil
		}
		_, err := fmt.Fprintf(w, "[%s] %s: %s\n", n.Severity, n.Title, n.Description)
		return err
	})
}

// NewRootCommand builds the advisor command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	a := &app{}

	root := &cobra.Command{
		Use:   "advisor",
		Short: "Chat with your AI financial advisor from the terminal",
		Long: `advisor answers questions about your Fi financial profile, either with
the built-in offline advisor or through Gemini.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if opts.provider != "" {
				cfg.Provider = opts.provider
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.Env)

			path := opts.credentialsFile
			if path == "" {
				path = cfg.CredentialsFile
			}
			if path == "" {
				var err error
				if path, err = repository.DefaultCredentialsPath(); err != nil {
					return fmt.Errorf("resolving credentials file: %w", err)
				}
			}

			a.cfg = cfg
			a.credentials = repository.NewFileCredentialRepo(path, cfg.CredentialKey)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.provider, "provider", "", "Response provider: local, gemini or gemini-sdk (default from ADVISOR_PROVIDER)")
	root.PersistentFlags().StringVar(&opts.credentialsFile, "credentials-file", "", "Where the Gemini API key is stored")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (default from LOG_LEVEL)")

	root.AddCommand(newAskCommand(a))
	root.AddCommand(newChatCommand(a))
	root.AddCommand(newSuggestionsCommand())
	root.AddCommand(newCredentialCommand(a))

	return root
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
