package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newCredentialCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the stored Gemini API key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: "Save the Gemini API key",
		Long: `Save the Gemini API key to the credentials file. When the key is not
given as an argument it is read from standard input, hidden when standard
input is a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				var err error
				if key, err = readSecret(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
					return fmt.Errorf("reading API key: %w", err)
				}
			}

			if err := a.credentials.Save(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API Key Saved: stored in %s\n", a.credentials.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.credentials.Load(cmd.Context())
			if err != nil {
				return err
			}
			state := "not configured"
			if strings.TrimSpace(key) != "" {
				state = "configured"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Gemini API key: %s (%s)\n", state, a.credentials.Path())
			return nil
		},
	})

	return cmd
}

func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Gemini API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		return string(b), err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
