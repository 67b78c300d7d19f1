package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fi-advisor-backend/internal/services"
)

const quitCommand = "/quit"

func newAskCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ex, ok := session.Submit(cmd.Context(), strings.Join(args, " "))
			if !ok {
				return fmt.Errorf("question must not be empty")
			}
			reply, err := ex.Wait(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return nil
		},
	}
}

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive advisory session",
		Long: `Start an interactive advisory session.

Type a question and press enter to send it. ":n" puts suggestion n in the
input buffer, an empty line sends the buffer, and /quit exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runChat(cmd, session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(cmd *cobra.Command, session *services.Session, in io.Reader, out io.Writer) error {
	suggestions := services.Suggestions()

	for _, turn := range session.Transcript() {
		fmt.Fprintf(out, "Advisor: %s\n\n", turn.Text)
	}
	printSuggestions(out)
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == quitCommand:
			return nil

		case strings.HasPrefix(line, ":"):
			n, err := strconv.Atoi(strings.TrimPrefix(line, ":"))
			if err != nil || n < 1 || n > len(suggestions) {
				fmt.Fprintf(out, "Pick a suggestion between 1 and %d.\n", len(suggestions))
				continue
			}
			session.SelectSuggestion(suggestions[n-1].Text)
			fmt.Fprintf(out, "[input] %s\n", session.Input())
			continue
		}

		var (
			ex *services.Exchange
			ok bool
		)
		if line == "" {
			ex, ok = session.SubmitInput(cmd.Context())
		} else {
			ex, ok = session.Submit(cmd.Context(), line)
		}
		if !ok {
			fmt.Fprintln(out, "Nothing to send. Type a question or pick a suggestion with :n.")
			continue
		}

		if line == "" {
			fmt.Fprintf(out, "You: %s\n", ex.User().Text)
		}
		fmt.Fprintln(out, "Advisor is typing...")
		reply, err := ex.Wait(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Advisor: %s\n\n", reply.Text)
	}
}

func newSuggestionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggestions",
		Short: "List suggested questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printSuggestions(cmd.OutOrStdout())
			return nil
		},
	}
}

func printSuggestions(out io.Writer) {
	fmt.Fprintln(out, "Suggested questions:")
	for i, s := range services.Suggestions() {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, s.Text, s.Category)
	}
}
