package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fi-advisor-backend/internal/services"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("LOCAL_RESPONSE_DELAY", "0")
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func credentialsPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "fi-advisor", "credentials.yaml")
}

func TestAsk_Local(t *testing.T) {
	out, _, err := run(t, "", "--provider", "local", "--credentials-file", credentialsPath(t),
		"ask", "How's", "my", "net", "worth", "growing?")
	require.NoError(t, err)
	assert.Equal(t, services.LocalReply("How's my net worth growing?")+"\n", out)
}

func TestAsk_GeminiWithoutKeyApologizes(t *testing.T) {
	t.Setenv("GEMINI_ENDPOINT", "http://127.0.0.1:0/unused")
	out, errOut, err := run(t, "", "--provider", "gemini", "--credentials-file", credentialsPath(t),
		"ask", "hello")
	require.NoError(t, err)
	assert.Equal(t, services.ApologyText+"\n", out)
	assert.Contains(t, errOut, "[error] API Key Required")
}

func TestAsk_UnknownProvider(t *testing.T) {
	_, _, err := run(t, "", "--provider", "oracle", "--credentials-file", credentialsPath(t), "ask", "hi")
	assert.Error(t, err)
}

func TestChat_REPL(t *testing.T) {
	input := strings.Join([]string{
		"",                          // empty buffer, nothing to send
		":9",                        // out of range
		":4",                        // select the SIP suggestion
		"",                          // send the buffer
		"Can I afford a home loan?", // typed question
		"/quit",
		"never read",
	}, "\n") + "\n"

	out, _, err := run(t, input, "--provider", "local", "--credentials-file", credentialsPath(t), "chat")
	require.NoError(t, err)

	assert.Contains(t, out, "Advisor: "+services.GreetingText)
	assert.Contains(t, out, "Nothing to send.")
	assert.Contains(t, out, "Pick a suggestion between 1 and 4.")
	assert.Contains(t, out, "[input] Which SIPs underperformed the market?")
	assert.Contains(t, out, "You: Which SIPs underperformed the market?")
	assert.Contains(t, out, "Advisor: "+services.LocalReply("Which SIPs underperformed the market?"))
	assert.Contains(t, out, "Advisor: "+services.LocalReply("Can I afford a home loan?"))
	assert.Equal(t, 2, strings.Count(out, "Advisor is typing..."))
}

func TestChat_EndsOnEOF(t *testing.T) {
	_, _, err := run(t, "", "--provider", "local", "--credentials-file", credentialsPath(t), "chat")
	assert.NoError(t, err)
}

func TestSuggestions(t *testing.T) {
	out, _, err := run(t, "", "suggestions")
	require.NoError(t, err)
	assert.Contains(t, out, "1. How much money will I have at 40? (Planning)")
	assert.Contains(t, out, "4. Which SIPs underperformed the market? (Investment)")
}

func TestCredential_SetAndStatus(t *testing.T) {
	path := credentialsPath(t)

	out, _, err := run(t, "", "--credentials-file", path, "credential", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not configured")

	out, _, err = run(t, "", "--credentials-file", path, "credential", "set", "AIza-from-arg")
	require.NoError(t, err)
	assert.Contains(t, out, "API Key Saved")

	out, _, err = run(t, "", "--credentials-file", path, "credential", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Gemini API key: configured")
	assert.NotContains(t, out, "AIza-from-arg")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCredential_SetFromStdin(t *testing.T) {
	path := credentialsPath(t)

	_, _, err := run(t, "  AIza-from-stdin  \n", "--credentials-file", path, "credential", "set")
	require.NoError(t, err)

	_, _, err = run(t, "\n", "--credentials-file", path, "credential", "set")
	assert.Error(t, err, "blank keys are rejected")

	out, _, err := run(t, "", "--credentials-file", path, "credential", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Gemini API key: configured")
}
