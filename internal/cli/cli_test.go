package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/sessionlog"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func readTopics(t *testing.T, path string) []journal.Topic {
	t.Helper()
	records, err := sessionlog.New(path).ReadAll()
	require.NoError(t, err)
	topics := make([]journal.Topic, 0, len(records))
	for _, raw := range records {
		evt, err := journal.ParseEvent(raw)
		require.NoError(t, err)
		topics = append(topics, evt.Topic)
	}
	return topics
}

func decodeResponse(t *testing.T, out string) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func TestCreate_WritesJournalsAndSVG(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "create", "button", "--text", "OK", "--out", dir, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "[state.changed]")
	assert.Contains(t, out, "SVG written:")

	topics := readTopics(t, filepath.Join(dir, "s1.events.jsonl"))
	assert.Equal(t, []journal.Topic{journal.TopicStateChanged, journal.TopicStateSnapshot}, topics)

	commands, err := sessionlog.New(filepath.Join(dir, "s1.commands.jsonl")).ReadAll()
	require.NoError(t, err)
	require.Len(t, commands, 1)
	cmd, err := journal.ParseCommand(commands[0])
	require.NoError(t, err)
	assert.Equal(t, journal.OpCreate, cmd.Op)

	svg, err := os.ReadFile(filepath.Join(dir, "s1.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), ">OK<")
}

func TestCreate_JSONFormat(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "create", "card", "--text", "Hello", "--out", dir, "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "card", data["component"])
	assert.NotEmpty(t, data["svg_path"])
	assert.NotEmpty(t, data["command_id"])
}

func TestCreate_QuietSuppressesOutput(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "create", "button", "--out", dir, "--quiet")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCreate_UnknownComponentIsCommandError(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "create", "slider", "--out", dir, "--session", "s1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	// Rejected commands leave no events behind, only the audit record.
	assert.NoFileExists(t, filepath.Join(dir, "s1.events.jsonl"))
	commands, readErr := sessionlog.New(filepath.Join(dir, "s1.commands.jsonl")).ReadAll()
	require.NoError(t, readErr)
	assert.Len(t, commands, 1)
}

func TestTheme_UnknownIsCommandError(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "theme", "sepia", "--out", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestStateAccumulatesAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "create", "button", "--text", "A", "--out", dir, "--quiet")
	require.NoError(t, err)
	_, err = runCLI(t, "create", "card", "--text", "B", "--out", dir, "--quiet")
	require.NoError(t, err)
	_, err = runCLI(t, "theme", "dark", "--out", dir, "--quiet")
	require.NoError(t, err)

	out, err := runCLI(t, "replay", "--out", dir, "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["components"])
	assert.Equal(t, "dark", data["theme"])
}

func TestReplay_ReproducesSessionSVG(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "create", "chat-bubble", "--text", "hi there", "--out", dir, "--quiet")
	require.NoError(t, err)
	_, err = runCLI(t, "theme", "dark", "--out", dir, "--quiet")
	require.NoError(t, err)

	_, err = runCLI(t, "replay", "--out", dir, "--quiet")
	require.NoError(t, err)

	live, err := os.ReadFile(filepath.Join(dir, "sess_local.svg"))
	require.NoError(t, err)
	replayed, err := os.ReadFile(filepath.Join(dir, "sess_local.replay.svg"))
	require.NoError(t, err)
	assert.Equal(t, string(live), string(replayed))
}

func TestReplay_CorruptLogIsFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sess_local.events.jsonl"), []byte("not json\n"), 0o644))

	_, err := runCLI(t, "replay", "--out", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExport_EmitsEventAndWritesFile(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "create", "button", "--out", dir, "--quiet")
	require.NoError(t, err)

	target := filepath.Join(dir, "custom.svg")
	out, err := runCLI(t, "export", "--file", target, "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "[svg.export.requested]")
	assert.FileExists(t, target)

	topics := readTopics(t, filepath.Join(dir, "sess_local.events.jsonl"))
	assert.Contains(t, topics, journal.TopicExportRequested)
}

func TestValidate_CleanSession(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "create", "button", "--out", dir, "--quiet")
	require.NoError(t, err)

	out, err := runCLI(t, "validate", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "0 violation(s)")
}

func TestValidate_ReportsViolations(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "create", "button", "--out", dir, "--quiet")
	require.NoError(t, err)

	// A well-formed JSON object that breaks the event schema.
	f, err := os.OpenFile(filepath.Join(dir, "sess_local.events.jsonl"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"@type":"kuhul.event","@v":"1.0.0","id":"evt_x","ts_ms":1,"caused_by":"","topic":"state.changed","data":{}}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := runCLI(t, "validate", "--out", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "events.jsonl line 3")
}

func TestTrace_FiltersByTopic(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "create", "button", "--out", dir, "--quiet")
	require.NoError(t, err)

	out, err := runCLI(t, "trace", "--topic", "state.changed", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "state.changed")
	assert.Contains(t, out, "1 event(s)")

	out, err = runCLI(t, "trace", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 event(s)")
}

func TestTrace_JSONOutputWithOnDiskIndex(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "create", "button", "--out", dir, "--quiet")
	require.NoError(t, err)

	dbPath := filepath.Join(dir, "trace.db")
	out, err := runCLI(t, "trace", "--out", dir, "--db", dbPath, "--format", "json")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["total"])
}

func TestChat_RecordsCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello from model"}}]}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, err := runCLI(t, "chat",
		"--provider", "openai", "--model", "gpt-4o", "--message", "hi",
		"--base-url", srv.URL, "--api-key", "sk-test",
		"--out", dir, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "hello from model")

	topics := readTopics(t, filepath.Join(dir, "s1.events.jsonl"))
	assert.Equal(t, []journal.Topic{journal.TopicChatCompleted}, topics)
}

func TestChat_FailureIsRecordedAndFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := runCLI(t, "chat",
		"--provider", "openai", "--model", "gpt-4o", "--message", "hi",
		"--base-url", srv.URL, "--api-key", "sk-test",
		"--out", dir, "--session", "s1", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	topics := readTopics(t, filepath.Join(dir, "s1.events.jsonl"))
	assert.Equal(t, []journal.Topic{journal.TopicChatFailed}, topics)
}

func TestChat_UnsupportedProviderIsCommandError(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "chat", "--provider", "grok", "--model", "m", "--message", "hi", "--out", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormatRejected(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "export", "--out", dir, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestEventsFlagOverridesLogPath(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "elsewhere.jsonl")

	_, err := runCLI(t, "create", "button", "--out", dir, "--events", custom, "--quiet")
	require.NoError(t, err)
	assert.FileExists(t, custom)
	assert.NoFileExists(t, filepath.Join(dir, "sess_local.events.jsonl"))
}
