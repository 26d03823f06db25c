package processor

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"codeberg.org/snonux/subtrans/internal/cli"
	"codeberg.org/snonux/subtrans/internal/session"
	"codeberg.org/snonux/subtrans/internal/subtitle"
	"codeberg.org/snonux/subtrans/internal/testutil"
	"codeberg.org/snonux/subtrans/internal/translation"
)

// mockTranslator mocks translation.Translator
type mockTranslator struct {
	mu           sync.Mutex
	translations map[string]string
	failures     map[string]error
	calls        []string
	contexts     []string
	cleared      []string
}

func (m *mockTranslator) TranslateToChinese(ctx context.Context, text, surrounding string) translation.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, text)
	m.contexts = append(m.contexts, surrounding)

	if err, ok := m.failures[text]; ok {
		return translation.Result{Failure: &translation.Failure{Cause: err}}
	}
	if out, ok := m.translations[text]; ok {
		return translation.Result{Text: out}
	}
	return translation.Result{Text: "译:" + text}
}

func (m *mockTranslator) Chat(ctx context.Context, sessionID, message string) (string, error) {
	if err, ok := m.failures[message]; ok {
		return "", err
	}
	return sessionID + ":" + message, nil
}

func (m *mockTranslator) ClearSession(sessionID string) {
	m.cleared = append(m.cleared, sessionID)
}

const testSRT = `1
00:00:01,000 --> 00:00:02,000
Hello.

2
00:00:02,500 --> 00:00:04,000
How are you?
Fine.

3
00:00:05,000 --> 00:00:06,000
Bye.
`

func newTestProcessor(t *testing.T, flags *cli.Flags, tr Translator) (*Processor, *bytes.Buffer) {
	t.Helper()

	p := NewProcessorWithTranslator(flags, tr, nil)
	var out bytes.Buffer
	p.SetIO(strings.NewReader(""), &out)
	return p, &out
}

func TestNewProcessor(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	flags := cli.NewFlags()
	p := NewProcessor(flags, nil)

	if p == nil {
		t.Fatal("NewProcessor returned nil")
	}

	if p.flags != flags {
		t.Error("Processor flags not set correctly")
	}

	if p.translator == nil {
		t.Error("Translator not initialized")
	}
}

func TestProcessText(t *testing.T) {
	tr := &mockTranslator{translations: map[string]string{"Hello": "你好"}}
	flags := cli.NewFlags()
	flags.Context = "Hi Tom."
	p, out := newTestProcessor(t, flags, tr)

	if err := p.ProcessText(context.Background(), "Hello"); err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}

	if out.String() != "你好\n" {
		t.Errorf("Expected '你好', got %q", out.String())
	}
	if tr.contexts[0] != "Hi Tom." {
		t.Errorf("Expected context to be passed through, got %q", tr.contexts[0])
	}
}

func TestProcessText_Errors(t *testing.T) {
	tr := &mockTranslator{failures: map[string]error{"Hello": errors.New("quota exceeded")}}
	p, _ := newTestProcessor(t, cli.NewFlags(), tr)

	if err := p.ProcessText(context.Background(), "   "); err == nil {
		t.Error("Expected error for empty text")
	}

	err := p.ProcessText(context.Background(), "Hello")
	if err == nil {
		t.Fatal("Expected error for failed translation")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Expected cause in error, got %v", err)
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "movie.srt")
	testutil.CreateTestFile(t, in, []byte(testSRT))

	tr := &mockTranslator{
		translations: map[string]string{
			"Hello.":              "你好。",
			"How are you?\nFine.": "你好吗？\n很好。",
		},
		failures: map[string]error{"Bye.": errors.New("timeout")},
	}
	flags := cli.NewFlags()
	flags.File = in
	flags.ContextLines = 1
	p, out := newTestProcessor(t, flags, tr)

	summary, err := p.ProcessFile(context.Background())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if summary.Total != 3 || summary.Translated != 2 || summary.Failed != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	wantPath := filepath.Join(dir, "movie.zh.srt")
	if summary.OutputPath != wantPath {
		t.Errorf("OutputPath = %s, want %s", summary.OutputPath, wantPath)
	}

	// Failed cues keep the original text
	testutil.AssertFileContent(t, wantPath, []byte(`1
00:00:01,000 --> 00:00:02,000
你好。

2
00:00:02,500 --> 00:00:04,000
你好吗？
很好。

3
00:00:05,000 --> 00:00:06,000
Bye.

`))

	if tr.contexts[1] != "Hello.\nBye." {
		t.Errorf("Expected neighbouring cues as context, got %q", tr.contexts[1])
	}
	// Earlier cues are already translated by now, context must still be the source
	if tr.contexts[2] != "How are you?\nFine." {
		t.Errorf("Expected source text of previous cue as context, got %q", tr.contexts[2])
	}
	if !strings.Contains(out.String(), "Failed (kept original): 1") {
		t.Errorf("Expected failure in summary, got:\n%s", out.String())
	}
}

func TestProcessFile_MismatchAndMarker(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "lines.txt")
	testutil.CreateTestFile(t, in, []byte("one\n@@##\n"))

	tr := &mockTranslator{translations: map[string]string{
		"one":  "一\n二",
		"@@##": translation.UntranslatedMarker,
	}}
	flags := cli.NewFlags()
	flags.File = in
	flags.Output = filepath.Join(dir, "custom.txt")
	flags.ContextLines = 0
	p, _ := newTestProcessor(t, flags, tr)

	summary, err := p.ProcessFile(context.Background())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if summary.Mismatched != 1 {
		t.Errorf("Expected 1 line count mismatch, got %d", summary.Mismatched)
	}
	if summary.Untranslated != 1 {
		t.Errorf("Expected 1 untranslated cue, got %d", summary.Untranslated)
	}
	for _, c := range tr.contexts {
		if c != "" {
			t.Errorf("Expected no context with --context-lines 0, got %q", c)
		}
	}
	testutil.AssertFileContent(t, flags.Output, []byte("一\n二\n"+translation.UntranslatedMarker+"\n"))
}

func TestProcessFile_Cancelled(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "movie.srt")
	testutil.CreateTestFile(t, in, []byte(testSRT))

	flags := cli.NewFlags()
	flags.File = in
	tr := &mockTranslator{}
	p, _ := newTestProcessor(t, flags, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.ProcessFile(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
	if len(tr.calls) != 0 {
		t.Errorf("Expected no translation calls, got %d", len(tr.calls))
	}
}

func TestProcessFile_Missing(t *testing.T) {
	flags := cli.NewFlags()
	flags.File = "/nonexistent/movie.srt"
	p, _ := newTestProcessor(t, flags, &mockTranslator{})

	if _, err := p.ProcessFile(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestProcessFile_RealTranslator(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "movie.srt")
	testutil.CreateTestFile(t, in, []byte(testSRT))

	mock := &testutil.MockChatClient{Replies: []string{" 你好。 ", "你好吗？\n很好。", "再见。"}}
	tr := translation.NewTranslator(translation.Config{}, translation.WithChatClient(mock))

	flags := cli.NewFlags()
	flags.File = in
	p, _ := newTestProcessor(t, flags, tr)

	summary, err := p.ProcessFile(context.Background())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if summary.Translated != 3 {
		t.Errorf("Expected 3 translated cues, got %+v", summary)
	}
	if mock.CallCount() != 3 {
		t.Errorf("Expected one request per cue, got %d", mock.CallCount())
	}

	file, err := subtitle.ReadFile(summary.OutputPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if file.Cues[0].Text() != "你好。" {
		t.Errorf("Expected trimmed translation, got %q", file.Cues[0].Text())
	}
}

func TestRunChat(t *testing.T) {
	tr := &mockTranslator{}
	flags := cli.NewFlags()
	flags.SessionID = "demo"
	p, out := newTestProcessor(t, flags, tr)
	p.SetIO(strings.NewReader("hello\n\n/clear\nagain\n"), out)

	if err := p.RunChat(context.Background()); err != nil {
		t.Fatalf("RunChat failed: %v", err)
	}

	want := "demo:hello\nSession cleared\ndemo:again\n"
	if out.String() != want {
		t.Errorf("RunChat output = %q, want %q", out.String(), want)
	}
	if len(tr.cleared) != 1 || tr.cleared[0] != "demo" {
		t.Errorf("Expected session 'demo' to be cleared, got %v", tr.cleared)
	}
}

func TestRunChat_RandomSession(t *testing.T) {
	tr := &mockTranslator{}
	p, out := newTestProcessor(t, cli.NewFlags(), tr)
	p.SetIO(strings.NewReader("hi\n"), out)

	if err := p.RunChat(context.Background()); err != nil {
		t.Fatalf("RunChat failed: %v", err)
	}

	id, _, found := strings.Cut(strings.TrimSpace(out.String()), ":")
	if !found || len(id) != 36 {
		t.Errorf("Expected a generated uuid session id, got %q", out.String())
	}
}

func TestRunChat_RealSessions(t *testing.T) {
	store := session.NewStore(session.DefaultConfig())
	mock := &testutil.MockChatClient{Replies: []string{"一", "二"}}
	tr := translation.NewTranslator(translation.Config{},
		translation.WithChatClient(mock),
		translation.WithSessionStore(store))

	flags := cli.NewFlags()
	flags.SessionID = "s"
	p, out := newTestProcessor(t, flags, tr)
	p.SetIO(strings.NewReader("first\nsecond\n"), out)

	if err := p.RunChat(context.Background()); err != nil {
		t.Fatalf("RunChat failed: %v", err)
	}

	turns, ok := store.Get("s")
	if !ok {
		t.Fatal("Expected session to exist")
	}
	// system, user, assistant, user, assistant
	if len(turns) != 5 {
		t.Errorf("Expected 5 turns, got %d", len(turns))
	}
}

func TestRunChat_Error(t *testing.T) {
	tr := &mockTranslator{failures: map[string]error{"boom": errors.New("down")}}
	p, out := newTestProcessor(t, cli.NewFlags(), tr)
	p.SetIO(strings.NewReader("boom\n"), out)

	if err := p.RunChat(context.Background()); err == nil {
		t.Error("Expected chat error")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"movie.srt", "movie.zh.srt"},
		{"/tmp/show/ep01.en.srt", "/tmp/show/ep01.en.zh.srt"},
		{"lines", "lines.zh"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := OutputPath(tt.input); got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestContextFor(t *testing.T) {
	texts := []string{"a", "b", "", "d", "e"}

	tests := []struct {
		name string
		i, n int
		want string
	}{
		{"disabled", 1, 0, ""},
		{"first cue", 0, 1, "b"},
		{"last cue", 4, 2, "d"},
		{"skips empty", 1, 2, "a\nd"},
		{"window larger than file", 2, 10, "a\nb\nd\ne"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contextFor(texts, tt.i, tt.n); got != tt.want {
				t.Errorf("contextFor(%d, %d) = %q, want %q", tt.i, tt.n, got, tt.want)
			}
		})
	}
}
