package processor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"codeberg.org/snonux/subtrans/internal/cli"
	"codeberg.org/snonux/subtrans/internal/models"
	"codeberg.org/snonux/subtrans/internal/session"
	"codeberg.org/snonux/subtrans/internal/subtitle"
	"codeberg.org/snonux/subtrans/internal/translation"
)

// Translator is what the processor needs from translation.Translator
type Translator interface {
	TranslateToChinese(ctx context.Context, text, surrounding string) translation.Result
	Chat(ctx context.Context, sessionID, message string) (string, error)
	ClearSession(sessionID string)
}

// Summary counts the outcome of a file translation
type Summary struct {
	Total        int
	Translated   int
	Failed       int
	Skipped      int
	Mismatched   int
	Untranslated int
	OutputPath   string
}

// Processor handles the main translation logic
type Processor struct {
	flags      *cli.Flags
	translator Translator
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
}

// NewProcessor creates a processor with a translator configured from flags,
// config file and environment.
func NewProcessor(flags *cli.Flags, logger *slog.Logger) *Processor {
	store := session.NewStore(cli.SessionConfig())
	t := translation.NewTranslator(cli.TranslatorConfig(),
		translation.WithLogger(logger),
		translation.WithSessionStore(store),
	)
	return NewProcessorWithTranslator(flags, t, logger)
}

// NewProcessorWithTranslator creates a processor around an existing translator
func NewProcessorWithTranslator(flags *cli.Flags, t Translator, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		flags:      flags,
		translator: t,
		logger:     logger,
		in:         os.Stdin,
		out:        os.Stdout,
	}
}

// SetIO replaces stdin and stdout
func (p *Processor) SetIO(in io.Reader, out io.Writer) {
	p.in = in
	p.out = out
}

// ProcessText translates a single piece of text and prints the result
func (p *Processor) ProcessText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to translate")
	}

	result := p.translator.TranslateToChinese(ctx, text, p.flags.Context)
	if !result.OK() {
		return fmt.Errorf("translation failed: %w", result.Err())
	}

	fmt.Fprintln(p.out, result.Text)
	return nil
}

// ProcessFile translates every cue of the subtitle file given by --file.
// Cues that fail keep their original text.
func (p *Processor) ProcessFile(ctx context.Context) (Summary, error) {
	file, err := subtitle.ReadFile(p.flags.File)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Total:      len(file.Cues),
		OutputPath: p.flags.Output,
	}
	if summary.OutputPath == "" {
		summary.OutputPath = OutputPath(p.flags.File)
	}

	// Context is always built from the source text, never from translations
	sources := make([]string, len(file.Cues))
	for i, cue := range file.Cues {
		sources[i] = cue.Text()
	}

	for i, cue := range file.Cues {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("translation interrupted: %w", err)
		}

		text := sources[i]
		if strings.TrimSpace(text) == "" {
			summary.Skipped++
			continue
		}

		fmt.Fprintf(p.out, "Translating %d/%d\n", i+1, len(file.Cues))

		result := p.translator.TranslateToChinese(ctx, text, contextFor(sources, i, p.flags.ContextLines))
		if !result.OK() {
			p.logger.Warn("keeping original text", "cue", cue.Index, "error", result.Err())
			summary.Failed++
			continue
		}

		lines := strings.Split(result.Text, "\n")
		if len(lines) != len(cue.Lines) {
			p.logger.Warn("line count changed", "cue", cue.Index, "source", len(cue.Lines), "translated", len(lines))
			summary.Mismatched++
		}
		if strings.Contains(result.Text, translation.UntranslatedMarker) {
			summary.Untranslated++
		}

		file.Cues[i].Lines = lines
		summary.Translated++
	}

	if err := subtitle.WriteFile(summary.OutputPath, file); err != nil {
		return summary, err
	}

	p.printSummary(summary)
	return summary, nil
}

func (p *Processor) printSummary(s Summary) {
	fmt.Fprintf(p.out, "\n=== Translation Summary ===\n")
	fmt.Fprintf(p.out, "Total cues: %d\n", s.Total)
	fmt.Fprintf(p.out, "Translated: %d\n", s.Translated)
	if s.Skipped > 0 {
		fmt.Fprintf(p.out, "Skipped (empty): %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(p.out, "Failed (kept original): %d\n", s.Failed)
	}
	if s.Mismatched > 0 {
		fmt.Fprintf(p.out, "Line count mismatches: %d\n", s.Mismatched)
	}
	if s.Untranslated > 0 {
		fmt.Fprintf(p.out, "Containing %s: %d\n", translation.UntranslatedMarker, s.Untranslated)
	}
	fmt.Fprintf(p.out, "Output: %s\n", s.OutputPath)
	fmt.Fprintf(p.out, "===========================\n")
}

// RunChat reads messages line by line and prints each reply. The line
// "/clear" forgets the conversation so far.
func (p *Processor) RunChat(ctx context.Context) error {
	sessionID := p.flags.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	p.logger.Debug("chat session started", "session", sessionID)

	interactive := false
	if f, ok := p.in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	scanner := bufio.NewScanner(p.in)
	for {
		if interactive {
			fmt.Fprint(p.out, "> ")
		}
		if !scanner.Scan() {
			break
		}

		message := strings.TrimSpace(scanner.Text())
		switch message {
		case "":
			continue
		case "/clear":
			p.translator.ClearSession(sessionID)
			fmt.Fprintln(p.out, "Session cleared")
			continue
		}

		reply, err := p.translator.Chat(ctx, sessionID, message)
		if err != nil {
			return fmt.Errorf("chat failed: %w", err)
		}
		fmt.Fprintln(p.out, reply)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// ListModels prints the chat models available to the configured key
func (p *Processor) ListModels(ctx context.Context) error {
	return models.NewLister(cli.TranslatorConfig()).ListChatModels(ctx, p.out)
}

// OutputPath derives the translated file name, e.g. movie.srt -> movie.zh.srt
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".zh" + ext
}

// contextFor joins up to n texts before and after texts[i]
func contextFor(texts []string, i, n int) string {
	if n <= 0 {
		return ""
	}

	start := max(i-n, 0)
	end := min(i+n, len(texts)-1)

	var parts []string
	for j := start; j <= end; j++ {
		if j == i {
			continue
		}
		if text := strings.TrimSpace(texts[j]); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
