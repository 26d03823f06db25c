package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// timingLine matches an SRT timing line such as "00:00:01,000 --> 00:00:02,500"
var timingLine = regexp.MustCompile(`^\s*\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}\s*-->\s*\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}`)

// Cue is one subtitle entry
type Cue struct {
	Index  int
	Timing string
	Lines  []string
}

// Text returns the cue lines joined by newlines
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

// File is a parsed subtitle file
type File struct {
	// SRT is false for plain text input
	SRT  bool
	Cues []Cue
}

// ReadFile parses the subtitle file at path
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads SRT cues from r. Input without any timing line is treated as
// plain text with one cue per non-empty line.
func Parse(r io.Reader) (*File, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitles: %w", err)
	}

	text := strings.TrimPrefix(string(content), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if !hasTimingLine(text) {
		return parsePlain(text), nil
	}
	return parseSRT(text)
}

func hasTimingLine(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if timingLine.MatchString(line) {
			return true
		}
	}
	return false
}

func parsePlain(text string) *File {
	file := &File{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			file.Cues = append(file.Cues, Cue{
				Index: len(file.Cues) + 1,
				Lines: []string{line},
			})
		}
	}
	return file
}

func parseSRT(text string) (*File, error) {
	file := &File{SRT: true}

	var block []string
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseBlock(block, len(file.Cues)+1)
		if err != nil {
			return err
		}
		file.Cues = append(file.Cues, cue)
		block = nil
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan subtitles: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return file, nil
}

func parseBlock(block []string, position int) (Cue, error) {
	cue := Cue{Index: position}

	rest := block
	if n, err := strconv.Atoi(strings.TrimSpace(rest[0])); err == nil {
		cue.Index = n
		rest = rest[1:]
	}

	if len(rest) == 0 || !timingLine.MatchString(rest[0]) {
		return Cue{}, fmt.Errorf("cue %d: missing timing line", position)
	}
	cue.Timing = strings.TrimSpace(rest[0])
	cue.Lines = append([]string(nil), rest[1:]...)

	return cue, nil
}

// Write renders the file in its original format
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for i, cue := range f.Cues {
		if f.SRT {
			index := cue.Index
			if index == 0 {
				index = i + 1
			}
			fmt.Fprintf(bw, "%d\n%s\n", index, cue.Timing)
			for _, line := range cue.Lines {
				fmt.Fprintln(bw, line)
			}
			fmt.Fprintln(bw)
			continue
		}
		fmt.Fprintln(bw, cue.Text())
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}

// WriteFile writes f to path
func WriteFile(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}

	if err := f.Write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
