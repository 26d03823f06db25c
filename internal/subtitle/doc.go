// Package subtitle reads and writes the subtitle files fed to the translator:
// SubRip (.srt) cues or plain text with one line per cue.
package subtitle
