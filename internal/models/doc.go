// Package models lists the chat models offered by the configured
// OpenAI-compatible endpoint, so users can pick one for translation.
package models
