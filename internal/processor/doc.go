// Package processor contains the application logic behind the subtrans
// command. It drives the translator over single lines and whole subtitle
// files, runs interactive chat sessions and lists available models.
package processor
