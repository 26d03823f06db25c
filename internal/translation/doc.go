// Package translation translates subtitle text into Chinese through an
// OpenAI-compatible chat completion API. It also offers a multi-turn chat
// backed by the session package.
package translation
