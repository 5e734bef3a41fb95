// Package scrape fetches a page and reduces it to plain text for the agent.
package scrape

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Text returns the visible text of an HTML document with whitespace runs
// collapsed to single spaces. Script and style bodies are dropped.
func Text(r io.Reader) (string, error) {
	var (
		tokenizer = html.NewTokenizer(r)
		words     []string
		skip      int
	)

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return strings.Join(words, " "), nil
		case html.StartTagToken:
			if hidden(tokenizer) {
				skip++
			}
		case html.EndTagToken:
			if hidden(tokenizer) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				words = append(words, strings.Fields(string(tokenizer.Text()))...)
			}
		}
	}
}

func hidden(tokenizer *html.Tokenizer) bool {
	name, _ := tokenizer.TagName()
	switch string(name) {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
