// Package docs serves the built-in guides. Topics are markdown files
// compiled into the binary, so `steward docs` works offline and always
// matches the version it ships with.
package docs

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topics lists every embedded topic name, sorted.
func Topics() []string {
	entries, err := fs.ReadDir(contentFS, "content")
	if err != nil {
		return nil
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".md")
		if name != "" && name != e.Name() {
			topics = append(topics, name)
		}
	}
	sort.Strings(topics)
	return topics
}

// Get returns the markdown body for a topic. Lookup is case-insensitive
// and tolerant of stray whitespace.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return "", false
	}
	b, err := contentFS.ReadFile("content/" + topic + ".md")
	if err != nil {
		return "", false
	}
	return string(b), true
}
