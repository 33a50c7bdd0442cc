// Package docs holds the documentation topics of the cgt command.
//
// Each topic is a markdown file embedded in the binary. The readme topic is
// the entry point and lists the others.
package docs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Readme is the topic shown when none is asked for.
const Readme = "readme"

// ErrUnknownTopic is returned for a topic that has no documentation file.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic returns the markdown of a documentation topic.
func Topic(topic string) (string, error) {
	content, err := docs.ReadFile(topic + ".md")
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w %q, want one of %s", ErrUnknownTopic, topic, strings.Join(List(), ", "))
	}
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Topics returns the markdown of several topics, one after the other.
// "*" stands for every topic but the readme.
func Topics(topics ...string) (string, error) {
	var b strings.Builder
	for _, topic := range topics {
		if topic == "*" {
			all, err := Topics(List()...)
			if err != nil {
				return "", err
			}
			b.WriteString(all)
			continue
		}
		content, err := Topic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// List returns the sorted names of the topics, the readme excluded.
func List() []string {
	files, _ := fs.Glob(docs, "*.md")
	var topics []string
	for _, f := range files {
		if topic := strings.TrimSuffix(f, ".md"); topic != Readme {
			topics = append(topics, topic)
		}
	}
	slices.Sort(topics)
	return topics
}
