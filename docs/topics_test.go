package docs

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/cgt"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every .md file is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range topicsInReadme {
		if _, err := Topic(topic); err != nil {
			t.Errorf("failed to get topic %q: %v", topic, err)
		}
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatalf("failed to glob *.md: %v", err)
	}
	for _, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), ".md")
		if base != "readme" && !slices.Contains(topicsInReadme, base) {
			t.Errorf("topic %q is not listed in docs/readme.md", base)
		}
	}

	if all := List(); len(all) != len(topicsInReadme) {
		t.Errorf("List() = %v, want %v", all, topicsInReadme)
	}
	if _, err := Topic("nope"); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("Topic(nope) error = %v, want %v", err, ErrUnknownTopic)
	}
}

func TestTopicsAll(t *testing.T) {
	all, err := Topics("*")
	if err != nil {
		t.Fatalf("Topics(*) error = %v", err)
	}
	for _, topic := range List() {
		content, _ := Topic(topic)
		if !strings.Contains(all, content) {
			t.Errorf("Topics(*) is missing topic %q", topic)
		}
	}
	if _, err := Topics("readme", "nope"); err == nil {
		t.Errorf("Topics(readme, nope) should fail")
	}
}

// fencedBlocks returns the content of the fenced code blocks of lang in file.
func fencedBlocks(t *testing.T, file, lang string) []string {
	t.Helper()
	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil || string(fcb.Info.Segment.Value(content)) != lang {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, b.String())
		return ast.WalkContinue, nil
	})
	return blocks
}

func TestLedgerExamples(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, file := range files {
		for _, block := range fencedBlocks(t, file, "jsonl") {
			count++
			ledger, err := cgt.DecodeLedger(strings.NewReader(block))
			if err != nil {
				t.Errorf("%s: invalid ledger example: %v", file, err)
				continue
			}
			if err := ledger.Validate(); err != nil {
				t.Errorf("%s: invalid ledger example: %v", file, err)
			}
			var buf bytes.Buffer
			if err := cgt.EncodeLedger(&buf, ledger); err != nil {
				t.Errorf("%s: cannot encode ledger example: %v", file, err)
			}
			if buf.String() != block {
				t.Errorf("%s: ledger example is not in canonical form:\ngot:\n%s\nwant:\n%s", file, block, buf.String())
			}
		}
	}
	if count == 0 {
		t.Errorf("no ledger example found")
	}
}
