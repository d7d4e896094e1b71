package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"
)

// AppendBlock appends one measurement block to the report file:
// a "## <key>" header, the raw status text inside a code fence, and a "---"
// separator. Each block is a self-contained unit the parser can reconstruct
// independently. The file is created on first use and only ever appended to.
//
// An advisory flock on the report guards against two benchmark invocations
// pointed at the same report path interleaving their blocks.
func AppendBlock(path, key, text string) error {
	return appendLocked(path, renderBlock(key, text))
}

// AppendSummary appends the summary section, separated from the last block
// by a blank line.
func AppendSummary(path, summary string) error {
	return appendLocked(path, "\n"+summary)
}

func renderBlock(key, text string) string {
	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(key)
	b.WriteString("\n```\n")
	b.WriteString(text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n---\n")
	return b.String()
}

func appendLocked(path, content string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock report %s: %w", path, err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("append report %s: %w", path, err)
	}
	return nil
}
