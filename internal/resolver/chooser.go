package resolver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/supplyline/resolve/internal/match"
)

// SilentChooser always declines. It is the channel for server and batch-API
// contexts, where nothing may block on operator input: the resolver falls
// through to StatusUnresolved exactly as if an operator had skipped.
type SilentChooser struct{}

// Choose implements Chooser.
func (SilentChooser) Choose(string, []match.Candidate) (string, bool) {
	return "", false
}

// PromptChooser presents the ranked candidates as a numbered menu on a
// terminal and reads one line. An empty line, a non-numeric entry or an
// out-of-range index is a skip, never an error.
type PromptChooser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptChooser creates a PromptChooser reading selections from in and
// printing the menu to out.
func NewPromptChooser(in io.Reader, out io.Writer) *PromptChooser {
	return &PromptChooser{in: bufio.NewReader(in), out: out}
}

// Choose implements Chooser.
func (p *PromptChooser) Choose(rawName string, candidates []match.Candidate) (string, bool) {
	fmt.Fprintf(p.out, "\nSUPPLIER NOT FOUND: %s\n", rawName)
	fmt.Fprintf(p.out, "Pick one of the options below, or press Enter to skip.\n\n")

	for i, c := range candidates {
		fmt.Fprintf(p.out, "%d. %s (similarity: %.2f%%)\n", i+1, c.Name, c.Score)
	}

	fmt.Fprintf(p.out, "\nOption: ")

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		// EOF before any input is a skip
		return "", false
	}

	line = strings.TrimSpace(line)
	if line == "" {
		fmt.Fprintf(p.out, "No match selected, skipping.\n")
		return "", false
	}

	option, err := strconv.Atoi(line)
	if err != nil || option < 1 || option > len(candidates) {
		fmt.Fprintf(p.out, "Invalid option %q, skipping.\n", line)
		return "", false
	}

	selected := candidates[option-1].Name
	fmt.Fprintf(p.out, "Supplier mapped: %s -> %s\n", rawName, selected)
	return selected, true
}
