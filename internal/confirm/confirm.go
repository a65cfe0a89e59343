// Package confirm decides whether a discovered candidate should be accepted
// as real evidence: an optional automated judgment with escalation to a
// synchronous human yes/no prompt, plus an audit trail of every attempt.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Request describes one candidate awaiting confirmation.
type Request struct {
	BillID   string
	DocType  string // human label, e.g. "summary", "vote record"
	Content  string // untruncated preview/full text
	URL      string
}

// Outcome is the confirmation result. Confirmed distinguishes an explicit
// reviewer decision from a headless auto-accept; callers flag the latter for
// later audit.
type Outcome struct {
	Accepted  bool
	Confirmed bool
}

// Prompter is the synchronous human-confirmation port. Interactive reports
// whether a real surface exists; a headless prompter auto-accepts and the
// procedure marks the outcome unconfirmed.
type Prompter interface {
	Confirm(ctx context.Context, req Request) (bool, error)
	Interactive() bool
}

// Procedure runs the confirmation chain: judgment first when available, human
// escalation for unsure or unavailable judgments.
type Procedure struct {
	judge    *Judge
	prompter Prompter
}

// NewProcedure wires the confirmation chain. The judge must be non-nil (a
// disabled judge still feeds the audit trail); the prompter must be non-nil.
func NewProcedure(judge *Judge, prompter Prompter) *Procedure {
	return &Procedure{judge: judge, prompter: prompter}
}

// Confirm decides whether to accept the candidate. A yes or no from the
// judgment is final; unsure and unavailable escalate to the prompter. Errors
// from the prompter degrade to headless auto-accept.
func (p *Procedure) Confirm(ctx context.Context, req Request) Outcome {
	switch p.judge.Decide(ctx, req.Content, req.DocType, req.BillID) {
	case DecisionYes:
		return Outcome{Accepted: true, Confirmed: true}
	case DecisionNo:
		return Outcome{Accepted: false, Confirmed: true}
	}

	accepted, err := p.prompter.Confirm(ctx, req)
	if err != nil || !p.prompter.Interactive() {
		return Outcome{Accepted: true, Confirmed: false}
	}
	return Outcome{Accepted: accepted, Confirmed: true}
}

var titleCaser = cases.Title(language.AmericanEnglish)

// TerminalPrompter asks for a yes/no answer on an interactive terminal. The
// whole run blocks until the reviewer answers; confirmation decisions are
// rare and must not race with cache writes.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (t *TerminalPrompter) Interactive() bool { return true }

func (t *TerminalPrompter) Confirm(_ context.Context, req Request) (bool, error) {
	fmt.Fprintf(t.Out, "\nLooking for: %s -- For bill: %s\n", titleCaser.String(req.DocType), req.BillID)
	if req.Content != "" {
		fmt.Fprintf(t.Out, "%s\n", req.Content)
	}
	if req.URL != "" {
		fmt.Fprintf(t.Out, "%s\n", req.URL)
	}
	fmt.Fprintf(t.Out, "Use this %s? [y/N]: ", req.DocType)

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// AutoAcceptPrompter is the headless fallback: accept everything, but report
// no interactive surface so callers mark results for review.
type AutoAcceptPrompter struct{}

func (AutoAcceptPrompter) Interactive() bool { return false }

func (AutoAcceptPrompter) Confirm(_ context.Context, _ Request) (bool, error) {
	return true, nil
}
