package confirm

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/legis-cli/pkg/anthropic"
)

// Decision is the parsed outcome of one automated judgment.
type Decision string

const (
	DecisionYes    Decision = "yes"
	DecisionNo     Decision = "no"
	DecisionUnsure Decision = "unsure"
	// DecisionUnavailable means no judgment was produced: the service is
	// disabled, unconfigured, or the call failed. Callers treat it like
	// unsure and escalate.
	DecisionUnavailable Decision = ""
)

// DefaultPrompt is the judgment prompt template. Placeholders: {content},
// {doc_type}, {bill_id}.
const DefaultPrompt = `Given the string "{content}", does it appear that this system discovered the {doc_type} for {bill_id}? Answer with one word, "yes", "no", or "unsure".`

// JudgeConfig configures the automated-judgment service.
type JudgeConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Prompt  string        `yaml:"prompt" mapstructure:"prompt"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Judge asks a language model whether a discovered candidate is the document
// we are looking for. Every attempt is recorded to the audit sink, including
// attempts where the service was disabled or unreachable.
type Judge struct {
	cfg    JudgeConfig
	client anthropic.Client
	audit  AuditSink
}

// NewJudge wires a judge. Audit may be nil to disable the trail; client may
// be nil when judgment is disabled outright.
func NewJudge(cfg JudgeConfig, client anthropic.Client, audit AuditSink) *Judge {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Judge{cfg: cfg, client: client, audit: audit}
}

// Decide runs one judgment for a candidate's content. It never returns an
// error: failures degrade to DecisionUnavailable and land in the audit trail.
func (j *Judge) Decide(ctx context.Context, content, docType, billID string) Decision {
	limited := Truncate(content)

	if !j.cfg.Enabled {
		j.record(billID, docType, content, limited, DecisionUnavailable, "disabled")
		return DecisionUnavailable
	}
	if j.client == nil || !j.client.Configured() {
		j.record(billID, docType, content, limited, DecisionUnavailable, "unavailable")
		return DecisionUnavailable
	}

	prompt := strings.NewReplacer(
		"{content}", limited,
		"{doc_type}", docType,
		"{bill_id}", billID,
	).Replace(j.cfg.Prompt)

	callCtx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	temp := 0.1
	resp, err := j.client.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:       j.cfg.Model,
		MaxTokens:   64,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		zap.L().Warn("judgment call failed",
			zap.String("bill_id", billID),
			zap.String("doc_type", docType),
			zap.Error(err))
		j.record(billID, docType, content, limited, DecisionUnavailable, "unavailable: "+err.Error())
		return DecisionUnavailable
	}

	raw := resp.Text()
	decision := ParseDecision(raw)
	resp.Usage.LogCost(resp.Model, "confirmation")
	j.record(billID, docType, content, limited, decision, raw)
	return decision
}

func (j *Judge) record(billID, docType, content, limited string, decision Decision, raw string) {
	if j.audit == nil {
		return
	}
	entry := AuditEntry{
		Timestamp:      time.Now().UTC(),
		BillID:         billID,
		DocType:        docType,
		Content:        content,
		LimitedContent: limited,
		Raw:            raw,
		Model:          j.cfg.Model,
	}
	if decision != DecisionUnavailable {
		d := string(decision)
		entry.Decision = &d
	}
	j.audit.Record(entry)
}

// ParseDecision extracts yes/no/unsure from free-form judgment text. The
// literal last line wins when it is exactly one of the three tokens;
// otherwise yes wins only when its last occurrence strictly follows the last
// occurrences of both no and unsure. Everything else degrades toward unsure.
func ParseDecision(response string) Decision {
	text := strings.TrimSpace(response)
	if text == "" {
		return DecisionUnsure
	}

	lines := strings.Split(text, "\n")
	switch strings.ToLower(strings.TrimSpace(lines[len(lines)-1])) {
	case "yes":
		return DecisionYes
	case "no":
		return DecisionNo
	case "unsure":
		return DecisionUnsure
	}

	lower := strings.ToLower(text)
	yesPos := strings.LastIndex(lower, "yes")
	noPos := strings.LastIndex(lower, "no")
	unsurePos := strings.LastIndex(lower, "unsure")

	switch {
	case yesPos >= 0:
		if yesPos > noPos && yesPos > unsurePos {
			return DecisionYes
		}
		return DecisionUnsure
	case noPos >= 0:
		return DecisionNo
	case unsurePos >= 0:
		return DecisionUnsure
	default:
		return DecisionUnsure
	}
}
