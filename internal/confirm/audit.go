package confirm

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// AuditEntry records one confirmation attempt. Decision is nil when no
// judgment was produced; Raw then carries the unavailability marker
// ("disabled", "unavailable", or an error description).
type AuditEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	BillID         string    `json:"bill_id"`
	DocType        string    `json:"doc_type"`
	Content        string    `json:"content"`
	LimitedContent string    `json:"limited_content"`
	Decision       *string   `json:"decision"`
	Raw            string    `json:"raw_response"`
	Model          string    `json:"model,omitempty"`
}

// AuditSink receives one entry per confirmation attempt.
type AuditSink interface {
	Record(entry AuditEntry)
}

// FileAudit appends entries as JSON lines to a log file. Entries that fail to
// serialize or write are dropped; the audit trail is best-effort and must
// never fail a run.
type FileAudit struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileAudit opens (or creates) the audit log for appending.
func NewFileAudit(path string) (*FileAudit, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "confirm: open audit log %s", path)
	}
	return &FileAudit{file: f}, nil
}

func (a *FileAudit) Record(entry AuditEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = a.file.Write(append(raw, '\n'))
}

// Close releases the underlying file.
func (a *FileAudit) Close() error {
	return a.file.Close()
}
