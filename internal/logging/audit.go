package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names one kind of claim lifecycle event.
type AuditEventType string

const (
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"

	AuditStepChange AuditEventType = "step_change"
	AuditLineAdd    AuditEventType = "line_add"
	AuditLineRemove AuditEventType = "line_remove"

	AuditClassifyRequest  AuditEventType = "classify_request"
	AuditClassifyResponse AuditEventType = "classify_response"
	AuditClassifyError    AuditEventType = "classify_error"

	AuditSubmit AuditEventType = "submit"
)

// AuditEvent is one line of the audit trail. Encoded as JSON.
type AuditEvent struct {
	EventType  AuditEventType
	SessionID  string
	RequestID  string
	Target     string
	Success    bool
	DurationMs int64
	Error      string
	Message    string
	Fields     map[string]interface{}
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile   *os.File
	auditCore   *zap.Logger
	auditMu     sync.Mutex
	auditPath   string
	auditNowFn  = time.Now
	auditEnable bool
)

// InitAudit opens .rma/logs/<date>_audit.jsonl. It is a no-op unless debug
// mode is on, so Initialize must run first.
func InitAudit() error {
	if !IsDebugMode() || logsDir == "" {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	path := filepath.Join(logsDir, fmt.Sprintf("%s_audit.jsonl", auditNowFn().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.EpochMillisTimeEncoder
	enc.MessageKey = "msg"
	enc.LevelKey = ""
	enc.CallerKey = ""

	auditFile = f
	auditPath = path
	auditCore = zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(f), zapcore.DebugLevel))
	auditEnable = true
	return nil
}

// AuditPath returns the current audit file, or "" when auditing is off.
func AuditPath() string {
	auditMu.Lock()
	defer auditMu.Unlock()
	return auditPath
}

// CloseAudit flushes and closes the audit file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditCore != nil {
		_ = auditCore.Sync()
	}
	if auditFile != nil {
		auditFile.Close()
	}
	auditFile = nil
	auditCore = nil
	auditPath = ""
	auditEnable = false
}

// Audit writes one event. Safe to call when auditing is off.
func Audit(e AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if !auditEnable || auditCore == nil {
		return
	}

	fields := []zap.Field{
		zap.String("event", string(e.EventType)),
		zap.Bool("success", e.Success),
	}
	if e.SessionID != "" {
		fields = append(fields, zap.String("session", e.SessionID))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("req", e.RequestID))
	}
	if e.Target != "" {
		fields = append(fields, zap.String("target", e.Target))
	}
	if e.DurationMs > 0 {
		fields = append(fields, zap.Int64("dur_ms", e.DurationMs))
	}
	if e.Error != "" {
		fields = append(fields, zap.String("error", e.Error))
	}
	if len(e.Fields) > 0 {
		fields = append(fields, zap.Any("fields", e.Fields))
	}
	auditCore.Info(e.Message, fields...)
}

// =============================================================================
// SESSION-SCOPED HELPERS
// =============================================================================

// AuditLogger stamps every event with a session id.
type AuditLogger struct {
	sessionID string
}

// NewAuditLogger returns a logger for one intake session.
func NewAuditLogger(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// SessionID returns the session correlation id.
func (a *AuditLogger) SessionID() string { return a.sessionID }

func (a *AuditLogger) SessionStart(workspace string) {
	Audit(AuditEvent{EventType: AuditSessionStart, SessionID: a.sessionID, Target: workspace, Success: true, Message: "session started"})
}

func (a *AuditLogger) SessionEnd(submitted bool, d time.Duration) {
	Audit(AuditEvent{
		EventType:  AuditSessionEnd,
		SessionID:  a.sessionID,
		Success:    submitted,
		DurationMs: d.Milliseconds(),
		Message:    "session ended",
	})
}

func (a *AuditLogger) StepChange(from, to string) {
	Audit(AuditEvent{
		EventType: AuditStepChange,
		SessionID: a.sessionID,
		Target:    to,
		Success:   true,
		Message:   fmt.Sprintf("%s -> %s", from, to),
	})
}

func (a *AuditLogger) LineAdded(id string, lines int) {
	Audit(AuditEvent{EventType: AuditLineAdd, SessionID: a.sessionID, Target: id, Success: true, Fields: map[string]interface{}{"lines": lines}})
}

func (a *AuditLogger) LineRemoved(id string, removed bool, lines int) {
	Audit(AuditEvent{EventType: AuditLineRemove, SessionID: a.sessionID, Target: id, Success: removed, Fields: map[string]interface{}{"lines": lines}})
}

// ClassifyRequest records the start of a classification call.
func (a *AuditLogger) ClassifyRequest(requestID, model string, chars int) {
	Audit(AuditEvent{
		EventType: AuditClassifyRequest,
		SessionID: a.sessionID,
		RequestID: requestID,
		Target:    model,
		Success:   true,
		Fields:    map[string]interface{}{"chars": chars},
	})
}

// ClassifyResponse records the suggested category code.
func (a *AuditLogger) ClassifyResponse(requestID, category string, d time.Duration) {
	Audit(AuditEvent{
		EventType:  AuditClassifyResponse,
		SessionID:  a.sessionID,
		RequestID:  requestID,
		Target:     category,
		Success:    true,
		DurationMs: d.Milliseconds(),
	})
}

func (a *AuditLogger) ClassifyError(requestID string, err error, d time.Duration) {
	Audit(AuditEvent{
		EventType:  AuditClassifyError,
		SessionID:  a.sessionID,
		RequestID:  requestID,
		Success:    false,
		DurationMs: d.Milliseconds(),
		Error:      err.Error(),
	})
}

// Submit records an acknowledged claim.
func (a *AuditLogger) Submit(reference string, lines, problems int) {
	Audit(AuditEvent{
		EventType: AuditSubmit,
		SessionID: a.sessionID,
		Target:    reference,
		Success:   true,
		Fields:    map[string]interface{}{"lines": lines, "problems": problems},
	})
}
