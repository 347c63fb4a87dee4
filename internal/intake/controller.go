// Package intake implements the step controller of the RMA intake form.
//
// A Controller exclusively owns one claim.Form for the duration of a session.
// It is single-writer: every method must be called from the UI event loop.
// The only work that leaves that loop is the deferred classification call
// returned by Analyze, and its result comes back through ApplySuggestion.
//
// All operations are total. Out-of-range navigation clamps, unknown ids and
// rejected removals are no-ops, nothing returns an error.
package intake

import (
	"context"
	"strconv"
	"time"
	"unicode/utf8"

	"rmaintake/internal/claim"
	"rmaintake/internal/logging"

	"github.com/google/uuid"
)

// Step is one of the four ordered sections of the form.
type Step int

const (
	StepGeneral Step = iota
	StepProducts
	StepTypification
	StepEvidence
)

// StepCount is the number of steps.
const StepCount = 4

var stepTitles = [StepCount]string{"Datos Generales", "Productos", "Tipificación", "Evidencia y Solución"}

// Title returns the display name of the step.
func (s Step) Title() string {
	if s < 0 || int(s) >= StepCount {
		return "?"
	}
	return stepTitles[s]
}

func (s Step) String() string { return s.Title() }

// MinObservationLength is the shortest observation text, in characters, the
// controller will send to the classifier.
const MinObservationLength = 5

// Classifier suggests a category for free-text observations. A nil result
// means "no suggestion" whatever the cause.
type Classifier interface {
	Classify(ctx context.Context, text string) *claim.Suggestion
}

// Acknowledgment is returned by a successful Submit.
type Acknowledgment struct {
	Reference   string
	SubmittedAt time.Time
	Form        claim.Form
}

// Controller owns the form and the current step.
type Controller struct {
	form       claim.Form
	step       Step
	nextLineID uint64

	analyzing  bool
	suggestion *claim.Suggestion

	ack   *Acknowledgment
	now   func() time.Time
	audit *logging.AuditLogger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithAudit records lifecycle events to the session audit trail.
func WithAudit(a *logging.AuditLogger) Option {
	return func(c *Controller) {
		if a != nil {
			c.audit = a
		}
	}
}

// New creates a controller with a default form.
func New(opts ...Option) *Controller {
	c := &Controller{now: time.Now, audit: logging.NewAuditLogger("")}
	for _, opt := range opts {
		opt(c)
	}
	c.form = claim.New(c.now())
	c.nextLineID = uint64(len(c.form.Products)) + 1
	logging.Form("new claim form at step %s", c.step)
	return c
}

// Form returns a snapshot of the form. Mutating it does not affect the controller.
func (c *Controller) Form() claim.Form { return c.form.Clone() }

// Step returns the current step.
func (c *Controller) Step() Step { return c.step }

// UpdateField replaces one field of the form.
func (c *Controller) UpdateField(u claim.Update) {
	if u == nil {
		return
	}
	u.Apply(&c.form)
	logging.FormDebug("field %s updated", u.Field())
}

// ToggleProblem flips membership of tag in the selected problems.
func (c *Controller) ToggleProblem(tag claim.ProblemTag) {
	c.form.ToggleProblem(tag)
	logging.FormDebug("problem %s toggled (selected=%v)", tag, c.form.HasProblem(tag))
}

// AddProductLine appends a blank line and returns its id. Ids come from a
// counter that never goes backwards, so a removed id is never issued again.
func (c *Controller) AddProductLine() string {
	id := strconv.FormatUint(c.nextLineID, 10)
	c.nextLineID++
	c.form.Products = append(c.form.Products, claim.NewProductLine(id))
	logging.FormDebug("product line %s added (lines=%d)", id, len(c.form.Products))
	c.audit.LineAdded(id, len(c.form.Products))
	return id
}

// RemoveProductLine removes the line with the given id. It is a no-op when
// the id is unknown or the line is the only one left.
func (c *Controller) RemoveProductLine(id string) bool {
	idx := c.form.LineIndex(id)
	if idx < 0 || len(c.form.Products) <= 1 {
		c.audit.LineRemoved(id, false, len(c.form.Products))
		return false
	}
	c.form.Products = append(c.form.Products[:idx:idx], c.form.Products[idx+1:]...)
	logging.FormDebug("product line %s removed (lines=%d)", id, len(c.form.Products))
	c.audit.LineRemoved(id, true, len(c.form.Products))
	return true
}

// UpdateProductLine replaces one field of the line with the given id.
func (c *Controller) UpdateProductLine(id string, u claim.LineUpdate) bool {
	idx := c.form.LineIndex(id)
	if idx < 0 || u == nil {
		return false
	}
	u.Apply(&c.form.Products[idx])
	return true
}

// GoNext advances one step, stopping at the last.
func (c *Controller) GoNext() {
	if int(c.step) < StepCount-1 {
		c.moveTo(c.step + 1)
	}
}

// GoPrevious goes back one step, stopping at the first.
func (c *Controller) GoPrevious() {
	if c.step > StepGeneral {
		c.moveTo(c.step - 1)
	}
}

func (c *Controller) moveTo(s Step) {
	from := c.step
	c.step = s
	logging.Form("step -> %s", c.step)
	c.audit.StepChange(from.Title(), s.Title())
}

// Submit acknowledges the claim. It only succeeds from the last step and
// does not move the controller to another step.
func (c *Controller) Submit() (Acknowledgment, bool) {
	if c.step != StepEvidence {
		return Acknowledgment{}, false
	}
	ack := Acknowledgment{
		Reference:   uuid.NewString(),
		SubmittedAt: c.now(),
		Form:        c.form.Clone(),
	}
	c.ack = &ack
	logging.Form("claim submitted: ref=%s lines=%d problems=%d", ack.Reference, len(ack.Form.Products), len(ack.Form.SelectedProblems))
	c.audit.Submit(ack.Reference, len(ack.Form.Products), len(ack.Form.SelectedProblems))
	return ack, true
}

// Submitted returns the acknowledgment of a prior Submit, if any.
func (c *Controller) Submitted() (Acknowledgment, bool) {
	if c.ack == nil {
		return Acknowledgment{}, false
	}
	return *c.ack, true
}

// Analyzing reports whether a classification call is in flight.
func (c *Controller) Analyzing() bool { return c.analyzing }

// Suggestion returns the last classification result, or nil.
func (c *Controller) Suggestion() *claim.Suggestion {
	if c.suggestion == nil {
		return nil
	}
	s := *c.suggestion
	return &s
}

// CanAnalyze reports whether Analyze would start a call.
func (c *Controller) CanAnalyze() bool {
	return !c.analyzing && utf8.RuneCountInString(c.form.Observations) >= MinObservationLength
}

// Analyze starts a classification of the current observations. When the
// text is too short or a call is already in flight it returns false and
// cl is never consulted. Otherwise it marks the controller busy, clears the
// previous suggestion and returns the call to run off the event loop; its
// result must be handed back with ApplySuggestion.
func (c *Controller) Analyze(cl Classifier) (func(context.Context) *claim.Suggestion, bool) {
	if !c.CanAnalyze() || cl == nil {
		return nil, false
	}
	text := c.form.Observations
	c.analyzing = true
	c.suggestion = nil
	logging.Form("classification requested (%d chars)", utf8.RuneCountInString(text))
	return func(ctx context.Context) *claim.Suggestion {
		return cl.Classify(ctx, text)
	}, true
}

// ApplySuggestion records the outcome of the call started by Analyze.
func (c *Controller) ApplySuggestion(s *claim.Suggestion) {
	c.analyzing = false
	c.suggestion = s
	if s == nil {
		logging.Form("classification finished without suggestion")
		return
	}
	logging.Form("classification suggested %s", s.Category)
}
