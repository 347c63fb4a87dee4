// Package claim holds the RMA claim record captured by the intake form.
// A Form is a plain value; ownership and mutation rules live in package intake.
package claim

import (
	"sort"
	"time"
)

// DateLayout is the on-screen and prompt format for dates.
const DateLayout = "2006-01-02"

// ProductLine is one claimed product row.
type ProductLine struct {
	ID          string
	Code        string
	Description string
	QtyInvoiced float64
	QtyClaimed  float64
	Unit        Unit
}

// Form is the single mutable record for one claim.
type Form struct {
	// General data
	RequestDate time.Time
	SalesPerson string
	Priority    Priority

	// Origin
	ClientName    string
	InvoiceNumber string
	DeliveryDate  time.Time // zero means not captured

	// Product status
	IsCompleteAndOriginal TriState
	StatusExplanation     string // only meaningful when IsCompleteAndOriginal == No

	// Products, in display order. Never empty.
	Products []ProductLine

	// Typification
	SelectedProblems map[ProblemTag]struct{}

	// Evidence checklist
	HasPhotoProduct   bool
	HasPhotoLabel     bool
	HasPhysicalSample bool
	SampleCollected   TriState // only meaningful when HasPhysicalSample

	// Solution
	ExpectedSolution Solution

	Observations string
}

// FirstLineID is the id of the blank line every new form starts with.
const FirstLineID = "1"

// New returns a form with session defaults: the request date set to now's
// calendar day and one blank product line.
func New(now time.Time) Form {
	y, m, d := now.Date()
	return Form{
		RequestDate:      time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		Priority:         PriorityNormal,
		Products:         []ProductLine{NewProductLine(FirstLineID)},
		SelectedProblems: make(map[ProblemTag]struct{}),
	}
}

// NewProductLine returns a zero-valued line with the given id.
func NewProductLine(id string) ProductLine {
	return ProductLine{ID: id, Unit: UnitMillar}
}

// Clone returns a deep copy. Views receive clones so they never alias the
// controller's record.
func (f Form) Clone() Form {
	out := f
	out.Products = append([]ProductLine(nil), f.Products...)
	out.SelectedProblems = make(map[ProblemTag]struct{}, len(f.SelectedProblems))
	for tag := range f.SelectedProblems {
		out.SelectedProblems[tag] = struct{}{}
	}
	return out
}

// HasProblem reports whether tag is selected.
func (f Form) HasProblem(tag ProblemTag) bool {
	_, ok := f.SelectedProblems[tag]
	return ok
}

// ToggleProblem inserts tag if absent and removes it otherwise.
func (f *Form) ToggleProblem(tag ProblemTag) {
	if f.SelectedProblems == nil {
		f.SelectedProblems = make(map[ProblemTag]struct{})
	}
	if _, ok := f.SelectedProblems[tag]; ok {
		delete(f.SelectedProblems, tag)
		return
	}
	f.SelectedProblems[tag] = struct{}{}
}

// Problems returns the selected tags in catalog order. Tags outside the
// catalog sort after it, alphabetically.
func (f Form) Problems() []ProblemTag {
	out := make([]ProblemTag, 0, len(f.SelectedProblems))
	for tag := range f.SelectedProblems {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := problemRank(out[i]), problemRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// LineIndex returns the position of the line with the given id, or -1.
func (f Form) LineIndex(id string) int {
	for i, p := range f.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
