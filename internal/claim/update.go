package claim

import (
	"math"
	"time"
)

// Field names a scalar field of Form that can be replaced by an Update.
type Field string

const (
	FieldRequestDate           Field = "requestDate"
	FieldSalesPerson           Field = "salesPerson"
	FieldPriority              Field = "priority"
	FieldClientName            Field = "clientName"
	FieldInvoiceNumber         Field = "invoiceNumber"
	FieldDeliveryDate          Field = "deliveryDate"
	FieldIsCompleteAndOriginal Field = "isCompleteAndOriginal"
	FieldStatusExplanation     Field = "statusExplanation"
	FieldHasPhotoProduct       Field = "hasPhotoProduct"
	FieldHasPhotoLabel         Field = "hasPhotoLabel"
	FieldHasPhysicalSample     Field = "hasPhysicalSample"
	FieldSampleCollected       Field = "sampleCollected"
	FieldExpectedSolution      Field = "expectedSolution"
	FieldObservations          Field = "observations"
)

// Update replaces exactly one field of a Form. Values are built with the
// Set* constructors below; the set of updates is closed to this package.
type Update interface {
	Field() Field
	Apply(f *Form)
	sealed()
}

type update struct {
	field Field
	apply func(f *Form)
}

func (u update) Field() Field  { return u.field }
func (u update) Apply(f *Form) { u.apply(f) }
func (update) sealed()         {}

// SetRequestDate sets the date the claim was raised.
func SetRequestDate(d time.Time) Update {
	return update{FieldRequestDate, func(f *Form) { f.RequestDate = d }}
}

// SetSalesPerson sets the seller handling the account.
func SetSalesPerson(s string) Update {
	return update{FieldSalesPerson, func(f *Form) { f.SalesPerson = s }}
}

// SetPriority sets the claim priority.
func SetPriority(p Priority) Update {
	return update{FieldPriority, func(f *Form) { f.Priority = p }}
}

// SetClientName sets the customer name.
func SetClientName(s string) Update {
	return update{FieldClientName, func(f *Form) { f.ClientName = s }}
}

// SetInvoiceNumber sets the invoice or delivery note number.
func SetInvoiceNumber(s string) Update {
	return update{FieldInvoiceNumber, func(f *Form) { f.InvoiceNumber = s }}
}

// SetDeliveryDate sets the delivery date; the zero time clears it.
func SetDeliveryDate(d time.Time) Update {
	return update{FieldDeliveryDate, func(f *Form) { f.DeliveryDate = d }}
}

// SetIsCompleteAndOriginal records whether the goods come back complete and in
// their original packaging.
func SetIsCompleteAndOriginal(t TriState) Update {
	return update{FieldIsCompleteAndOriginal, func(f *Form) { f.IsCompleteAndOriginal = t }}
}

// SetStatusExplanation sets the free-text explanation shown when the goods are
// not complete and original. It is kept, but not shown, for other answers.
func SetStatusExplanation(s string) Update {
	return update{FieldStatusExplanation, func(f *Form) { f.StatusExplanation = s }}
}

// SetHasPhotoProduct marks the product photo as attached.
func SetHasPhotoProduct(b bool) Update {
	return update{FieldHasPhotoProduct, func(f *Form) { f.HasPhotoProduct = b }}
}

// SetHasPhotoLabel marks the box or bag label photo as attached.
func SetHasPhotoLabel(b bool) Update {
	return update{FieldHasPhotoLabel, func(f *Form) { f.HasPhotoLabel = b }}
}

// SetHasPhysicalSample marks a physical sample as available. Clearing it
// leaves SampleCollected untouched.
func SetHasPhysicalSample(b bool) Update {
	return update{FieldHasPhysicalSample, func(f *Form) { f.HasPhysicalSample = b }}
}

// SetSampleCollected records whether the sample was already picked up.
func SetSampleCollected(t TriState) Update {
	return update{FieldSampleCollected, func(f *Form) { f.SampleCollected = t }}
}

// SetExpectedSolution sets the solution the customer expects; SolutionNone
// clears it.
func SetExpectedSolution(s Solution) Update {
	return update{FieldExpectedSolution, func(f *Form) { f.ExpectedSolution = s }}
}

// SetObservations replaces the observations text fed to the classifier.
func SetObservations(s string) Update {
	return update{FieldObservations, func(f *Form) { f.Observations = s }}
}

// LineField names a field of ProductLine. The id is not updatable.
type LineField string

const (
	LineCode        LineField = "code"
	LineDescription LineField = "description"
	LineQtyInvoiced LineField = "qtyInvoiced"
	LineQtyClaimed  LineField = "qtyClaimed"
	LineUnit        LineField = "unit"
)

// LineUpdate replaces one field of a ProductLine.
type LineUpdate interface {
	Field() LineField
	Apply(l *ProductLine)
	sealed()
}

type lineUpdate struct {
	field LineField
	apply func(l *ProductLine)
}

func (u lineUpdate) Field() LineField     { return u.field }
func (u lineUpdate) Apply(l *ProductLine) { u.apply(l) }
func (lineUpdate) sealed()                {}

// SetCode sets the product code.
func SetCode(s string) LineUpdate {
	return lineUpdate{LineCode, func(l *ProductLine) { l.Code = s }}
}

// SetDescription sets the product description.
func SetDescription(s string) LineUpdate {
	return lineUpdate{LineDescription, func(l *ProductLine) { l.Description = s }}
}

// SetQtyInvoiced sets the invoiced quantity; negative and non-finite values
// become zero.
func SetQtyInvoiced(q float64) LineUpdate {
	return lineUpdate{LineQtyInvoiced, func(l *ProductLine) { l.QtyInvoiced = nonNegative(q) }}
}

// SetQtyClaimed sets the claimed quantity; negative and non-finite values
// become zero.
func SetQtyClaimed(q float64) LineUpdate {
	return lineUpdate{LineQtyClaimed, func(l *ProductLine) { l.QtyClaimed = nonNegative(q) }}
}

// SetUnit sets the unit the quantities are expressed in.
func SetUnit(u Unit) LineUpdate {
	return lineUpdate{LineUnit, func(l *ProductLine) { l.Unit = u }}
}

func nonNegative(q float64) float64 {
	if q < 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}
