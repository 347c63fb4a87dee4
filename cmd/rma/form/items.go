package form

import (
	"rmaintake/internal/claim"
	"rmaintake/internal/intake"
)

// itemKind is how a focusable item reacts to keys.
type itemKind int

const (
	kindText     itemKind = iota // single-line editor
	kindTextArea                 // observations
	kindRadio                    // ←/→ cycle, space/enter advance
	kindCheck                    // space/enter toggle
	kindButton                   // space/enter press
)

// Button actions.
const (
	actionAnalyze = "analyze"
	actionSubmit  = "submit"
)

// item is one focusable element of the current step.
type item struct {
	kind  itemKind
	label string

	field claim.Field // form scalar, when set

	lineID    string // product cell, when set
	lineField claim.LineField

	tag    claim.ProblemTag // typification checkbox, when set
	action string           // button, when set
}

func (it item) isLine() bool { return it.lineID != "" }

// itemsFor lists the focusable items of a step in tab order. Conditional
// fields only appear when they carry meaning.
func itemsFor(step intake.Step, f claim.Form) []item {
	var items []item
	switch step {
	case intake.StepGeneral:
		items = []item{
			{kind: kindText, label: "Fecha de solicitud", field: claim.FieldRequestDate},
			{kind: kindText, label: "Vendedor", field: claim.FieldSalesPerson},
			{kind: kindRadio, label: "Prioridad", field: claim.FieldPriority},
			{kind: kindText, label: "Cliente", field: claim.FieldClientName},
			{kind: kindText, label: "Factura / Remisión", field: claim.FieldInvoiceNumber},
			{kind: kindText, label: "Fecha de entrega", field: claim.FieldDeliveryDate},
		}

	case intake.StepProducts:
		for _, p := range f.Products {
			items = append(items,
				item{kind: kindText, label: "Código", lineID: p.ID, lineField: claim.LineCode},
				item{kind: kindText, label: "Descripción", lineID: p.ID, lineField: claim.LineDescription},
				item{kind: kindText, label: "Cant. Fact", lineID: p.ID, lineField: claim.LineQtyInvoiced},
				item{kind: kindText, label: "Cant. Recl", lineID: p.ID, lineField: claim.LineQtyClaimed},
				item{kind: kindRadio, label: "Unidad", lineID: p.ID, lineField: claim.LineUnit},
			)
		}
		items = append(items, item{kind: kindRadio, label: "¿Completo y en empaque original?", field: claim.FieldIsCompleteAndOriginal})
		if f.IsCompleteAndOriginal == claim.No {
			items = append(items, item{kind: kindText, label: "Explique el estado", field: claim.FieldStatusExplanation})
		}

	case intake.StepTypification:
		for _, p := range claim.AllProblems() {
			items = append(items, item{kind: kindCheck, label: p.Label, tag: p.Tag})
		}
		items = append(items,
			item{kind: kindTextArea, label: "Observaciones", field: claim.FieldObservations},
			item{kind: kindButton, label: "Analizar con IA", action: actionAnalyze},
		)

	case intake.StepEvidence:
		items = []item{
			{kind: kindCheck, label: "Foto del producto", field: claim.FieldHasPhotoProduct},
			{kind: kindCheck, label: "Foto etiqueta caja/bulto", field: claim.FieldHasPhotoLabel},
			{kind: kindCheck, label: "Muestra física", field: claim.FieldHasPhysicalSample},
		}
		if f.HasPhysicalSample {
			items = append(items, item{kind: kindRadio, label: "¿Muestra recogida?", field: claim.FieldSampleCollected})
		}
		items = append(items,
			item{kind: kindRadio, label: "Solución esperada", field: claim.FieldExpectedSolution},
			item{kind: kindTextArea, label: "Observaciones", field: claim.FieldObservations},
			item{kind: kindButton, label: "Enviar solicitud", action: actionSubmit},
		)
	}
	return items
}

// textValue is the editor content for a text item.
func textValue(it item, f claim.Form) string {
	if it.isLine() {
		idx := f.LineIndex(it.lineID)
		if idx < 0 {
			return ""
		}
		l := f.Products[idx]
		switch it.lineField {
		case claim.LineCode:
			return l.Code
		case claim.LineDescription:
			return l.Description
		case claim.LineQtyInvoiced:
			return claim.FormatQty(l.QtyInvoiced)
		case claim.LineQtyClaimed:
			return claim.FormatQty(l.QtyClaimed)
		}
		return ""
	}

	switch it.field {
	case claim.FieldRequestDate:
		return claim.FormatDate(f.RequestDate)
	case claim.FieldDeliveryDate:
		return claim.FormatDate(f.DeliveryDate)
	case claim.FieldSalesPerson:
		return f.SalesPerson
	case claim.FieldClientName:
		return f.ClientName
	case claim.FieldInvoiceNumber:
		return f.InvoiceNumber
	case claim.FieldStatusExplanation:
		return f.StatusExplanation
	case claim.FieldObservations:
		return f.Observations
	}
	return ""
}

// placeholder is shown for empty text items.
func placeholder(it item) string {
	switch {
	case it.field == claim.FieldRequestDate, it.field == claim.FieldDeliveryDate:
		return "AAAA-MM-DD"
	case it.lineField == claim.LineQtyInvoiced, it.lineField == claim.LineQtyClaimed:
		return "0"
	case it.field == claim.FieldStatusExplanation:
		return "Ej: Caja abierta, producto mojado..."
	case it.field == claim.FieldObservations:
		return "Detalle lo que el cliente reporta..."
	}
	return ""
}

// applyText pushes editor content into the controller. It reports false when
// the text does not parse for the field; the form is then left unchanged.
func applyText(c *intake.Controller, it item, text string) bool {
	if it.isLine() {
		var u claim.LineUpdate
		switch it.lineField {
		case claim.LineCode:
			u = claim.SetCode(text)
		case claim.LineDescription:
			u = claim.SetDescription(text)
		case claim.LineQtyInvoiced, claim.LineQtyClaimed:
			q, ok := claim.ParseQty(text)
			if !ok {
				return false
			}
			if it.lineField == claim.LineQtyInvoiced {
				u = claim.SetQtyInvoiced(q)
			} else {
				u = claim.SetQtyClaimed(q)
			}
		default:
			return false
		}
		return c.UpdateProductLine(it.lineID, u)
	}

	switch it.field {
	case claim.FieldRequestDate, claim.FieldDeliveryDate:
		d, ok := claim.ParseDate(text)
		if !ok {
			return false
		}
		if it.field == claim.FieldRequestDate {
			c.UpdateField(claim.SetRequestDate(d))
		} else {
			c.UpdateField(claim.SetDeliveryDate(d))
		}
	case claim.FieldSalesPerson:
		c.UpdateField(claim.SetSalesPerson(text))
	case claim.FieldClientName:
		c.UpdateField(claim.SetClientName(text))
	case claim.FieldInvoiceNumber:
		c.UpdateField(claim.SetInvoiceNumber(text))
	case claim.FieldStatusExplanation:
		c.UpdateField(claim.SetStatusExplanation(text))
	case claim.FieldObservations:
		c.UpdateField(claim.SetObservations(text))
	default:
		return false
	}
	return true
}

// cycleRadio moves a radio item delta positions.
func cycleRadio(c *intake.Controller, it item, delta int) {
	f := c.Form()
	if it.isLine() {
		idx := f.LineIndex(it.lineID)
		if idx < 0 {
			return
		}
		c.UpdateProductLine(it.lineID, claim.SetUnit(f.Products[idx].Unit.Cycle(delta)))
		return
	}

	switch it.field {
	case claim.FieldPriority:
		if f.Priority == claim.PriorityHigh {
			c.UpdateField(claim.SetPriority(claim.PriorityNormal))
		} else {
			c.UpdateField(claim.SetPriority(claim.PriorityHigh))
		}
	case claim.FieldIsCompleteAndOriginal:
		c.UpdateField(claim.SetIsCompleteAndOriginal(cycleAnswer(f.IsCompleteAndOriginal, delta)))
	case claim.FieldSampleCollected:
		c.UpdateField(claim.SetSampleCollected(cycleAnswer(f.SampleCollected, delta)))
	case claim.FieldExpectedSolution:
		c.UpdateField(claim.SetExpectedSolution(cycleSolution(f.ExpectedSolution, delta)))
	}
}

// cycleAnswer alternates Sí/No. An unanswered question starts at Sí going
// forward and at No going back.
func cycleAnswer(t claim.TriState, delta int) claim.TriState {
	switch t {
	case claim.Yes:
		return claim.No
	case claim.No:
		return claim.Yes
	}
	if delta < 0 {
		return claim.No
	}
	return claim.Yes
}

// cycleSolution walks SolutionCatalog; none sits before the first entry
// and is skipped once a solution has been chosen.
func cycleSolution(s claim.Solution, delta int) claim.Solution {
	n := len(claim.SolutionCatalog)
	idx := -1
	for i, o := range claim.SolutionCatalog {
		if o.Solution == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		if delta < 0 {
			return claim.SolutionCatalog[n-1].Solution
		}
		return claim.SolutionCatalog[0].Solution
	}
	return claim.SolutionCatalog[((idx+delta)%n+n)%n].Solution
}

// toggleCheck flips a checkbox item.
func toggleCheck(c *intake.Controller, it item) {
	if it.tag != "" {
		c.ToggleProblem(it.tag)
		return
	}
	f := c.Form()
	switch it.field {
	case claim.FieldHasPhotoProduct:
		c.UpdateField(claim.SetHasPhotoProduct(!f.HasPhotoProduct))
	case claim.FieldHasPhotoLabel:
		c.UpdateField(claim.SetHasPhotoLabel(!f.HasPhotoLabel))
	case claim.FieldHasPhysicalSample:
		c.UpdateField(claim.SetHasPhysicalSample(!f.HasPhysicalSample))
	}
}

// checked reports the state of a checkbox item.
func checked(it item, f claim.Form) bool {
	if it.tag != "" {
		return f.HasProblem(it.tag)
	}
	switch it.field {
	case claim.FieldHasPhotoProduct:
		return f.HasPhotoProduct
	case claim.FieldHasPhotoLabel:
		return f.HasPhotoLabel
	case claim.FieldHasPhysicalSample:
		return f.HasPhysicalSample
	}
	return false
}
