package intake

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"rmaintake/internal/claim"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, time.May, 2, 9, 30, 0, 0, time.UTC)

func newController() *Controller {
	return New(WithClock(func() time.Time { return fixedNow }))
}

// fakeClassifier counts calls and returns a canned result.
type fakeClassifier struct {
	calls  atomic.Int32
	result *claim.Suggestion
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) *claim.Suggestion {
	f.calls.Add(1)
	return f.result
}

func lineIDs(f claim.Form) []string {
	ids := make([]string, 0, len(f.Products))
	for _, p := range f.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestNewControllerStartsAtFirstStep(t *testing.T) {
	c := newController()

	assert.Equal(t, StepGeneral, c.Step())
	assert.False(t, c.Analyzing())
	assert.Nil(t, c.Suggestion())
	f := c.Form()
	assert.Equal(t, "2026-05-02", claim.FormatDate(f.RequestDate))
	assert.Equal(t, []string{claim.FirstLineID}, lineIDs(f))
}

func TestNavigationClamps(t *testing.T) {
	c := newController()

	c.GoPrevious()
	assert.Equal(t, StepGeneral, c.Step())

	for i := 0; i < 10; i++ {
		c.GoNext()
	}
	assert.Equal(t, StepEvidence, c.Step())

	c.GoPrevious()
	assert.Equal(t, StepTypification, c.Step())
}

func TestStepTitles(t *testing.T) {
	assert.Equal(t, "Datos Generales", StepGeneral.Title())
	assert.Equal(t, "Evidencia y Solución", StepEvidence.String())
	assert.Equal(t, "?", Step(9).Title())
}

func TestRemoveOnlyLineIsNoOp(t *testing.T) {
	c := newController()
	before := c.Form()

	assert.False(t, c.RemoveProductLine(claim.FirstLineID))
	if diff := cmp.Diff(before, c.Form()); diff != "" {
		t.Errorf("form changed (-want +got):\n%s", diff)
	}
}

func TestRemoveUnknownLineIsNoOp(t *testing.T) {
	c := newController()
	c.AddProductLine()

	assert.False(t, c.RemoveProductLine("nope"))
	assert.Len(t, c.Form().Products, 2)
}

func TestLineIDsStayUnique(t *testing.T) {
	c := newController()

	a := c.AddProductLine()
	b := c.AddProductLine()
	require.True(t, c.RemoveProductLine(b))
	d := c.AddProductLine()

	assert.NotEqual(t, b, d, "removed id must not be reissued")
	assert.False(t, c.RemoveProductLine(b), "second removal of the same id")

	ids := lineIDs(c.Form())
	assert.Equal(t, []string{claim.FirstLineID, a, d}, ids)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAddThenRemoveOriginal(t *testing.T) {
	c := newController()
	added := c.AddProductLine()

	require.True(t, c.RemoveProductLine(claim.FirstLineID))
	assert.Equal(t, []string{added}, lineIDs(c.Form()))

	assert.False(t, c.RemoveProductLine(added))
	assert.Len(t, c.Form().Products, 1)
}

func TestUpdateProductLine(t *testing.T) {
	c := newController()
	id := c.AddProductLine()

	assert.True(t, c.UpdateProductLine(id, claim.SetCode("A-100")))
	assert.True(t, c.UpdateProductLine(id, claim.SetQtyClaimed(-2)))
	assert.False(t, c.UpdateProductLine("missing", claim.SetCode("x")))

	f := c.Form()
	assert.Equal(t, "", f.Products[0].Code)
	assert.Equal(t, "A-100", f.Products[1].Code)
	assert.Equal(t, 0.0, f.Products[1].QtyClaimed)
}

func TestUpdateFieldIsolation(t *testing.T) {
	c := newController()
	before := c.Form()

	c.UpdateField(claim.SetPriority(claim.PriorityHigh))
	c.UpdateField(claim.SetPriority(claim.PriorityNormal))

	if diff := cmp.Diff(before, c.Form()); diff != "" {
		t.Errorf("priority round-trip changed other fields (-want +got):\n%s", diff)
	}

	c.UpdateField(claim.SetClientName("Distribuidora Norte"))
	want := before.Clone()
	want.ClientName = "Distribuidora Norte"
	if diff := cmp.Diff(want, c.Form()); diff != "" {
		t.Errorf("client name update mismatch (-want +got):\n%s", diff)
	}

	c.UpdateField(nil)
	assert.Equal(t, "Distribuidora Norte", c.Form().ClientName)
}

func TestToggleProblemTwiceRestores(t *testing.T) {
	c := newController()
	c.ToggleProblem("faltante")
	before := c.Form().SelectedProblems

	c.ToggleProblem("inocuidad")
	assert.True(t, c.Form().HasProblem("inocuidad"))
	c.ToggleProblem("inocuidad")

	if diff := cmp.Diff(before, c.Form().SelectedProblems); diff != "" {
		t.Errorf("selection not restored (-want +got):\n%s", diff)
	}
}

func TestFormSnapshotIsDetached(t *testing.T) {
	c := newController()
	snap := c.Form()
	snap.Products[0].Code = "tampered"
	snap.ToggleProblem("captura")

	f := c.Form()
	assert.Equal(t, "", f.Products[0].Code)
	assert.False(t, f.HasProblem("captura"))
}

func TestAnalyzeShortTextNeverCallsClassifier(t *testing.T) {
	c := newController()
	fake := &fakeClassifier{}

	c.UpdateField(claim.SetObservations("ok"))
	run, ok := c.Analyze(fake)
	assert.False(t, ok)
	assert.Nil(t, run)
	assert.False(t, c.Analyzing())
	assert.EqualValues(t, 0, fake.calls.Load())

	// Five runes, seven bytes.
	c.UpdateField(claim.SetObservations("áéíóú"))
	assert.True(t, c.CanAnalyze())
}

func TestAnalyzeBusyDoesNotQueue(t *testing.T) {
	c := newController()
	fake := &fakeClassifier{result: &claim.Suggestion{Category: claim.CategoryQuality, Reasoning: "olor"}}
	c.UpdateField(claim.SetObservations("las bolsas llegaron con olor"))

	run, ok := c.Analyze(fake)
	require.True(t, ok)
	assert.True(t, c.Analyzing())
	assert.Nil(t, c.Suggestion())

	again, ok := c.Analyze(fake)
	assert.False(t, ok)
	assert.Nil(t, again)

	c.ApplySuggestion(run(context.Background()))
	assert.EqualValues(t, 1, fake.calls.Load())
	assert.False(t, c.Analyzing())
	require.NotNil(t, c.Suggestion())
	assert.Equal(t, claim.CategoryQuality, c.Suggestion().Category)
}

func TestAnalyzeClearsPreviousSuggestion(t *testing.T) {
	c := newController()
	c.UpdateField(claim.SetObservations("faltan tres bultos"))

	run, ok := c.Analyze(&fakeClassifier{result: &claim.Suggestion{Category: claim.CategoryDispatch}})
	require.True(t, ok)
	c.ApplySuggestion(run(context.Background()))
	require.NotNil(t, c.Suggestion())

	run, ok = c.Analyze(&fakeClassifier{})
	require.True(t, ok)
	assert.Nil(t, c.Suggestion())
	c.ApplySuggestion(run(context.Background()))
	assert.Nil(t, c.Suggestion())
	assert.False(t, c.Analyzing())
}

func TestAnalyzeUsesTextAtRequestTime(t *testing.T) {
	c := newController()
	c.UpdateField(claim.SetObservations("texto original"))

	var got string
	cl := classifierFunc(func(_ context.Context, text string) *claim.Suggestion {
		got = text
		return nil
	})
	run, ok := c.Analyze(cl)
	require.True(t, ok)

	c.UpdateField(claim.SetObservations("editado mientras tanto"))
	run(context.Background())
	assert.Equal(t, "texto original", got)
}

func TestAnalyzeNilClassifier(t *testing.T) {
	c := newController()
	c.UpdateField(claim.SetObservations("suficiente texto"))

	_, ok := c.Analyze(nil)
	assert.False(t, ok)
	assert.False(t, c.Analyzing())
}

func TestSuggestionIsCopied(t *testing.T) {
	c := newController()
	c.ApplySuggestion(&claim.Suggestion{Category: claim.CategoryCommercial})

	s := c.Suggestion()
	s.Category = claim.CategoryTransport
	assert.Equal(t, claim.CategoryCommercial, c.Suggestion().Category)
}

func TestSubmitOnlyFromEvidence(t *testing.T) {
	c := newController()

	for c.Step() != StepEvidence {
		_, ok := c.Submit()
		assert.False(t, ok, "submit accepted at %s", c.Step())
		c.GoNext()
	}
	_, submitted := c.Submitted()
	assert.False(t, submitted)

	c.UpdateField(claim.SetClientName("Panificadora Sur"))
	ack, ok := c.Submit()
	require.True(t, ok)
	assert.NotEmpty(t, ack.Reference)
	assert.Equal(t, fixedNow, ack.SubmittedAt)
	assert.Equal(t, "Panificadora Sur", ack.Form.ClientName)
	assert.Equal(t, StepEvidence, c.Step())

	prev, ok := c.Submitted()
	require.True(t, ok)
	assert.Equal(t, ack.Reference, prev.Reference)
}

type classifierFunc func(ctx context.Context, text string) *claim.Suggestion

func (f classifierFunc) Classify(ctx context.Context, text string) *claim.Suggestion {
	return f(ctx, text)
}
