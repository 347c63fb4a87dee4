package assistant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"rmaintake/internal/claim"
	"rmaintake/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genai"
)

// fakeGenerator returns a canned answer and records what it was asked.
type fakeGenerator struct {
	text   string
	err    error
	calls  int
	model  string
	prompt string
	config *genai.GenerateContentConfig
	block  bool
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func withFake(f *fakeGenerator) *Assistant {
	return &Assistant{
		cfg:   Config{APIKey: "test", Model: DefaultModel, Timeout: time.Second},
		gen:   f,
		audit: logging.NewAuditLogger("test"),
	}
}

func TestMissingKeyReturnsNilWithoutNetwork(t *testing.T) {
	defer goleak.VerifyNone(t)

	a, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.False(t, a.Enabled())
	assert.Equal(t, DefaultModel, a.Model())

	assert.Nil(t, a.Classify(context.Background(), "bad odor detected"))

	_, err = a.classify(context.Background(), "bad odor detected")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTransportFailureIsLogged(t *testing.T) {
	ws, quiet := t.TempDir(), t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".rma"), 0755))
	require.NoError(t, os.WriteFile(logging.ConfigPath(ws), []byte("logging:\n  debug_mode: true\n"), 0644))
	require.NoError(t, logging.Initialize(ws))
	t.Cleanup(func() {
		logging.CloseAll()
		_ = logging.Initialize(quiet)
	})

	a := withFake(&fakeGenerator{err: errors.New("connection reset")})
	assert.Nil(t, a.Classify(context.Background(), "cajas aplastadas en ruta"))
	logging.CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(ws, ".rma", "logs", date+"_assistant.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "connection reset")
	assert.Contains(t, string(data), "failed after")
}

func TestClassifyParsesLabel(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := &fakeGenerator{text: `{"category":"CALIDAD DEL PRODUCTO (Defecto de Fábrica)","reasoning":" olor a solvente "}`}
	a := withFake(fake)

	s := a.Classify(context.Background(), "las bolsas huelen a solvente")
	require.NotNil(t, s)
	assert.Equal(t, claim.CategoryQuality, s.Category)
	assert.Equal(t, "olor a solvente", s.Reasoning)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, DefaultModel, fake.model)
	assert.Contains(t, fake.prompt, "las bolsas huelen a solvente")
	require.NotNil(t, fake.config)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	require.NotNil(t, fake.config.ResponseSchema)
	assert.Equal(t, claim.CategoryLabels(), fake.config.ResponseSchema.Properties["category"].Enum)
}

func TestClassifyAcceptsCode(t *testing.T) {
	a := withFake(&fakeGenerator{text: `{"category":"TRANSPORT","reasoning":"caja aplastada"}`})

	s := a.Classify(context.Background(), "caja aplastada en ruta")
	require.NotNil(t, s)
	assert.Equal(t, claim.CategoryTransport, s.Category)
}

func TestClassifyFailuresCollapseToNil(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeGenerator
	}{
		{"transport error", &fakeGenerator{err: errors.New("connection reset")}},
		{"empty text", &fakeGenerator{text: ""}},
		{"not json", &fakeGenerator{text: "CALIDAD, seguro"}},
		{"unknown category", &fakeGenerator{text: `{"category":"MARKETING","reasoning":"x"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := withFake(tt.fake)
			assert.Nil(t, a.Classify(context.Background(), "texto suficiente"))

			_, err := a.classify(context.Background(), "texto suficiente")
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrNotConfigured))
		})
	}
}

func TestMalformedPayloadMatchesMissingKey(t *testing.T) {
	bad := withFake(&fakeGenerator{text: "{"})
	unconfigured, err := New(context.Background(), Config{})
	require.NoError(t, err)

	assert.Equal(t, unconfigured.Classify(context.Background(), "olor fuerte"), bad.Classify(context.Background(), "olor fuerte"))

	_, err = bad.classify(context.Background(), "olor fuerte")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestClassifyHonorsTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	a := withFake(&fakeGenerator{block: true})
	a.cfg.Timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := a.classify(context.Background(), "se demora demasiado")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClassifyOverHTTP(t *testing.T) {
	var hits atomic.Int32
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"category\":\"ERROR DE DESPACHO / BODEGA\",\"reasoning\":\"faltan bultos\"}"}]}}]}`))
	}))
	defer srv.Close()

	a, err := New(context.Background(), Config{APIKey: "k-123", BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.True(t, a.Enabled())

	s := a.Classify(context.Background(), "faltan tres bultos del pedido")
	require.NotNil(t, s)
	assert.Equal(t, claim.CategoryDispatch, s.Category)
	assert.Equal(t, "faltan bultos", s.Reasoning)
	assert.EqualValues(t, 1, hits.Load())
	assert.True(t, strings.HasSuffix(gotPath, "models/"+DefaultModel+":generateContent"), gotPath)
}

func TestClassifyOverHTTPServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	a, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Nil(t, a.Classify(context.Background(), "cualquier texto"))
}

func TestParseResponse(t *testing.T) {
	s, err := parseResponse(`{"category":"POR DEFINIR","reasoning":""}`)
	require.NoError(t, err)
	assert.Equal(t, claim.CategoryUnspecified, s.Category)

	_, err = parseResponse("   ")
	assert.ErrorIs(t, err, ErrBadResponse)
}
