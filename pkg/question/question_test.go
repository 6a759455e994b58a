package question

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hedamo/transparency/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

var testProduct = &ProductContext{
	ProductName: "Oat Bar",
	Category:    "food",
	Description: "Organic oat snack bar",
	PreviousAnswers: []score.QAPair{
		{Question: "Where are oats grown?", Answer: "Finland"},
	},
}

// fakeModel records prompts and delegates to answer.
type fakeModel struct {
	mu      sync.Mutex
	prompts []string
	answer  func(prompt string) (string, error)
	calls   atomic.Int32
}

func (f *fakeModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.answer(prompt)
}

func (f *fakeModel) Name() string { return "fake" }

func TestCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-1, DefaultCount},
		{0, DefaultCount},
		{1, 1},
		{5, 5},
		{9, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Count(tt.in), tt.in)
	}
}

func TestTemplateQuestion(t *testing.T) {
	assert.Equal(t,
		"Where do you source the raw materials for Oat Bar? Please provide specific locations and supplier information.",
		TemplateQuestion(Sourcing, "Oat Bar"))
	assert.Contains(t, TemplateQuestion("PACKAGING", "Oat Bar"), "packaging Oat Bar")
	assert.Equal(t,
		"Please provide detailed information about allergens for Oat Bar.",
		TemplateQuestion("allergens", "Oat Bar"))
}

func TestTemplateGenerator(t *testing.T) {
	set, err := TemplateGenerator{}.Generate(context.Background(), testProduct, 0)
	require.NoError(t, err)
	require.Len(t, set.Questions, DefaultCount)
	assert.Equal(t, setReasoning, set.Reasoning)

	for i, q := range set.Questions {
		assert.Equal(t, questionCategories[i], q.Category)
		assert.Equal(t, TemplateQuestion(q.Category, "Oat Bar"), q.Text)
		assert.Equal(t, "Standard question for "+q.Category, q.Reason)
		if i == 0 {
			assert.Equal(t, PriorityHigh, q.Priority)
		} else {
			assert.Equal(t, PriorityMedium, q.Priority)
		}
	}
}

func TestTemplateGenerator_Deterministic(t *testing.T) {
	a, _ := TemplateGenerator{}.Generate(context.Background(), testProduct, 5)
	b, _ := TemplateGenerator{}.Generate(context.Background(), testProduct, 5)
	assert.Equal(t, a, b)
	assert.Len(t, a.Questions, 5)
}

func TestTemplateGenerator_NilContext(t *testing.T) {
	set, err := TemplateGenerator{}.Generate(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Contains(t, set.Questions[0].Text, "this product")
}

func TestModelGenerator(t *testing.T) {
	m := &fakeModel{answer: func(p string) (string, error) {
		return "  Generated: " + p[:40] + "  ", nil
	}}
	g := NewModelGenerator(m, time.Second, 2)

	set, err := g.Generate(context.Background(), testProduct, 4)
	require.NoError(t, err)
	require.Len(t, set.Questions, 4)
	assert.EqualValues(t, 4, m.calls.Load())

	for i, q := range set.Questions {
		assert.Equal(t, questionCategories[i], q.Category)
		assert.True(t, strings.HasPrefix(q.Text, "Generated: "))
		assert.Equal(t, "Essential for understanding "+q.Category+" transparency", q.Reason)
	}
	assert.Equal(t, PriorityHigh, set.Questions[0].Priority)
	assert.Equal(t, PriorityMedium, set.Questions[3].Priority)

	joined := strings.Join(m.prompts, "\n")
	assert.Contains(t, joined, "Oat Bar, a food product. Organic oat snack bar.")
	assert.Contains(t, joined, "Q: Where are oats grown?\nA: Finland")
}

func TestModelGenerator_FallsBackPerItem(t *testing.T) {
	m := &fakeModel{answer: func(p string) (string, error) {
		switch {
		case strings.Contains(p, "manufacturing"):
			return "", errors.New("boom")
		case strings.Contains(p, "environmental"):
			return "short", nil
		default:
			return "What audited farms supply your oats?", nil
		}
	}}
	g := NewModelGenerator(m, time.Second, 0)

	set, err := g.Generate(context.Background(), testProduct, 3)
	require.NoError(t, err)
	require.Len(t, set.Questions, 3)

	assert.Equal(t, "What audited farms supply your oats?", set.Questions[0].Text)
	assert.Equal(t, TemplateQuestion(Manufacturing, "Oat Bar"), set.Questions[1].Text)
	assert.Equal(t, "Standard question for manufacturing", set.Questions[1].Reason)
	assert.Equal(t, PriorityMedium, set.Questions[1].Priority)
	assert.Equal(t, TemplateQuestion(Sustainability, "Oat Bar"), set.Questions[2].Text)
}

func TestModelGenerator_TimeoutFallsBack(t *testing.T) {
	m := &fakeModel{}
	m.answer = func(string) (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "", context.DeadlineExceeded
	}
	g := NewModelGenerator(m, 10*time.Millisecond, 5)

	set, err := g.Generate(context.Background(), testProduct, 5)
	require.NoError(t, err)
	for _, q := range set.Questions {
		assert.Equal(t, TemplateQuestion(q.Category, "Oat Bar"), q.Text)
	}
}

func TestModelGenerator_NilModel(t *testing.T) {
	g := &ModelGenerator{}
	set, err := g.Generate(context.Background(), testProduct, 2)
	require.NoError(t, err)
	assert.Len(t, set.Questions, 2)
}

func TestHuggingFace_GenerateText(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{"list form", http.StatusOK, `[{"generated_text":"Which farms grow your oats?"}]`, "Which farms grow your oats?", false},
		{"object form", http.StatusOK, `{"generated_text":"Which mills process them?"}`, "Which mills process them?", false},
		{"error form", http.StatusOK, `{"error":"Model is loading"}`, "", true},
		{"empty list", http.StatusOK, `[]`, "", true},
		{"http error", http.StatusServiceUnavailable, `{"error":"Model is loading"}`, "", true},
		{"garbage", http.StatusOK, `"text"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path, auth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				auth = r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			hf := NewHuggingFace(context.Background(), srv.URL+"/models/", "org/model", "hf-token", time.Second)
			got, err := hf.GenerateText(context.Background(), "prompt")

			assert.Equal(t, "/models/org/model", path)
			assert.Equal(t, "Bearer hf-token", auth)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHuggingFace_Defaults(t *testing.T) {
	hf := NewHuggingFace(context.Background(), "", "", "", time.Second)
	assert.Equal(t, "huggingface:"+DefaultHuggingFaceModel, hf.Name())
	assert.Equal(t, DefaultHuggingFaceURL+DefaultHuggingFaceModel, hf.endpoint())
}

func TestNew(t *testing.T) {
	g, err := New(context.Background(), Options{})
	require.NoError(t, err)
	assert.IsType(t, TemplateGenerator{}, g)

	g, err = New(context.Background(), Options{Provider: ProviderHuggingFace, Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &ModelGenerator{}, g)

	g, err = New(context.Background(), Options{Provider: ProviderGemini})
	require.NoError(t, err)
	assert.IsType(t, TemplateGenerator{}, g)

	_, err = New(context.Background(), Options{Provider: "openai"})
	assert.Error(t, err)
}

func TestNew_GeminiWithoutKeyServesTemplates(t *testing.T) {
	g, err := New(context.Background(), Options{Provider: ProviderGemini, Model: DefaultGeminiModel})
	require.NoError(t, err)

	set, err := g.Generate(context.Background(), testProduct, 2)
	require.NoError(t, err)
	require.Len(t, set.Questions, 2)
	assert.Equal(t, TemplateQuestion(Sourcing, testProduct.ProductName), set.Questions[0].Text)
}
