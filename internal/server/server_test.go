package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/llm"
	"github.com/abhisek/worksheetgen/internal/store"
)

const mcqText = `Plants Worksheet
Instructions: Choose the correct option.

1. What do plants need to make food?
a) Sunlight
b) Sand
c) Plastic
d) Metal

2. Which part of the plant absorbs water?
a) Leaf
b) Root
c) Flower
d) Fruit

Answer Key:
1. a) Sunlight`

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *ErrorPayload   `json:"error"`
	Meta  Meta            `json:"meta"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func TestHealthz(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.OK)
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestParse(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/worksheets/parse", map[string]any{
		"type": "mcq", "tier": "Easy", "text": mcqText,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var data parseResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Worksheet.Questions, 2)
	assert.Equal(t, "easy", data.Worksheet.Tier)
	assert.Equal(t, []string{"A) Sunlight", "B) Sand", "C) Plastic", "D) Metal"}, data.Worksheet.Questions[0].Options)
	assert.Equal(t, []int{2}, data.Unresolved)
	assert.Equal(t, []int{}, data.Mismatched)
}

func TestParse_BadRequests(t *testing.T) {
	h := New(Options{}).Handler()
	tests := []struct {
		name string
		body any
		code string
	}{
		{"missing text", map[string]any{"type": "mcq"}, "invalid_request"},
		{"unknown type", map[string]any{"type": "essay", "text": "1. x"}, "invalid_request"},
		{"unknown field", map[string]any{"type": "mcq", "text": "1. x", "colour": "red"}, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/worksheets/parse", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.OK)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestParse_BodyTooLarge(t *testing.T) {
	h := New(Options{MaxBodyBytes: 64}).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/worksheets/parse", map[string]any{
		"type": "mcq", "text": strings.Repeat("x", 200),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPaginate_PDFMetrics(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/worksheets/paginate", map[string]any{
		"type": "mcq", "tier": "easy", "text": mcqText, "include_answers": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data paginateResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
	require.Len(t, data.Pages, 1)
	require.Len(t, data.Pages[0].Blocks, 4)
	assert.Equal(t, "heading", data.Pages[0].Blocks[0].Kind.String())
	assert.Equal(t, []string{"Answer: a) Sunlight"}, data.Pages[0].Blocks[2].AnswerLines)
}

func TestPaginate_TextColumns(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/worksheets/paginate", map[string]any{
		"type": "mcq", "text": mcqText, "wrap_width": 40,
		"geometry": map[string]any{
			"max_content_height": 10, "line_height": 1, "margin_top": 0,
			"heading_height": 3, "question_gap": 1,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data paginateResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
	// Heading and instructions fill 5 of 10 rows; each question needs a
	// page of its own after that.
	require.Len(t, data.Pages, 3)
	require.Len(t, data.Pages[0].Blocks, 2)
	assert.Equal(t, "instructions", data.Pages[0].Blocks[1].Kind.String())
	for _, p := range data.Pages[1:] {
		require.Len(t, p.Blocks, 1)
		assert.Equal(t, "question", p.Blocks[0].Kind.String())
	}
}

func TestPaginate_InvalidGeometry(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/worksheets/paginate", map[string]any{
		"type": "mcq", "text": mcqText, "geometry": map[string]any{"line_height": 0},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPDF(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/worksheets/pdf", map[string]any{
		"type": "mcq", "tier": "hard", "text": mcqText, "include_answers": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mcq_hard_answers.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestPDF_WrongContentType(t *testing.T) {
	h := New(Options{}).Handler()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/worksheets/pdf", strings.NewReader("type=mcq"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestAnswerKey(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/worksheets/answer-key", map[string]any{
		"type":       "mcq",
		"worksheets": map[string]string{"hard": mcqText, "easy": mcqText},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mcq_answer_key.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"easy", "hard"}, f.GetSheetList())
}

func TestNotFound(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeEnvelope(t, w).Error.Code)
}

func TestGenerateRoutesNeedGenerator(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/generate", map[string]any{"topic": "Plants"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGenerateAndFetch(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(map[string]any{
		"worksheets": map[string]string{"easy": mcqText, "medium": mcqText},
	}))
	s := openStore(t)
	h := New(Options{
		Generator:         generator.New(mock, generator.DefaultConfig()),
		Generations:       s.GenerationRepo(),
		DefaultLanguage:   "english",
		DefaultTotalMarks: 20,
		DefaultTiers:      []string{"easy", "medium"},
	}).Handler()

	w := do(t, h, http.MethodPost, "/api/v1/generate", map[string]any{
		"topic": "Plants", "type": "mcq",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created generationResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "mock", created.Model)
	assert.Equal(t, []string{"easy", "medium"}, created.Tiers)
	assert.Equal(t, mcqText, created.Worksheets["easy"])

	w = do(t, h, http.MethodGet, "/api/v1/generations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []generationSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, 20, list[0].TotalMarks)

	w = do(t, h, http.MethodGet, "/api/v1/generations/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got generationResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
	require.Contains(t, got.Parsed, "medium")
	assert.Len(t, got.Parsed["medium"].Questions, 2)

	w = do(t, h, http.MethodGet, "/api/v1/generations/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/generations?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		resp   llm.MockResponse
		body   map[string]any
		status int
	}{
		{
			name:   "invalid marks",
			body:   map[string]any{"topic": "Plants", "total_marks": 500},
			status: http.StatusBadRequest,
		},
		{
			name:   "rate limited",
			resp:   llm.MockResponse{Err: &llm.ErrRateLimit{}},
			body:   map[string]any{"topic": "Plants"},
			status: http.StatusTooManyRequests,
		},
		{
			name:   "missing tier",
			resp:   llm.MockJSON(map[string]any{"worksheets": map[string]string{"easy": mcqText}}),
			body:   map[string]any{"topic": "Plants", "tiers": []string{"easy", "hard"}},
			status: http.StatusBadGateway,
		},
		{
			name:   "deadline",
			resp:   llm.MockResponse{Err: context.DeadlineExceeded},
			body:   map[string]any{"topic": "Plants"},
			status: http.StatusGatewayTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Rejected sets are retried once, so queue the reply twice.
			mock := llm.NewMockProvider(tt.resp, tt.resp)
			h := New(Options{
				Generator:         generator.New(mock, generator.DefaultConfig()),
				DefaultLanguage:   "english",
				DefaultTotalMarks: 10,
				DefaultTiers:      []string{"easy"},
			}).Handler()
			w := do(t, h, http.MethodPost, "/api/v1/generate", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
