package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/llm"
	"github.com/abhisek/worksheetgen/internal/paginate"
	"github.com/abhisek/worksheetgen/internal/render"
	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/workbook"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

type worksheetRequest struct {
	Type           string             `json:"type"`
	Tier           string             `json:"tier"`
	Text           string             `json:"text"`
	IncludeAnswers bool               `json:"include_answers"`
	Geometry       *paginate.Geometry `json:"geometry,omitempty"`

	// WrapWidth switches pagination to fixed-width text columns.
	WrapWidth int `json:"wrap_width,omitempty"`
}

type answerKeyRequest struct {
	Type       string            `json:"type"`
	Worksheets map[string]string `json:"worksheets"`
}

type generateRequest struct {
	Source     string   `json:"source"`
	Topic      string   `json:"topic"`
	Type       string   `json:"type"`
	TotalMarks int      `json:"total_marks"`
	Language   string   `json:"lang"`
	Tiers      []string `json:"tiers"`
}

type parseResponse struct {
	Worksheet  *worksheet.Worksheet `json:"worksheet"`
	Unresolved []int                `json:"unresolved"`
	Mismatched []int                `json:"mismatched"`
}

type paginateResponse struct {
	Pages []paginate.Page `json:"pages"`
}

type generationSummary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Type       string    `json:"type"`
	Language   string    `json:"language"`
	TotalMarks int       `json:"total_marks"`
	Topic      string    `json:"topic,omitempty"`
	Model      string    `json:"model"`
	Tiers      []string  `json:"tiers"`
}

type generationResponse struct {
	generationSummary
	Worksheets map[string]string                `json:"worksheets"`
	Parsed     map[string]*worksheet.Worksheet `json:"parsed,omitempty"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// parseWorksheet validates a worksheet request and parses its text.
func parseWorksheet(w http.ResponseWriter, r *http.Request, req *worksheetRequest) (*worksheet.Worksheet, bool) {
	if !decode(w, r, req) {
		return nil, false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, http.StatusBadRequest, "text is required")
		return nil, false
	}
	t, err := worksheet.ParseQuestionType(req.Type)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}
	tier := workbook.NormalizeTier(req.Tier)
	if tier == "" {
		tier = workbook.DefaultTiers[0]
	}
	return worksheet.Parse(req.Text, tier, t), true
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req worksheetRequest
	ws, ok := parseWorksheet(w, r, &req)
	if !ok {
		return
	}
	writeOK(w, r, http.StatusOK, parseResponse{
		Worksheet:  ws,
		Unresolved: nonNil(ws.Unresolved()),
		Mismatched: nonNil(ws.Mismatched()),
	})
}

func (s *Server) handlePaginate(w http.ResponseWriter, r *http.Request) {
	var req worksheetRequest
	ws, ok := parseWorksheet(w, r, &req)
	if !ok {
		return
	}

	if req.WrapWidth > 0 {
		g := paginate.Lines(60)
		if req.Geometry != nil {
			g = *req.Geometry
		}
		if !g.Valid() {
			writeError(w, r, http.StatusBadRequest, "invalid geometry")
			return
		}
		pages := paginate.Paginate(ws, g, req.IncludeAnswers, paginate.NewColumnWrapper(req.WrapWidth))
		writeOK(w, r, http.StatusOK, paginateResponse{Pages: pages})
		return
	}

	pdf := s.pdf
	if req.Geometry != nil {
		if !req.Geometry.Valid() {
			writeError(w, r, http.StatusBadRequest, "invalid geometry")
			return
		}
		opts := pdf.Options()
		opts.Geometry = *req.Geometry
		pdf = render.NewPDFRenderer(opts)
	}
	pages, err := pdf.Paginate(ws, req.IncludeAnswers)
	if err != nil {
		slog.Error("paginate worksheet", "error", err)
		writeError(w, r, http.StatusInternalServerError, "pagination failed")
		return
	}
	writeOK(w, r, http.StatusOK, paginateResponse{Pages: pages})
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	var req worksheetRequest
	ws, ok := parseWorksheet(w, r, &req)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.pdf.Render(&buf, ws, req.IncludeAnswers); err != nil {
		slog.Error("render pdf", "tier", ws.Tier, "error", err)
		writeError(w, r, http.StatusInternalServerError, "rendering failed")
		return
	}

	name := render.FileName(ws.Type, ws.Tier, req.IncludeAnswers)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}

func (s *Server) handleAnswerKey(w http.ResponseWriter, r *http.Request) {
	var req answerKeyRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := worksheet.ParseQuestionType(req.Type)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Worksheets) == 0 {
		writeError(w, r, http.StatusBadRequest, "worksheets are required")
		return
	}

	wb := workbook.New(t)
	for tier, raw := range req.Worksheets {
		wb.SetRaw(tier, raw)
	}
	sheets := make([]*worksheet.Worksheet, 0, wb.Len())
	for _, tier := range wb.Tiers() {
		ws, _ := wb.Worksheet(tier)
		sheets = append(sheets, ws)
	}

	var buf bytes.Buffer
	if err := render.AnswerKeyXLSX(&buf, sheets); err != nil {
		slog.Error("render answer key", "error", err)
		writeError(w, r, http.StatusInternalServerError, "rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.AnswerKeyFileName(t)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}

	in := generator.GenerateInput{
		Source:     req.Source,
		Topic:      req.Topic,
		TotalMarks: req.TotalMarks,
		Language:   req.Language,
		Tiers:      req.Tiers,
	}
	if req.Type != "" {
		t, err := worksheet.ParseQuestionType(req.Type)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		in.Type = t
	}
	if in.TotalMarks == 0 {
		in.TotalMarks = s.opts.DefaultTotalMarks
	}
	if in.Language == "" {
		in.Language = s.opts.DefaultLanguage
	}
	if len(in.Tiers) == 0 {
		in.Tiers = s.opts.DefaultTiers
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.opts.Generator.Generate(r.Context(), in)
	if err != nil {
		slog.Warn("generate worksheets", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, r, generateErrorStatus(err), err.Error())
		return
	}

	g := res.Generation(in)
	if s.opts.Generations != nil {
		if err := s.opts.Generations.Save(context.WithoutCancel(r.Context()), g); err != nil {
			slog.Warn("save generation", "error", err)
		}
	}

	writeOK(w, r, http.StatusOK, generationResponse{
		generationSummary: summarize(g),
		Worksheets:        res.Tiers,
	})
}

func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	gens, err := s.opts.Generations.List(r.Context(), limit)
	if err != nil {
		slog.Error("list generations", "error", err)
		writeError(w, r, http.StatusInternalServerError, "")
		return
	}
	out := make([]generationSummary, 0, len(gens))
	for i := range gens {
		out = append(out, summarize(&gens[i]))
	}
	writeOK(w, r, http.StatusOK, out)
}

func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := s.opts.Generations.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "generation not found")
		return
	}
	if err != nil {
		slog.Error("get generation", "id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "")
		return
	}

	resp := generationResponse{
		generationSummary: summarize(g),
		Worksheets:        make(map[string]string, len(g.Tiers)),
		Parsed:            make(map[string]*worksheet.Worksheet, len(g.Tiers)),
	}
	for _, t := range g.Tiers {
		resp.Worksheets[t.Tier] = t.Raw
	}
	if wb, err := g.Workbook(); err == nil {
		for _, tier := range wb.Tiers() {
			resp.Parsed[tier], _ = wb.Worksheet(tier)
		}
	}
	writeOK(w, r, http.StatusOK, resp)
}

func summarize(g *store.Generation) generationSummary {
	s := generationSummary{
		ID:         g.ID,
		CreatedAt:  g.CreatedAt,
		Type:       g.Type,
		Language:   g.Language,
		TotalMarks: g.TotalMarks,
		Topic:      g.Topic,
		Model:      g.Model,
		Tiers:      make([]string, 0, len(g.Tiers)),
	}
	for _, t := range g.Tiers {
		s.Tiers = append(s.Tiers, t.Tier)
	}
	return s
}

func generateErrorStatus(err error) int {
	var (
		rateLimit   *llm.ErrRateLimit
		unavailable *llm.ErrProviderUnavailable
		invalid     *llm.ErrInvalidResponse
		maxTokens   *llm.ErrMaxTokensExceeded
		validation  *generator.ValidationError
	)
	switch {
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &invalid), errors.As(err, &maxTokens), errors.As(err, &validation):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
