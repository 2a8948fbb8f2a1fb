// Package workbook holds the parsed worksheets of one generation, one
// per difficulty tier, and renders them on demand.
//
// A Workbook is owned by a single goroutine. Parsing happens only when a
// tier's raw text changes; pagination always runs fresh because the
// geometry differs between screen and export.
package workbook

import (
	"errors"
	"slices"
	"strings"

	"github.com/abhisek/worksheetgen/internal/paginate"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// ErrUnknownTier is returned for a tier that has no raw text yet.
var ErrUnknownTier = errors.New("unknown tier")

// DefaultTiers are the tiers requested when none are configured, in
// display order.
var DefaultTiers = []string{"easy", "medium", "hard"}

// ParseFunc turns a tier's raw text into a worksheet.
type ParseFunc func(raw, tier string, t worksheet.QuestionType) *worksheet.Worksheet

type entry struct {
	raw   string
	sheet *worksheet.Worksheet
}

// Workbook caches one parsed worksheet per tier.
type Workbook struct {
	qtype  worksheet.QuestionType
	parse  ParseFunc
	tiers  map[string]*entry
	active string
}

// Option configures a Workbook.
type Option func(*Workbook)

// WithParseFunc replaces worksheet.Parse.
func WithParseFunc(fn ParseFunc) Option {
	return func(w *Workbook) { w.parse = fn }
}

// New creates an empty workbook for question type t.
func New(t worksheet.QuestionType, opts ...Option) *Workbook {
	w := &Workbook{
		qtype: t,
		parse: worksheet.Parse,
		tiers: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NormalizeTier lowercases and trims a tier name.
func NormalizeTier(tier string) string {
	return strings.ToLower(strings.TrimSpace(tier))
}

// Type returns the question type every tier is parsed with.
func (w *Workbook) Type() worksheet.QuestionType { return w.qtype }

// SetRaw stores the raw text of a tier, replacing any earlier text. The
// tier is re-parsed only when the text differs from what is cached. The
// first tier stored becomes the active tier.
func (w *Workbook) SetRaw(tier, raw string) *worksheet.Worksheet {
	tier = NormalizeTier(tier)
	e, ok := w.tiers[tier]
	if !ok || e.raw != raw || e.sheet == nil {
		e = &entry{raw: raw, sheet: w.parse(raw, tier, w.qtype)}
		w.tiers[tier] = e
	}
	if w.active == "" {
		w.active = tier
	}
	return e.sheet.Clone()
}

// Raw returns the raw text stored for tier.
func (w *Workbook) Raw(tier string) (string, bool) {
	e, ok := w.tiers[NormalizeTier(tier)]
	if !ok {
		return "", false
	}
	return e.raw, true
}

// SetActiveTier selects the tier returned by ActiveWorksheet.
func (w *Workbook) SetActiveTier(tier string) error {
	tier = NormalizeTier(tier)
	if _, ok := w.tiers[tier]; !ok {
		return ErrUnknownTier
	}
	w.active = tier
	return nil
}

// ActiveTier returns the selected tier, or "" when the workbook is empty.
func (w *Workbook) ActiveTier() string { return w.active }

// ActiveWorksheet returns a copy of the active tier's worksheet.
func (w *Workbook) ActiveWorksheet() (*worksheet.Worksheet, bool) {
	if w.active == "" {
		return nil, false
	}
	return w.Worksheet(w.active)
}

// Worksheet returns a copy of the worksheet parsed for tier.
func (w *Workbook) Worksheet(tier string) (*worksheet.Worksheet, bool) {
	e, ok := w.tiers[NormalizeTier(tier)]
	if !ok {
		return nil, false
	}
	return e.sheet.Clone(), true
}

// Tiers lists stored tiers: the default tiers first in their usual
// order, then any others alphabetically.
func (w *Workbook) Tiers() []string {
	var known, extra []string
	for _, t := range DefaultTiers {
		if _, ok := w.tiers[t]; ok {
			known = append(known, t)
		}
	}
	for t := range w.tiers {
		if !slices.Contains(DefaultTiers, t) {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	return append(known, extra...)
}

// Len returns the number of stored tiers.
func (w *Workbook) Len() int { return len(w.tiers) }

// Render paginates a tier's cached worksheet.
func (w *Workbook) Render(tier string, includeAnswers bool, g paginate.Geometry, wr paginate.Wrapper) ([]paginate.Page, error) {
	e, ok := w.tiers[NormalizeTier(tier)]
	if !ok {
		return nil, ErrUnknownTier
	}
	return paginate.Paginate(e.sheet, g, includeAnswers, wr), nil
}
