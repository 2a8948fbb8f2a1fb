package paginate

// Geometry describes the usable area of a page in a renderer-defined
// unit. All fields must use the same unit as the Wrapper's line count
// multiplied by LineHeight.
type Geometry struct {
	// MaxContentHeight is the lowest position content may reach, measured
	// from the top edge of the page.
	MaxContentHeight float64 `json:"max_content_height" yaml:"max_content_height"`
	LineHeight       float64 `json:"line_height" yaml:"line_height"`
	MarginTop        float64 `json:"margin_top" yaml:"margin_top"`

	// HeadingHeight is reserved for the title and subtitle on the first page.
	HeadingHeight float64 `json:"heading_height" yaml:"heading_height"`

	// QuestionGap is added after every question and instructions block.
	QuestionGap float64 `json:"question_gap" yaml:"question_gap"`
}

// A4 returns the geometry of a portrait A4 page in millimetres: 7mm
// lines, a 20mm top margin and content ending 20mm above the bottom edge.
func A4() Geometry {
	return Geometry{
		MaxContentHeight: 277,
		LineHeight:       7,
		MarginTop:        20,
		HeadingHeight:    20,
		QuestionGap:      7,
	}
}

// Lines returns a geometry measured in terminal rows for a viewport of
// the given height. The heading takes two rows plus a blank one.
func Lines(rows int) Geometry {
	return Geometry{
		MaxContentHeight: float64(rows),
		LineHeight:       1,
		MarginTop:        0,
		HeadingHeight:    3,
		QuestionGap:      1,
	}
}

// Valid reports whether g can hold at least one line.
func (g Geometry) Valid() bool {
	return g.LineHeight > 0 && g.MaxContentHeight > g.MarginTop && g.MarginTop >= 0 &&
		g.HeadingHeight >= 0 && g.QuestionGap >= 0
}
