package scroll

// Metrics describes which scrollbars are shown.
type Metrics struct {
	ProbedSize        float64
	HorizontalVisible bool
	VerticalVisible   bool
}

// VerticalWidth is the width taken by the vertical scrollbar.
func (m Metrics) VerticalWidth() float64 {
	if m.VerticalVisible {
		return m.ProbedSize
	}
	return 0
}

// HorizontalHeight is the height taken by the horizontal scrollbar.
func (m Metrics) HorizontalHeight() float64 {
	if m.HorizontalVisible {
		return m.ProbedSize
	}
	return 0
}

// ComputeScrollbarMetrics decides which scrollbars a viewport needs for its content.
// Showing one scrollbar shrinks the viewport in the other dimension, so the
// vertical check is repeated once after a horizontal scrollbar appears.
func ComputeScrollbarMetrics(contentWidth, contentHeight, viewportWidth, viewportHeight, probedSize float64) Metrics {
	m, _ := computeScrollbarMetrics(contentWidth, contentHeight, viewportWidth, viewportHeight, probedSize)
	return m
}

func computeScrollbarMetrics(contentWidth, contentHeight, viewportWidth, viewportHeight, probedSize float64) (Metrics, int) {
	if probedSize < 0 {
		probedSize = 0
	}
	m := Metrics{ProbedSize: probedSize}

	m.VerticalVisible = contentHeight > viewportHeight
	m.HorizontalVisible = contentWidth > viewportWidth-m.VerticalWidth()
	if !m.HorizontalVisible || m.VerticalVisible {
		return m, 1
	}

	// A horizontal bar alone may push the content past the shortened viewport.
	m.VerticalVisible = contentHeight > viewportHeight-probedSize
	return m, 2
}
