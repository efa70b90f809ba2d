package render

import (
	"fmt"

	"github.com/solarfolio/solarfolio/internal/moon"
	"github.com/solarfolio/solarfolio/internal/scene"
)

// HUD layout, in cells.
const (
	navRow      = 1
	panelRow    = 3
	panelCols   = 44
	logLines    = 5
	statusWidth = 28
)

// Status is the loader and link state the scene does not own.
type Status struct {
	Loaded, Total int
	Opened        string // last link handed to the browser
}

// ComposeHUD redraws the text layer: title, section tabs, the active
// section's copy and links, load progress, recent events and frame stats.
func ComposeHUD(buf *CellBuffer, s *scene.State, st Status) {
	buf.Clear()
	if buf.Cols == 0 || buf.Rows == 0 {
		return
	}
	m := s.Manifest

	x := buf.WriteString(1, 0, m.Name, ColorWhite, ColorClear)
	buf.WriteString(x+2, 0, m.Subtitle, ColorDim, ColorClear)

	x = 1
	for i, sec := range m.Sections {
		label := fmt.Sprintf(" %d %s ", i+1, sec.Title)
		fg, bg := uint8(ColorDim), uint8(ColorBackdrop)
		if sec.Name == s.Section() {
			fg, bg = ColorWhite, ColorHighlight
		}
		x = buf.WriteString(x, navRow, label, fg, bg) + 1
	}

	row := panelRow
	if sec, ok := m.Section(s.Section()); ok && sec.Body != "" {
		row = writePanel(buf, row, sec.Title, sec.Body, sec.Links)
	}
	if s.Frozen() && st.Total > 0 {
		buf.WriteString(1, row+1, fmt.Sprintf("Loading textures %d/%d", st.Loaded, st.Total), ColorYellow, ColorClear)
	}
	if set, pending := s.ActiveSet(); set != nil && pending {
		buf.WriteString(1, row+2, "Waiting for "+set.Name+"...", ColorDim, ColorClear)
	}

	help := buf.Rows - 1
	events := s.Log.Recent(logLines)
	for i, ev := range events {
		buf.WriteString(1, help-1-len(events)+i, ev.Text, EventColor(ev.Kind), ColorClear)
	}
	buf.WriteString(1, help, "1-9 sections  drag orbit  wheel zoom  enter open  esc quit", ColorDim, ColorClear)

	mode := "full"
	if s.Governor.LowMode() {
		mode = "low"
	}
	stats := fmt.Sprintf("%3.0f fps  x%.2f  %s", s.Clock.FPS(), s.Governor.Ratio(), mode)
	buf.WriteString(buf.Cols-statusWidth, help, stats, ColorGreen, ColorClear)
	if st.Opened != "" {
		buf.WriteString(buf.Cols-statusWidth, help-1, "open "+st.Opened, ColorCyan, ColorClear)
	}
}

// writePanel draws a section card from row down and returns the row after
// it.
func writePanel(buf *CellBuffer, row int, title, body string, links []moon.Link) int {
	cols := min(panelCols, buf.Cols-2)
	if cols <= 0 {
		return row
	}
	lines := moon.WrapText(body, cols*basicAdvance)
	height := len(lines) + 2
	if len(links) > 0 {
		height += len(links) + 1
	}
	top := row
	for y := top; y < top+height; y++ {
		for x := 1; x < 1+cols; x++ {
			buf.Set(x, y, ' ', ColorWhite, ColorBackdrop)
		}
	}

	buf.WriteString(2, row, title, ColorCyan, ColorBackdrop)
	row += 2
	for _, l := range lines {
		buf.WriteString(2, row, l, ColorWhite, ColorBackdrop)
		row++
	}
	if len(links) > 0 {
		row++
		for _, l := range links {
			x := buf.WriteString(2, row, l.Text, ColorYellow, ColorBackdrop)
			buf.WriteString(x+1, row, l.Href, ColorDim, ColorBackdrop)
			row++
		}
	}
	return top + height
}

// basicAdvance is the Face7x13 advance; WrapText measures in that face.
const basicAdvance = 7
