package overlay

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"github.com/ItsNotGoodName/x-overlay/mosaic"
)

// FrameDataColumns are the columns of a frame data row in the order they are
// written.
var FrameDataColumns = []string{
	"input",
	"move_id",
	"hit_type",
	"startup",
	"on_block",
	"on_hit",
	"on_counter_hit",
	"active",
	"recovery",
	"notes",
}

const (
	FrameDataMaxRows   = 8
	ConsoleMaxLines    = 200
	frameDataColumnSep = "|"
)

// lineBuffer splits written bytes into lines and keeps the unterminated tail.
type lineBuffer struct {
	partial []byte
}

func (b *lineBuffer) feed(p []byte, fn func(line string)) {
	b.partial = append(b.partial, p...)
	for {
		idx := bytes.IndexByte(b.partial, '\n')
		if idx == -1 {
			return
		}
		fn(strings.TrimRight(string(b.partial[:idx]), "\r"))
		b.partial = b.partial[idx+1:]
	}
}

func appendBounded(lines []string, line string, limit int) []string {
	lines = append(lines, line)
	if len(lines) > limit {
		lines = slices.Delete(lines, 0, len(lines)-limit)
	}
	return lines
}

// FrameData shows the most recent frame data rows.
type FrameData struct {
	buf     lineBuffer
	rows    [][]string
	columns []string
}

func NewFrameData() *FrameData {
	return &FrameData{
		columns: slices.Clone(FrameDataColumns),
	}
}

func (f *FrameData) Size(res Resolution) (uint16, uint16) {
	return mosaic.Scale(res.Width, res.Height, 0.6, 0.22)
}

func (f *FrameData) DefaultTheme() Theme {
	return Theme{
		"background":  "#000000",
		"foreground":  "#ffffff",
		"accent":      "#ffd700",
		"font_family": "Consolas",
		"font_size":   "12",
		"opacity":     "0.75",
	}
}

// Write parses newline terminated rows of "|" separated cells. Lines without
// a separator are not frame data and are skipped.
func (f *FrameData) Write(p []byte) (int, error) {
	f.buf.feed(p, func(line string) {
		if !strings.Contains(line, frameDataColumnSep) {
			return
		}
		cells := strings.Split(line, frameDataColumnSep)
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		f.rows = append(f.rows, cells)
		if len(f.rows) > FrameDataMaxRows {
			f.rows = slices.Delete(f.rows, 0, len(f.rows)-FrameDataMaxRows)
		}
	})
	return len(p), nil
}

func (f *FrameData) Columns() []string {
	return slices.Clone(f.columns)
}

// SetColumns keeps known columns in their canonical order.
func (f *FrameData) SetColumns(columns []string) {
	visible := make([]string, 0, len(columns))
	for _, c := range FrameDataColumns {
		if slices.Contains(columns, c) {
			visible = append(visible, c)
		}
	}
	f.columns = visible
}

// Rows returns the stored rows reduced to the visible columns.
func (f *FrameData) Rows() [][]string {
	rows := make([][]string, 0, len(f.rows))
	for _, cells := range f.rows {
		row := make([]string, 0, len(f.columns))
		for _, c := range f.columns {
			idx := slices.Index(FrameDataColumns, c)
			if idx < len(cells) {
				row = append(row, cells[idx])
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Console mirrors text written to the application console.
type Console struct {
	buf   lineBuffer
	lines []string
}

func NewConsole() *Console {
	return &Console{}
}

func (c *Console) Size(res Resolution) (uint16, uint16) {
	return mosaic.Scale(res.Width, res.Height, 0.4, 0.25)
}

func (c *Console) DefaultTheme() Theme {
	return Theme{
		"background":  "#1e1e1e",
		"foreground":  "#d4d4d4",
		"accent":      "#569cd6",
		"font_family": "Consolas",
		"font_size":   "10",
		"opacity":     "0.8",
	}
}

func (c *Console) Write(p []byte) (int, error) {
	c.buf.feed(p, func(line string) {
		c.lines = appendBounded(c.lines, line, ConsoleMaxLines)
	})
	return len(p), nil
}

func (c *Console) Lines() []string {
	return slices.Clone(c.lines)
}

// Timer shows elapsed time since it was started.
type Timer struct {
	now     func() time.Time
	started time.Time
	elapsed time.Duration
	running bool
}

func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

func (t *Timer) Size(res Resolution) (uint16, uint16) {
	return mosaic.Scale(res.Width, res.Height, 0.1, 0.06)
}

func (t *Timer) DefaultTheme() Theme {
	return Theme{
		"background":  "#000000",
		"foreground":  "#00ff00",
		"accent":      "#ff0000",
		"font_family": "Consolas",
		"font_size":   "20",
		"opacity":     "0.6",
	}
}

func (t *Timer) Start() {
	if t.running {
		return
	}
	t.started = t.now()
	t.running = true
}

func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.elapsed += t.now().Sub(t.started)
	t.running = false
}

func (t *Timer) Reset() {
	t.elapsed = 0
	t.started = t.now()
}

func (t *Timer) Running() bool {
	return t.running
}

func (t *Timer) Elapsed() time.Duration {
	if t.running {
		return t.elapsed + t.now().Sub(t.started)
	}
	return t.elapsed
}

// Notes shows free text entered by the user.
type Notes struct {
	text string
}

func NewNotes() *Notes {
	return &Notes{}
}

func (n *Notes) Size(res Resolution) (uint16, uint16) {
	return mosaic.Scale(res.Width, res.Height, 0.25, 0.2)
}

func (n *Notes) DefaultTheme() Theme {
	return Theme{
		"background":  "#fff8dc",
		"foreground":  "#000000",
		"accent":      "#8b4513",
		"font_family": "Segoe UI",
		"font_size":   "11",
		"opacity":     "0.9",
	}
}

func (n *Notes) Text() string {
	return n.text
}

func (n *Notes) SetText(text string) {
	n.text = text
}
