// Package menu implements a single-line redrawing console menu.
//
// The menu occupies one line of console output and is repainted in place
// with a carriage return; the selected item is highlighted with the ANSI
// inverse-video escape code. Menu actions print their own lines, so the
// menu tracks whether it must move to a fresh line before repainting.
package menu

import (
	"errors"
	"io"
	"strconv"
)

// ANSI escape codes for the selection highlight.
const (
	inverseVideo = "\x1b[7m"
	normalVideo  = "\x1b[0m"
)

// Item is a named menu entry. Run blocks until the action is done.
type Item struct {
	Name string
	Run  func() error
}

// Menu is a fixed list of items with one selected.
type Menu struct {
	out       io.Writer
	title     string
	items     []Item
	selection int
	needsLine bool
	buf       []byte
}

// New returns a menu that paints itself on out. The menu starts on a
// fresh line so it does not stomp whatever the console printed before.
func New(out io.Writer, title string, items []Item) *Menu {
	return &Menu{
		out:       out,
		title:     title,
		items:     items,
		needsLine: true,
		buf:       make([]byte, 0, 96),
	}
}

// Render repaints the menu line. It is cheap enough to call on every
// poll iteration, which also makes the menu appear immediately on a
// console that attaches late.
func (m *Menu) Render() {
	m.buf = m.buf[:0]
	if m.needsLine {
		// Avoid stomping the last line printed by an action.
		m.needsLine = false
		m.buf = append(m.buf, '\n')
	}
	m.buf = append(m.buf, '\r')
	m.buf = append(m.buf, m.title...)
	m.buf = append(m.buf, ':', ' ')
	for i := range m.items {
		if i == m.selection {
			m.buf = append(m.buf, inverseVideo...)
		}
		m.buf = append(m.buf, ' ')
		m.buf = append(m.buf, m.items[i].Name...)
		m.buf = append(m.buf, ' ')
		if i == m.selection {
			m.buf = append(m.buf, normalVideo...)
		}
	}
	m.out.Write(m.buf)
}

// Move shifts the selection by delta items, clamped to the item list.
func (m *Menu) Move(delta int32) {
	m.selection = int(Clamp(int32(m.selection)+delta, 0, int32(len(m.items)-1)))
}

// Selection returns the index of the selected item.
func (m *Menu) Selection() int {
	return m.selection
}

// Activate runs the selected item's action. Render leaves the cursor
// mid-line, so the menu first terminates its own line, and it repaints
// on a fresh line afterwards regardless of how the action ended.
func (m *Menu) Activate() error {
	m.out.Write([]byte{'\n'})
	m.needsLine = true
	it := m.items[m.selection]
	if it.Run == nil {
		return errors.New("menu: no action for " + it.Name)
	}
	return it.Run()
}

// ClickDetector turns a polled button level into a click event on the
// pressed-to-released edge, so holding the knob down fires only once.
type ClickDetector struct {
	prev bool
}

// Clicked records the current button level and reports whether a click
// completed since the previous poll.
func (c *ClickDetector) Clicked(pressed bool) bool {
	clicked := !pressed && c.prev
	c.prev = pressed
	return clicked
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PrintReading redraws the current console line with a labeled value,
// right-aligned to six columns. It appends into buf instead of using
// fmt so polling loops do not churn the heap, and returns the possibly
// regrown buffer for reuse.
func PrintReading(w io.Writer, buf []byte, label string, value int64) []byte {
	var digits [20]byte
	n := strconv.AppendInt(digits[:0], value, 10)
	buf = buf[:0]
	buf = append(buf, '\r', ' ')
	buf = append(buf, label...)
	buf = append(buf, ':', ' ')
	for i := len(n); i < 6; i++ {
		buf = append(buf, ' ')
	}
	buf = append(buf, n...)
	buf = append(buf, ' ', ' ')
	w.Write(buf)
	return buf
}
