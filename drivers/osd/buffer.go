package osd

import (
	"strings"
	"sync"
)

// Buffer is a Display in memory.
type Buffer struct {
	mtx     sync.Mutex
	cells   [Cols * Rows]byte
	inverse [Cols * Rows]bool
	on      bool
	toggles int
}

var _ Display = (*Buffer)(nil)

func (b *Buffer) StoreChar(offset int, c byte, inverse bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if offset < 0 || offset >= len(b.cells) {
		return
	}
	b.cells[offset] = c
	b.inverse[offset] = inverse
}

func (b *Buffer) Enable(on bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.on = on
	b.toggles++
}

func (b *Buffer) Enabled() bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.on
}

// Enables returns how often Enable was called.
func (b *Buffer) Enables() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.toggles
}

// Line returns row decoded from CP437 and whether it is highlighted.
func (b *Buffer) Line(row int) (string, bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	cells := make([]byte, Cols)
	copy(cells, b.cells[row*Cols:(row+1)*Cols])
	for i, c := range cells {
		if c == 0 {
			cells[i] = ' '
		}
	}
	s, _ := Font.NewDecoder().Bytes(cells)
	return strings.TrimRight(string(s), " "), b.inverse[row*Cols]
}

// Text returns all rows, trailing empty rows removed.
func (b *Buffer) Text() string {
	lines := make([]string, Rows)
	for i := range lines {
		lines[i], _ = b.Line(i)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
