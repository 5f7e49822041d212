/*
Copyright (C) 2019-2021 Andreas T Jonsson

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package platform

const (
	consoleWidth  = 80
	consoleHeight = 25
	tabWidth      = 8
)

// textBuffer is a scrolling character grid fed by console output.
type textBuffer struct {
	cells [consoleHeight][consoleWidth]byte
	x, y  int
}

func (b *textBuffer) write(p []byte) {
	for _, c := range p {
		switch c {
		case 0, 7:
		case '\r':
			b.x = 0
		case '\n':
			b.x = 0
			b.lineFeed()
		case '\b':
			if b.x > 0 {
				b.x--
			}
		case '\t':
			if b.x = (b.x + tabWidth) &^ (tabWidth - 1); b.x >= consoleWidth {
				b.x = 0
				b.lineFeed()
			}
		default:
			if b.x >= consoleWidth {
				b.x = 0
				b.lineFeed()
			}
			b.cells[b.y][b.x] = c
			b.x++
		}
	}
}

func (b *textBuffer) lineFeed() {
	if b.y < consoleHeight-1 {
		b.y++
		return
	}
	copy(b.cells[:], b.cells[1:])
	b.cells[consoleHeight-1] = [consoleWidth]byte{}
}

func (b *textBuffer) glyph(x, y int) rune {
	if c := b.cells[y][x]; c != 0 {
		return codePage437[c]
	}
	return ' '
}

// cursor returns the cursor cell, clamped to the grid.
func (b *textBuffer) cursor() (int, int) {
	if b.x >= consoleWidth {
		return consoleWidth - 1, b.y
	}
	return b.x, b.y
}
