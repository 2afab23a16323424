package maze

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

type Cell byte

const (
	Free   Cell = '.'
	Wall   Cell = '#'
	Start  Cell = 'S'
	Goal   Cell = 'G'
	Danger Cell = 'D'
)

var (
	ErrEmptyMap       = errors.New("map has no cells")
	ErrRaggedMap      = errors.New("map rows differ in length")
	ErrUnknownCell    = errors.New("unknown map cell")
	ErrNoStart        = errors.New("map has no start cell")
	ErrMultipleStarts = errors.New("map has more than one start cell")
)

// Map is a rectangular grid. Digits 1-9 are free cells whose entry cost is
// the digit; every other free cell costs 1 to enter.
type Map struct {
	cells [][]Cell
	start State
}

// ParseMap reads a grid written one row per line. Lines are trimmed and
// blank lines are ignored, so indented literals work.
func ParseMap(text string) (*Map, error) {
	m := &Map{}
	starts := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r := len(m.cells)
		row := make([]Cell, 0, len(line))
		for c, ch := range []byte(line) {
			cell := Cell(ch)
			switch {
			case cell == Free, cell == Wall, cell == Goal, cell == Danger:
			case cell == Start:
				starts++
				m.start = State{R: r, C: c}
			case ch >= '1' && ch <= '9':
			default:
				return nil, fmt.Errorf("%q at row %d col %d: %w", ch, r, c, ErrUnknownCell)
			}
			row = append(row, cell)
		}
		if r > 0 && len(row) != len(m.cells[0]) {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", r, len(row), len(m.cells[0]), ErrRaggedMap)
		}
		m.cells = append(m.cells, row)
	}
	switch {
	case len(m.cells) == 0:
		return nil, ErrEmptyMap
	case starts == 0:
		return nil, ErrNoStart
	case starts > 1:
		return nil, ErrMultipleStarts
	}
	return m, nil
}

func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	m, err := ParseMap(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}
	return m, nil
}

func (m *Map) Rows() int    { return len(m.cells) }
func (m *Map) Cols() int    { return len(m.cells[0]) }
func (m *Map) Start() State { return m.start }

func (m *Map) InBounds(s State) bool {
	return s.R >= 0 && s.C >= 0 && s.R < m.Rows() && s.C < m.Cols()
}

func (m *Map) At(s State) (Cell, bool) {
	if !m.InBounds(s) {
		return 0, false
	}
	return m.cells[s.R][s.C], true
}

func (m *Map) IsFree(s State) bool {
	cell, ok := m.At(s)
	return ok && cell != Wall
}

func (m *Map) IsGoal(s State) bool {
	cell, ok := m.At(s)
	return ok && cell == Goal
}

func (m *Map) IsDanger(s State) bool {
	cell, ok := m.At(s)
	return ok && cell == Danger
}

func (m *Map) IsTerminal(s State) bool {
	return m.IsGoal(s) || m.IsDanger(s)
}

// EntryCost is the cost of stepping into s.
func (m *Map) EntryCost(s State) float64 {
	cell, _ := m.At(s)
	if cell >= '1' && cell <= '9' {
		return float64(cell - '0')
	}
	return 1
}

// States lists every non-wall cell in row-major order.
func (m *Map) States() []State {
	var out []State
	for r, row := range m.cells {
		for c, cell := range row {
			if cell != Wall {
				out = append(out, State{R: r, C: c})
			}
		}
	}
	return out
}

func (m *Map) Goals() []State {
	var out []State
	for _, s := range m.States() {
		if m.IsGoal(s) {
			out = append(out, s)
		}
	}
	return out
}

func (m *Map) String() string {
	var b strings.Builder
	for i, row := range m.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.Write(cellsToBytes(row))
	}
	return b.String()
}

func cellsToBytes(row []Cell) []byte {
	out := make([]byte, len(row))
	for i, c := range row {
		out[i] = byte(c)
	}
	return out
}
