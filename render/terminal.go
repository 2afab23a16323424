// Package render draws grid worlds and agent progress on a terminal.
// Rendering is best effort: write errors are logged and never reach the
// agents.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"

	"github.com/CodeStranger-Fred/gridplan/maze"
	"github.com/CodeStranger-Fred/gridplan/mdp"
	"github.com/CodeStranger-Fred/gridplan/search"
)

const cellWidth = 7

type Terminal struct {
	w   io.Writer
	au  aurora.Aurora
	m   *maze.Map
	log *zap.Logger

	// EveryStep prints a table row for each learner step, not just the
	// end of each episode.
	EveryStep bool
	header    bool
}

func NewTerminal(w io.Writer, m *maze.Map, colors bool, log *zap.Logger) *Terminal {
	if log == nil {
		log = zap.NewNop()
	}
	return &Terminal{w: w, au: aurora.NewAurora(colors), m: m, log: log}
}

// errWriter keeps the first write error so a whole frame can be drawn
// before it is reported.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (t *Terminal) done(ew *errWriter, what string) {
	if ew.err != nil {
		t.log.Warn("render failed", zap.String("frame", what), zap.Error(ew.err))
	}
}

// Grid draws one frame. label returns the text for a free cell; current
// and marked cells are highlighted.
func (t *Terminal) Grid(label func(maze.State) string, current *maze.State, marked map[maze.State]bool) error {
	ew := &errWriter{w: t.w}
	for r := 0; r < t.m.Rows(); r++ {
		for c := 0; c < t.m.Cols(); c++ {
			s := maze.State{R: r, C: c}
			ew.printf("%v", t.cell(s, label(s), current, marked))
			ew.printf("%v", t.au.White("|"))
		}
		ew.printf("\n")
	}
	ew.printf("\n")
	return ew.err
}

func (t *Terminal) cell(s maze.State, text string, current *maze.State, marked map[maze.State]bool) aurora.Value {
	cell, _ := t.m.At(s)
	text = pad(text)
	switch {
	case cell == maze.Wall:
		return t.au.Gray(8, pad("###"))
	case current != nil && *current == s:
		return t.au.Green(text).Bold()
	case marked[s]:
		return t.au.Yellow(text)
	case cell == maze.Goal:
		return t.au.Cyan(text)
	case cell == maze.Danger:
		return t.au.Red(text)
	}
	return t.au.Blue(text)
}

// pad right-aligns text by rune count so arrow glyphs line up.
func pad(text string) string {
	n := cellWidth - utf8.RuneCountInString(text)
	if n <= 0 {
		return text
	}
	return strings.Repeat(" ", n) + text
}

func formatValue(x float64) string {
	return fmt.Sprintf("%.2f", x)
}

func (t *Terminal) numbers(values map[maze.State]float64) func(maze.State) string {
	return func(s maze.State) string {
		v, ok := values[s]
		if !ok {
			cell, _ := t.m.At(s)
			return string(rune(cell))
		}
		return formatValue(v)
	}
}

// ObserveExpand draws the cost map with the expanded state and the newly
// discovered states highlighted.
func (t *Terminal) ObserveExpand(ev search.ExpandEvent[maze.State]) {
	marked := make(map[maze.State]bool, len(ev.Discovered))
	for _, s := range ev.Discovered {
		marked[s] = true
	}
	ew := &errWriter{w: t.w}
	ew.printf("expand %v, discovered %v\n", ev.Current, ev.Discovered)
	if ew.err == nil {
		ew.err = t.Grid(t.numbers(ev.Costs), &ev.Current, marked)
	}
	t.done(ew, "expand")
}

func (t *Terminal) ObservePath(path []maze.State) {
	ew := &errWriter{w: t.w}
	if path == nil {
		ew.printf("%v\n", t.au.Red("no path found"))
		t.done(ew, "path")
		return
	}
	onPath := make(map[maze.State]bool, len(path))
	order := make(map[maze.State]int, len(path))
	for i, s := range path {
		onPath[s] = true
		order[s] = i
	}
	ew.printf("path of %d states: %v\n", len(path), path)
	if ew.err == nil {
		ew.err = t.Grid(func(s maze.State) string {
			if i, ok := order[s]; ok {
				return fmt.Sprint(i)
			}
			cell, _ := t.m.At(s)
			return string(rune(cell))
		}, nil, onPath)
	}
	t.done(ew, "path")
}

func (t *Terminal) ObserveStep(_ *mdp.QTable[maze.State, maze.Action], ev mdp.StepEvent[maze.State, maze.Action]) {
	if !t.EveryStep {
		return
	}
	ew := &errWriter{w: t.w}
	if !t.header {
		ew.printf("%4s%9s%9s%11s%9s%9s%9s%9s\n", "ep", "State", "Action", "Next state", "Reward", "Old Q", "Trial", "New Q")
		t.header = true
	}
	next := "-"
	if !ev.Terminated {
		next = ev.Next.String()
	}
	ew.printf("%4d%9s%9s%11s%9.2f%9.2f%9.2f%9.2f\n",
		ev.Episode, ev.State, ev.Action, next, float64(ev.Reward), ev.OldQ, ev.Target, ev.NewQ)
	t.done(ew, "step")
}

// ObserveEpisode draws state values and the greedy policy after an
// episode.
func (t *Terminal) ObserveEpisode(q *mdp.QTable[maze.State, maze.Action], ep mdp.Episode[maze.State, maze.Action]) {
	ew := &errWriter{w: t.w}
	ew.printf("episode %d: %s after %d steps, total reward %.2f\n",
		ep.Index, ep.Outcome, ep.Steps, float64(ep.TotalReward))
	if ew.err == nil {
		ew.err = t.Policy(q)
	}
	t.done(ew, "episode")
}

// Policy draws V(s) and the greedy action of every state.
func (t *Terminal) Policy(q *mdp.QTable[maze.State, maze.Action]) error {
	values := q.Values()
	return t.Grid(func(s maze.State) string {
		v, ok := values[s]
		if !ok {
			return ""
		}
		if t.m.IsTerminal(s) {
			return formatValue(v)
		}
		a, _, err := q.Argmax(s)
		if err != nil {
			return formatValue(v)
		}
		return a.Arrow() + formatValue(v)
	}, nil, nil)
}

// QValues prints one row per state with Q(s, a) for every action.
func (t *Terminal) QValues(q *mdp.QTable[maze.State, maze.Action]) error {
	table := q.Snapshot()
	ew := &errWriter{w: t.w}
	ew.printf("%8s", "state")
	for _, a := range q.Actions() {
		ew.printf("%8s", a.Arrow())
	}
	ew.printf("\n")
	for _, s := range q.States() {
		ew.printf("%8s", s)
		for _, a := range q.Actions() {
			ew.printf("%8.2f", table[s][a])
		}
		ew.printf("\n")
	}
	return ew.err
}
