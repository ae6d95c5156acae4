// Package nav tracks the active deck section, the set of sections the reader
// has visited and the reading progress derived from it.
package nav

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/gtmdeck/pkg/debug"
)

// Section is one entry of the fixed navigation list.
type Section struct {
	ID    string
	Label string
	Icon  string
}

// Direction is a keyboard step through the section list.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ErrNoSections is returned by New for an empty section list.
var ErrNoSections = errors.New("nav: no sections")

// Controller owns NavigationState. The visited set only ever grows, so
// Progress never decreases during a session.
type Controller struct {
	sections     []Section
	index        map[string]int
	active       int
	visited      map[string]bool
	inputFocused bool
	onScroll     []func()
}

// New builds a controller with initial active and already visited.
func New(sections []Section, initial string) (*Controller, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	index := make(map[string]int, len(sections))
	for i, s := range sections {
		if s.ID == "" {
			return nil, fmt.Errorf("nav: section %d has empty id", i)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("nav: duplicate section id %q", s.ID)
		}
		index[s.ID] = i
	}
	start, ok := index[initial]
	if !ok {
		return nil, fmt.Errorf("nav: unknown initial section %q", initial)
	}
	return &Controller{
		sections: append([]Section(nil), sections...),
		index:    index,
		active:   start,
		visited:  map[string]bool{initial: true},
	}, nil
}

// NavigateTo activates id and marks it visited. Selecting the section that
// is already active only re-confirms it as visited and leaves the scroll
// position alone. Unknown ids are ignored and reported as false.
func (c *Controller) NavigateTo(id string) bool {
	i, ok := c.index[id]
	if !ok {
		debug.Log("nav: unknown section %q", id)
		return false
	}
	c.visited[id] = true
	if i == c.active {
		return true
	}
	c.active = i
	for _, fn := range c.onScroll {
		fn()
	}
	return true
}

// Step moves to the neighbouring section. It does nothing at either end of
// the list or while a text input has focus.
func (c *Controller) Step(dir Direction) bool {
	if c.inputFocused {
		return false
	}
	next := c.active + 1
	if dir == Backward {
		next = c.active - 1
	}
	if next < 0 || next >= len(c.sections) {
		return false
	}
	return c.NavigateTo(c.sections[next].ID)
}

// SetInputFocus records whether a text input currently holds keyboard focus.
func (c *Controller) SetInputFocus(focused bool) { c.inputFocused = focused }

// InputFocused reports the value last passed to SetInputFocus.
func (c *Controller) InputFocused() bool { return c.inputFocused }

// OnScrollReset registers fn to run whenever the active section changes.
func (c *Controller) OnScrollReset(fn func()) {
	c.onScroll = append(c.onScroll, fn)
}

// Progress is the visited percentage in [0,100].
func (c *Controller) Progress() float64 {
	return 100 * float64(len(c.visited)) / float64(len(c.sections))
}

// Active returns the active section.
func (c *Controller) Active() Section { return c.sections[c.active] }

func (c *Controller) ActiveIndex() int { return c.active }

func (c *Controller) IsVisited(id string) bool { return c.visited[id] }

func (c *Controller) VisitedCount() int { return len(c.visited) }

// Sections returns a copy of the section list.
func (c *Controller) Sections() []Section {
	return append([]Section(nil), c.sections...)
}
