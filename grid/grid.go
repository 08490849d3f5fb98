// Package grid models the admin panel's nine-slot banner grid: which
// slot is empty, showing a banner, or being edited, plus the drag
// reorder flow.
//
// Reordering is two-phase. A drag mutates only the proposed slot order
// and marks the grid dirty; the confirmed order changes exclusively
// through Refresh with a server-provided list, never directly from a
// drag.
package grid

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mcwa24/bilbord-expo/models"
)

// MaxSlots is the number of banner slots in the admin grid. The store
// may hold more rows; only the first MaxSlots are shown.
const MaxSlots = 9

var (
	ErrSlotOutOfRange  = errors.New("slot index out of range")
	ErrSlotNotEmpty    = errors.New("slot already holds a banner")
	ErrSlotEmpty       = errors.New("slot holds no banner")
	ErrNotEditing      = errors.New("slot is not being edited")
	ErrEditInProgress  = errors.New("another slot is being edited")
	ErrMissingImageURL = errors.New("image URL is required")
	ErrMissingLink     = errors.New("link is required")
)

// State is the lifecycle state of one slot.
type State int

const (
	Empty State = iota
	Viewing
	Editing
)

// Draft is the form state of a slot being edited.
type Draft struct {
	ImageURL  string
	Link      string
	Title     string
	ExpiresAt *string
}

// Validate checks the required fields before any network call.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.ImageURL) == "" {
		return ErrMissingImageURL
	}
	if strings.TrimSpace(d.Link) == "" {
		return ErrMissingLink
	}
	return nil
}

type slot struct {
	state  State
	banner *models.Banner
	draft  *Draft
}

// Grid is the in-memory admin grid. It is not safe for concurrent use;
// each admin session owns its own grid.
type Grid struct {
	slots [MaxSlots]slot
	dirty bool
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{}
}

// Refresh replaces the confirmed slot order with a server-provided
// list and clears the dirty flag. Banners beyond MaxSlots are dropped;
// the remaining slots become empty. Any in-progress edit is discarded.
func (g *Grid) Refresh(banners []models.Banner) {
	ordered := make([]models.Banner, len(banners))
	copy(ordered, banners)
	models.SortForDisplay(ordered)

	for i := range g.slots {
		if i < len(ordered) {
			b := ordered[i]
			g.slots[i] = slot{state: Viewing, banner: &b}
		} else {
			g.slots[i] = slot{}
		}
	}
	g.dirty = false
}

// State reports the state of one slot.
func (g *Grid) State(i int) (State, error) {
	if i < 0 || i >= MaxSlots {
		return Empty, ErrSlotOutOfRange
	}
	return g.slots[i].state, nil
}

// Banner returns the banner a Viewing or Editing slot holds, nil for
// an empty slot or an add-in-progress.
func (g *Grid) Banner(i int) (*models.Banner, error) {
	if i < 0 || i >= MaxSlots {
		return nil, ErrSlotOutOfRange
	}
	return g.slots[i].banner, nil
}

// EditInProgress reports whether any slot has an edit in progress.
func (g *Grid) EditInProgress() bool {
	for i := range g.slots {
		if g.slots[i].state == Editing {
			return true
		}
	}
	return false
}

// Dirty reports whether a drag changed the proposed order since the
// last confirmed refresh.
func (g *Grid) Dirty() bool { return g.dirty }

// StartAdd begins creating a banner in an empty slot with a blank
// draft.
func (g *Grid) StartAdd(i int) error {
	if i < 0 || i >= MaxSlots {
		return ErrSlotOutOfRange
	}
	if g.slots[i].state != Empty {
		return ErrSlotNotEmpty
	}
	g.slots[i] = slot{state: Editing, draft: &Draft{}}
	return nil
}

// StartEdit begins editing an occupied slot with a draft prefilled
// from its banner.
func (g *Grid) StartEdit(i int) error {
	if i < 0 || i >= MaxSlots {
		return ErrSlotOutOfRange
	}
	s := &g.slots[i]
	if s.state != Viewing {
		return ErrSlotEmpty
	}
	s.state = Editing
	s.draft = &Draft{
		ImageURL: s.banner.ImageURL,
		Link:     s.banner.Link,
		Title:    s.banner.Title,
	}
	if s.banner.ExpiresAt != nil {
		v := s.banner.ExpiresAt.Format("2006-01-02")
		s.draft.ExpiresAt = &v
	}
	return nil
}

// Draft returns the form state of an editing slot for mutation.
func (g *Grid) Draft(i int) (*Draft, error) {
	if i < 0 || i >= MaxSlots {
		return nil, ErrSlotOutOfRange
	}
	if g.slots[i].state != Editing {
		return nil, ErrNotEditing
	}
	return g.slots[i].draft, nil
}

// Submit validates the draft of an editing slot and hands it back for
// persistence. On validation failure the slot stays in Editing with
// the draft untouched so the error can be surfaced on the form.
func (g *Grid) Submit(i int) (*Draft, error) {
	d, err := g.Draft(i)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Complete finishes an edit with the banner the server persisted,
// moving the slot to Viewing.
func (g *Grid) Complete(i int, b models.Banner) error {
	if i < 0 || i >= MaxSlots {
		return ErrSlotOutOfRange
	}
	if g.slots[i].state != Editing {
		return ErrNotEditing
	}
	g.slots[i] = slot{state: Viewing, banner: &b}
	return nil
}

// Cancel abandons an edit, restoring the previous state: Viewing when
// the slot held a banner, Empty for an abandoned add.
func (g *Grid) Cancel(i int) error {
	if i < 0 || i >= MaxSlots {
		return ErrSlotOutOfRange
	}
	s := &g.slots[i]
	if s.state != Editing {
		return ErrNotEditing
	}
	if s.banner != nil {
		s.state = Viewing
		s.draft = nil
		return nil
	}
	g.slots[i] = slot{}
	return nil
}

// Delete empties an occupied slot after the server confirmed the
// removal.
func (g *Grid) Delete(i int) error {
	if i < 0 || i >= MaxSlots {
		return ErrSlotOutOfRange
	}
	if g.slots[i].state != Viewing {
		return ErrSlotEmpty
	}
	g.slots[i] = slot{}
	return nil
}

// Move reorders the proposed slot sequence by dragging the slot at
// from in front of the slot at to, and marks the grid dirty. Dragging
// is disabled while any slot is being edited so form focus and pointer
// gestures cannot conflate.
func (g *Grid) Move(from, to int) error {
	if from < 0 || from >= MaxSlots || to < 0 || to >= MaxSlots {
		return ErrSlotOutOfRange
	}
	if g.EditInProgress() {
		return ErrEditInProgress
	}
	if g.slots[from].state != Viewing {
		return ErrSlotEmpty
	}
	if from == to {
		return nil
	}

	moved := g.slots[from]
	if from < to {
		copy(g.slots[from:to], g.slots[from+1:to+1])
	} else {
		copy(g.slots[to+1:from+1], g.slots[to:from])
	}
	g.slots[to] = moved
	g.dirty = true
	return nil
}

// Positions derives the reorder payload from the proposed order: every
// occupied slot, in sequence, with its zero-based index among occupied
// slots. Empty slots are excluded first, so the assignment is always a
// contiguous 0..k-1 run.
func (g *Grid) Positions() []models.BannerPosition {
	positions := []models.BannerPosition{}
	for i := range g.slots {
		if g.slots[i].banner == nil {
			continue
		}
		positions = append(positions, models.BannerPosition{
			ID:       strconv.FormatInt(g.slots[i].banner.ID, 10),
			Position: len(positions),
		})
	}
	return positions
}
