// Package feed drives the short-video stories feed: which item is active and
// playing, the global mute flag, the expanded caption, and the per-visitor
// like/save/comment state of every item.
package feed

import (
	"context"
	"sync"

	"github.com/wichananm65/xinchao-storefront/internal/apperr"
)

// Observation is one visibility signal for a tracked item.
type Observation struct {
	ID           string  `json:"id"`
	Ratio        float64 `json:"ratio"`
	Intersecting bool    `json:"intersecting"`
}

// Player controls the media of feed items. Play may fail when autoplay is
// rejected; the item then stays paused.
type Player interface {
	Play(id string) error
	Pause(id string)
	SetMuted(id string, muted bool)
	Playing(id string) bool
}

// Controller is the active-item state machine of one feed view. There is no
// active item until the first visibility signal.
type Controller struct {
	mu         sync.Mutex
	player     Player
	rec        apperr.Recorder
	tracked    []string
	trackedSet map[string]bool
	active     string
	muted      bool
	expanded   string
	onActivate func(id string)
}

// NewController starts muted, matching browser autoplay rules.
func NewController(player Player, rec apperr.Recorder) *Controller {
	if rec == nil {
		rec = apperr.Nop{}
	}
	return &Controller{
		player:     player,
		rec:        rec,
		trackedSet: map[string]bool{},
		muted:      true,
	}
}

// OnActivate registers a hook called with every newly active item id.
func (c *Controller) OnActivate(fn func(id string)) {
	c.mu.Lock()
	c.onActivate = fn
	c.mu.Unlock()
}

// Track replaces the set of observed items. It may be called again when the
// catalog changes; an active or expanded id that is no longer tracked is cleared.
func (c *Controller) Track(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracked = append([]string(nil), ids...)
	c.trackedSet = make(map[string]bool, len(ids))
	for _, id := range ids {
		c.trackedSet[id] = true
	}
	if !c.trackedSet[c.active] {
		c.active = ""
	}
	if !c.trackedSet[c.expanded] {
		c.expanded = ""
	}
	for _, id := range c.tracked {
		c.player.SetMuted(id, c.muted)
	}
}

// Observe applies a batch of visibility signals and reports whether the
// active item changed. The intersecting item with the highest ratio wins; on a
// tie the earlier observation in the batch wins. Unknown ids are ignored.
func (c *Controller) Observe(ctx context.Context, batch []Observation) bool {
	c.mu.Lock()

	winner := ""
	best := 0.0
	for _, o := range batch {
		if !o.Intersecting || !c.trackedSet[o.ID] {
			continue
		}
		if winner == "" || o.Ratio > best {
			winner, best = o.ID, o.Ratio
		}
	}
	if winner == "" || winner == c.active {
		c.mu.Unlock()
		return false
	}

	c.active = winner
	for _, id := range c.tracked {
		if id != winner {
			c.player.Pause(id)
		}
	}
	if err := c.player.Play(winner); err != nil {
		c.rec.Record(ctx, apperr.New(apperr.MediaPlaybackBlocked, "autoplay", winner, err))
	}
	hook := c.onActivate
	c.mu.Unlock()

	if hook != nil {
		hook(winner)
	}
	return true
}

// SetMuted applies one global mute flag to every tracked item.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
	for _, id := range c.tracked {
		c.player.SetMuted(id, muted)
	}
}

// ToggleMute flips the mute flag and returns the new value.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	muted := !c.muted
	c.mu.Unlock()
	c.SetMuted(muted)
	return muted
}

// TogglePlayback is a manual tap on an item: play when paused, pause when
// playing. It is the way out of a blocked autoplay.
func (c *Controller) TogglePlayback(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.trackedSet[id] {
		return
	}
	if c.player.Playing(id) {
		c.player.Pause(id)
		return
	}
	if err := c.player.Play(id); err != nil {
		c.rec.Record(ctx, apperr.New(apperr.MediaPlaybackBlocked, "play", id, err))
	}
}

// PlaybackBlocked handles a client report that starting playback was rejected.
// The item stays paused until the next manual interaction.
func (c *Controller) PlaybackBlocked(ctx context.Context, id string, cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.trackedSet[id] {
		return
	}
	c.player.Pause(id)
	c.rec.Record(ctx, apperr.New(apperr.MediaPlaybackBlocked, "autoplay", id, cause))
}

// ToggleExpanded expands id, or collapses it when it is already expanded. At
// most one item is expanded. It returns the expanded id, "" when none.
func (c *Controller) ToggleExpanded(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expanded == id {
		c.expanded = ""
	} else if c.trackedSet[id] {
		c.expanded = id
	}
	return c.expanded
}

func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Controller) Expanded() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded
}
