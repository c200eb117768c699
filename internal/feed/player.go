package feed

import "sync"

// Action is a media command for the client to execute.
type Action string

const (
	ActionPlay   Action = "play"
	ActionPause  Action = "pause"
	ActionMute   Action = "mute"
	ActionUnmute Action = "unmute"
)

type Command struct {
	Action Action `json:"action"`
	ID     string `json:"id"`
}

// CommandBuffer is a Player for a remote client: every transition is queued as
// a command and handed out by Drain. Play never fails here; the client reports
// rejected autoplay separately.
type CommandBuffer struct {
	mu       sync.Mutex
	commands []Command
	playing  map[string]bool
}

func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{playing: map[string]bool{}}
}

func (b *CommandBuffer) Play(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playing[id] = true
	b.commands = append(b.commands, Command{Action: ActionPlay, ID: id})
	return nil
}

func (b *CommandBuffer) Pause(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.playing, id)
	b.commands = append(b.commands, Command{Action: ActionPause, ID: id})
}

func (b *CommandBuffer) SetMuted(id string, muted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	action := ActionUnmute
	if muted {
		action = ActionMute
	}
	b.commands = append(b.commands, Command{Action: action, ID: id})
}

func (b *CommandBuffer) Playing(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing[id]
}

// Drain returns the queued commands and clears the queue.
func (b *CommandBuffer) Drain() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.commands
	b.commands = nil
	if out == nil {
		out = []Command{}
	}
	return out
}

// BlockedError describes a playback attempt the client rejected.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "playback blocked: " + e.Reason
}
