package hooks

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/pkg/errno"
)

// Handler is the capability stored behind a registry entry: given a read
// view of the dispatch context it returns a result. Handlers may block; the
// executor bounds their time.
type Handler func(ctx context.Context, hctx *entity.Context) (*entity.Result, error)

// Entry is a registration record. It is created at register time, removed at
// unregister time, and mutated only through Enable/Disable.
type Entry struct {
	// ID uniquely identifies the registration.
	ID string `json:"id"`

	// Name is an optional human-readable handler name, used by the policy
	// file to address builtin handlers.
	Name string `json:"name,omitempty"`

	// Event is the lifecycle moment the handler subscribes to.
	Event entity.Event `json:"event"`

	// Priority orders execution; higher runs first.
	Priority int `json:"priority"`

	// Enabled gates the entry without removing it.
	Enabled bool `json:"enabled"`

	// Critical promotes a timeout or handler error to an abort.
	Critical bool `json:"critical,omitempty"`

	// Pattern is an optional regexp matched against the context's tool
	// name; entries with a pattern are skipped for non-matching dispatches.
	Pattern string `json:"pattern,omitempty"`

	handler Handler
	re      *regexp.Regexp
	seq     uint64
}

// Handler returns the registered capability.
func (e *Entry) Handler() Handler { return e.handler }

// Matches reports whether the entry's tool-name filter accepts the context.
// Entries without a pattern match every dispatch.
func (e *Entry) Matches(hctx *entity.Context) bool {
	if e.re == nil {
		return true
	}
	return e.re.MatchString(hctx.ToolName())
}

// RegisterOptions carries the optional fields of a registration.
type RegisterOptions struct {
	// ID overrides the generated entry id.
	ID string

	// Name labels the entry for the policy file and diagnostics.
	Name string

	// Pattern is a tool-name regexp filter (empty = match all).
	Pattern string

	// Critical marks the handler's failure or timeout as an abort.
	Critical bool

	// Disabled registers the entry in disabled state.
	Disabled bool
}

// Registry is the in-memory catalog of handlers per event. It executes
// nothing itself; the executor pulls ordered entries from it.
//
// Thread-safe: all mutations are guarded by a mutex.
type Registry struct {
	mu      sync.RWMutex
	entries map[entity.Event][]*Entry
	byID    map[string]*Entry
	nextSeq uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[entity.Event][]*Entry),
		byID:    make(map[string]*Entry),
	}
}

// Register adds a handler for an event and returns the entry id.
// Registering a duplicate id is rejected.
func (r *Registry) Register(event entity.Event, handler Handler, priority int, opts *RegisterOptions) (string, error) {
	if !event.Valid() {
		return "", fmt.Errorf("%w: %q", errno.ErrUnknownEvent, event)
	}
	if handler == nil {
		return "", errno.ErrNilHandler
	}
	if opts == nil {
		opts = &RegisterOptions{}
	}

	var re *regexp.Regexp
	if opts.Pattern != "" {
		compiled, err := regexp.Compile(opts.Pattern)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", errno.ErrBadPattern, opts.Pattern, err)
		}
		re = compiled
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return "", fmt.Errorf("%w: %q", errno.ErrDuplicateEntry, id)
	}

	r.nextSeq++
	e := &Entry{
		ID:       id,
		Name:     opts.Name,
		Event:    event,
		Priority: priority,
		Enabled:  !opts.Disabled,
		Critical: opts.Critical,
		Pattern:  opts.Pattern,
		handler:  handler,
		re:       re,
		seq:      r.nextSeq,
	}
	r.byID[id] = e
	r.entries[event] = append(r.entries[event], e)
	return id, nil
}

// Unregister removes an entry by id. Returns false when the id is unknown.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)

	list := r.entries[e.Event]
	for i, cand := range list {
		if cand.ID == id {
			r.entries[e.Event] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return true
}

// ForEvent returns the entries for an event sorted by descending priority,
// ties broken by registration order. With enabledOnly, disabled entries are
// filtered out.
func (r *Registry) ForEvent(event entity.Event, enabledOnly bool) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.entries[event]
	out := make([]*Entry, 0, len(src))
	for _, e := range src {
		if enabledOnly && !e.Enabled {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Enable re-enables an entry. Returns false when the id is unknown.
func (r *Registry) Enable(id string) bool { return r.setEnabled(id, true) }

// Disable disables an entry without removing it.
func (r *Registry) Disable(id string) bool { return r.setEnabled(id, false) }

func (r *Registry) setEnabled(id string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return false
	}
	e.Enabled = enabled
	return true
}

// ListFilter narrows List output. Zero value lists everything.
type ListFilter struct {
	// Event restricts to one event when non-empty.
	Event entity.Event

	// EnabledOnly drops disabled entries.
	EnabledOnly bool
}

// List returns entries matching the filter, in registration order.
func (r *Registry) List(filter ListFilter) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for _, list := range r.entries {
		for _, e := range list {
			if filter.Event != "" && e.Event != filter.Event {
				continue
			}
			if filter.EnabledOnly && !e.Enabled {
				continue
			}
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// ApplyPolicy enables or disables named entries in one shot. Unknown names
// are ignored so a policy file can mention handlers that are not loaded in
// every process.
func (r *Registry) ApplyPolicy(rules map[string]bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.byID {
		if e.Name == "" {
			continue
		}
		if enabled, ok := rules[e.Name]; ok {
			e.Enabled = enabled
		}
	}
}

// ApplyPriorities overrides the priority of named entries. Unknown names are
// ignored, same as ApplyPolicy.
func (r *Registry) ApplyPriorities(rules map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.byID {
		if e.Name == "" {
			continue
		}
		if priority, ok := rules[e.Name]; ok {
			e.Priority = priority
		}
	}
}
