package hooks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/pkg/errno"
)

func noopHandler(_ context.Context, _ *entity.Context) (*entity.Result, error) {
	return entity.OK(), nil
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("no_such_event", noopHandler, 0, nil)
	require.ErrorIs(t, err, errno.ErrUnknownEvent)

	_, err = r.Register(entity.EventPreCommand, nil, 0, nil)
	require.ErrorIs(t, err, errno.ErrNilHandler)

	_, err = r.Register(entity.EventPreCommand, noopHandler, 0, &RegisterOptions{Pattern: "("})
	require.ErrorIs(t, err, errno.ErrBadPattern)
}

func TestRegisterDuplicateID(t *testing.T) {
	r := NewRegistry()

	id, err := r.Register(entity.EventPreCommand, noopHandler, 0, &RegisterOptions{ID: "fixed"})
	require.NoError(t, err)
	require.Equal(t, "fixed", id)

	_, err = r.Register(entity.EventPostCommand, noopHandler, 0, &RegisterOptions{ID: "fixed"})
	require.ErrorIs(t, err, errno.ErrDuplicateEntry)
}

func TestForEventOrdersByPriorityThenRegistration(t *testing.T) {
	r := NewRegistry()

	low, err := r.Register(entity.EventPreCommand, noopHandler, 1, nil)
	require.NoError(t, err)
	highFirst, err := r.Register(entity.EventPreCommand, noopHandler, 10, nil)
	require.NoError(t, err)
	highSecond, err := r.Register(entity.EventPreCommand, noopHandler, 10, nil)
	require.NoError(t, err)

	entries := r.ForEvent(entity.EventPreCommand, false)
	require.Len(t, entries, 3)
	require.Equal(t, highFirst, entries[0].ID)
	require.Equal(t, highSecond, entries[1].ID)
	require.Equal(t, low, entries[2].ID)
}

func TestEnableDisable(t *testing.T) {
	r := NewRegistry()

	id, err := r.Register(entity.EventPreCommand, noopHandler, 0, nil)
	require.NoError(t, err)

	require.True(t, r.Disable(id))
	require.Empty(t, r.ForEvent(entity.EventPreCommand, true))
	require.Len(t, r.ForEvent(entity.EventPreCommand, false), 1)

	require.True(t, r.Enable(id))
	require.Len(t, r.ForEvent(entity.EventPreCommand, true), 1)

	require.False(t, r.Disable("nope"))
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()

	id, err := r.Register(entity.EventPreCommand, noopHandler, 0, nil)
	require.NoError(t, err)

	require.True(t, r.Unregister(id))
	require.Empty(t, r.ForEvent(entity.EventPreCommand, false))
	require.False(t, r.Unregister(id))
}

func TestPatternFiltersByToolName(t *testing.T) {
	r := NewRegistry()

	id, err := r.Register(entity.EventPreToolUse, noopHandler, 0, &RegisterOptions{Pattern: "^Bash$"})
	require.NoError(t, err)

	entries := r.ForEvent(entity.EventPreToolUse, true)
	require.Len(t, entries, 1)
	require.Equal(t, id, entries[0].ID)

	bash := entity.NewContext(entity.EventPreToolUse)
	bash.Tool = &entity.ToolInvocation{Name: "Bash"}
	require.True(t, entries[0].Matches(bash))

	edit := entity.NewContext(entity.EventPreToolUse)
	edit.Tool = &entity.ToolInvocation{Name: "Edit"}
	require.False(t, entries[0].Matches(edit))
}

func TestListFilter(t *testing.T) {
	r := NewRegistry()

	pre, err := r.Register(entity.EventPreCommand, noopHandler, 0, nil)
	require.NoError(t, err)
	post, err := r.Register(entity.EventPostCommand, noopHandler, 0, &RegisterOptions{Disabled: true})
	require.NoError(t, err)

	all := r.List(ListFilter{})
	require.Len(t, all, 2)
	require.Equal(t, pre, all[0].ID)
	require.Equal(t, post, all[1].ID)

	require.Len(t, r.List(ListFilter{EnabledOnly: true}), 1)
	require.Len(t, r.List(ListFilter{Event: entity.EventPostCommand}), 1)
}

func TestApplyPolicy(t *testing.T) {
	r := NewRegistry()

	named, err := r.Register(entity.EventPreCommand, noopHandler, 0, &RegisterOptions{Name: "guard"})
	require.NoError(t, err)
	anon, err := r.Register(entity.EventPreCommand, noopHandler, 0, nil)
	require.NoError(t, err)

	r.ApplyPolicy(map[string]bool{
		"guard":   false,
		"unknown": true,
	})

	enabled := r.ForEvent(entity.EventPreCommand, true)
	require.Len(t, enabled, 1)
	require.Equal(t, anon, enabled[0].ID)

	// Policies are applied in full on every reload, so a later file can
	// re-enable what an earlier one disabled.
	r.ApplyPolicy(map[string]bool{"guard": true})
	require.Len(t, r.ForEvent(entity.EventPreCommand, true), 2)
	_ = named
}
