package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/glorpus-work/modpick/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu    sync.Mutex
	shown int
	keys  []session.Key
	snap  session.Snapshot
	menu  *Menu
}

func (f *fakeController) Show(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown++
	return true
}

func (f *fakeController) HandleKey(_ context.Context, k session.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, k)
	if k == session.KeyBack && f.menu != nil {
		f.menu.ReturnToMenu()
	}
	return true
}

func (f *fakeController) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func TestModel_InitShowsSession(t *testing.T) {
	fc := &fakeController{}
	m := New(context.Background(), fc, NewMenu())

	cmd := m.Init()
	require.NotNil(t, cmd)

	// the batch contains the spinner tick and the show call
	msg := m.show()()
	assert.Equal(t, handledMsg{accepted: true}, msg)
	assert.Equal(t, 1, fc.shown)
}

func TestModel_KeysAreForwarded(t *testing.T) {
	fc := &fakeController{snap: session.Snapshot{
		State: session.StateBrowsing,
		Lines: []session.Line{
			{Kind: session.LineInfo, Text: "Utilla V1.6.9 (Libraries)"},
			{Kind: session.LineError, Text: "Could not find dependency: Nope"},
		},
	}}
	m := New(context.Background(), fc, NewMenu())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, handledMsg{key: session.KeyRight, accepted: true}, msg)

	_, cmd = m.Update(msg)
	assert.Nil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "Utilla V1.6.9 (Libraries)")
	assert.Contains(t, view, "Could not find dependency: Nope")
	assert.Equal(t, []session.Key{session.KeyRight}, fc.keys)
}

func TestModel_BackQuits(t *testing.T) {
	menu := NewMenu()
	fc := &fakeController{menu: menu}
	m := New(context.Background(), fc, menu)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, cmd = m.Update(cmd())
	require.NotNil(t, cmd)

	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.True(t, m.Done())
	assert.Empty(t, m.View())
}

func TestModel_CtrlCQuits(t *testing.T) {
	fc := &fakeController{}
	m := New(context.Background(), fc, NewMenu())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.Empty(t, fc.keys)
}

func TestModel_BusyShowsStatus(t *testing.T) {
	fc := &fakeController{snap: session.Snapshot{State: session.StateInstalling, Busy: true}}
	m := New(context.Background(), fc, NewMenu())

	m.Update(ChangedMsg{})
	assert.Contains(t, m.View(), "installing...")
}

func TestKeyMap_SessionKey(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want session.Key
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, session.KeyLeft},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}, session.KeyRight},
		{tea.KeyMsg{Type: tea.KeyEnter}, session.KeyEnter},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}}, session.KeyOption1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}}, session.KeyOption2},
		{tea.KeyMsg{Type: tea.KeyEsc}, session.KeyBack},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, session.KeyNone},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, keys.sessionKey(tt.msg))
		})
	}
}
