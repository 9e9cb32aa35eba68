package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var testItems = []MenuItem{
	{Key: "build", Label: "Build and run", Hint: "droidloop build"},
	{Key: "task", Label: "Run a Gradle task"},
	{Key: "clean", Label: "Clean"},
}

func TestMenuModel_HandleKey(t *testing.T) {
	tests := []struct {
		name       string
		msgs       []tea.Msg
		wantCursor int
		wantChosen bool
		wantQuit   bool
	}{
		{name: "enter chooses first", msgs: []tea.Msg{keyEnter}, wantCursor: 0, wantChosen: true},
		{name: "navigate then choose", msgs: []tea.Msg{keyDown, keyDown, keyDown, keyEnter}, wantCursor: 2, wantChosen: true},
		{name: "digit chooses", msgs: []tea.Msg{keyRune('2')}, wantCursor: 1, wantChosen: true},
		{name: "q quits", msgs: []tea.Msg{keyRune('q')}, wantQuit: true},
		{name: "esc quits", msgs: []tea.Msg{keyDown, keyEsc}, wantCursor: 1, wantQuit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, quit := feed(newMenuModel(MenuHeader{}, testItems), tt.msgs...)
			m := final.(menuModel)
			if !quit {
				t.Fatal("expected the program to quit")
			}
			if m.chosen != tt.wantChosen || m.quit != tt.wantQuit {
				t.Errorf("chosen=%v quit=%v, want %v %v", m.chosen, m.quit, tt.wantChosen, tt.wantQuit)
			}
			if m.cursor != tt.wantCursor {
				t.Errorf("cursor = %d, want %d", m.cursor, tt.wantCursor)
			}
		})
	}
}

func TestMenuModel_View(t *testing.T) {
	m := newMenuModel(MenuHeader{Version: "1.2.0", Project: "sample", Variant: "debug"}, testItems)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	view := next.View()

	for _, want := range []string{"DROIDLOOP", "v1.2.0", "sample", "debug", "not chosen yet", "Build and run", "droidloop build", "[3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		cursor, n, size int
		start, end      int
	}{
		{0, 5, 10, 0, 5},
		{0, 20, 10, 0, 10},
		{10, 20, 10, 5, 15},
		{19, 20, 10, 10, 20},
	}
	for _, tt := range tests {
		start, end := scrollWindow(tt.cursor, tt.n, tt.size)
		if start != tt.start || end != tt.end {
			t.Errorf("scrollWindow(%d, %d, %d) = %d, %d; want %d, %d", tt.cursor, tt.n, tt.size, start, end, tt.start, tt.end)
		}
	}
}
