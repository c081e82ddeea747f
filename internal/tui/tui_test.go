package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const diff = "--- original\n+++ modified\n@@ -1 +1 @@\n-old\n+new\n"

func sized(t *testing.T) *model {
	t.Helper()
	m := newModel("main.go", diff, termenv.Ascii)
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	require.Nil(t, cmd)
	require.True(t, m.ready)
	return m
}

func TestViewBeforeSizeIsPlaceholder(t *testing.T) {
	t.Parallel()

	m := newModel("main.go", diff, termenv.Ascii)
	require.Equal(t, "Initializing…", m.View())
	require.Nil(t, m.Init())
}

func TestViewShowsDiffAndSummary(t *testing.T) {
	t.Parallel()

	m := sized(t)
	view := m.View()
	require.Contains(t, view, "main.go")
	require.Contains(t, view, "1 file changed, 1 insertion(+), 1 deletion(-)")
	require.Contains(t, view, "+new")
	require.Contains(t, view, "y/enter apply")
	require.Equal(t, 78, m.vp.Width)
	require.Equal(t, 20, m.vp.Height)
}

func TestAcceptKeys(t *testing.T) {
	t.Parallel()

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("y")},
		{Type: tea.KeyEnter},
	} {
		m := sized(t)
		_, cmd := m.Update(key)
		require.NotNil(t, cmd, key.String())
		require.IsType(t, tea.QuitMsg{}, cmd())
		require.True(t, m.decided)
		require.True(t, m.accepted, key.String())
	}
}

func TestRejectKeys(t *testing.T) {
	t.Parallel()

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("n")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		m := sized(t)
		_, cmd := m.Update(key)
		require.NotNil(t, cmd, key.String())
		require.IsType(t, tea.QuitMsg{}, cmd())
		require.True(t, m.decided)
		require.False(t, m.accepted, key.String())
	}
}

func TestOtherKeysScroll(t *testing.T) {
	t.Parallel()

	long := "@@ -1,40 +1,40 @@\n" + strings.Repeat(" line\n", 40)
	m := newModel("long", long, termenv.Ascii)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.False(t, m.decided)
	require.Equal(t, 1, m.vp.YOffset)

	m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})
	require.Equal(t, 58, m.vp.Width)
	require.Equal(t, 8, m.vp.Height)
}
