package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/observability"
	"github.com/couchcryptid/tree-inventory-etl/internal/session"
)

type fakeSource struct {
	count int
	err   error
	asked []string
}

func (f *fakeSource) Markers(_ context.Context, lang genus.Language, name string) ([]domain.Marker, error) {
	f.asked = append(f.asked, string(lang)+":"+name)
	return make([]domain.Marker, f.count), f.err
}

type fakeRenderer struct{ renders int }

func (f *fakeRenderer) RenderFile(string, []domain.Marker) error {
	f.renders++
	return nil
}

type fakeOpener struct{ opened []string }

func (f *fakeOpener) Open(target string) error {
	f.opened = append(f.opened, target)
	return nil
}

type harness struct {
	model    SelectionModel
	source   *fakeSource
	renderer *fakeRenderer
	opener   *fakeOpener
}

func newHarness(t *testing.T, count int) *harness {
	t.Helper()
	table, err := genus.NewTable([]genus.Entry{
		{Latin: "Cercis", French: "Gainier", English: "Redbud"},
		{Latin: "Acer", French: "Érable", English: "Maple"},
		{Latin: "Tilia", French: "Tilleul", English: "Linden"},
	})
	require.NoError(t, err)

	h := &harness{source: &fakeSource{count: count}, renderer: &fakeRenderer{}, opener: &fakeOpener{}}
	s, err := session.New(session.Options{
		Table:    table,
		Source:   h.source,
		Renderer: h.renderer,
		Opener:   h.opener,
		MapPath:  filepath.Join(t.TempDir(), "map.html"),
		Genus:    "Cercis",
		Logger:   observability.DiscardLogger(),
		Metrics:  observability.NewMetricsForTesting(),
	})
	require.NoError(t, err)
	h.model = NewSelectionModel(context.Background(), s)
	return h
}

// send delivers msg and then runs every resulting command to completion,
// feeding their messages back, until the model settles.
func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	var last tea.Cmd
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next, cmd := h.model.Update(queue[0])
		queue = queue[1:]
		h.model = next.(SelectionModel)
		last = cmd
		if cmd == nil {
			continue
		}
		out := cmd()
		if _, quit := out.(tea.QuitMsg); quit {
			return cmd
		}
		queue = append(queue, out)
	}
	return last
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestSelection_InitialView(t *testing.T) {
	h := newHarness(t, 3)
	view := h.model.View()
	assert.Contains(t, view, "Select a genus :")
	assert.Contains(t, view, "> Cercis")
	assert.Contains(t, view, "Français")
	assert.Contains(t, view, "Run")
	assert.Contains(t, view, "Exit")
}

func TestSelection_RunBelowThreshold(t *testing.T) {
	h := newHarness(t, 999)

	h.send(t, keyMsg("r"))

	assert.False(t, h.model.Confirming(), "999 markers need no confirmation")
	assert.False(t, h.model.Busy())
	assert.Equal(t, 1, h.renderer.renders)
	require.Len(t, h.opener.opened, 1)
	assert.Contains(t, h.model.Status(), "999 trees")
	assert.Contains(t, h.model.View(), "> Cercis", "dialog stays on the last genus")
	require.NoError(t, h.model.Err())
}

func TestSelection_ConfirmationAccepted(t *testing.T) {
	h := newHarness(t, 1000)

	h.send(t, keyMsg("enter"))
	require.True(t, h.model.Confirming())
	assert.Contains(t, h.model.View(), "Please note that there are 1000 trees, the browser may have difficulty displaying them.")
	assert.Zero(t, h.renderer.renders)

	h.send(t, keyMsg("enter"))
	assert.False(t, h.model.Confirming())
	assert.Equal(t, 1, h.renderer.renders)
}

func TestSelection_ConfirmationDeclined(t *testing.T) {
	for _, k := range []string{"esc", "n", "q"} {
		t.Run(k, func(t *testing.T) {
			h := newHarness(t, 5000)
			h.send(t, keyMsg("r"))
			require.True(t, h.model.Confirming())

			cmd := h.send(t, keyMsg(k))
			assert.False(t, isQuit(cmd), "declining does not leave the dialog")
			assert.False(t, h.model.Confirming())
			assert.False(t, h.model.Busy())
			assert.Zero(t, h.renderer.renders)
			assert.Empty(t, h.opener.opened)
			assert.Contains(t, h.model.Status(), "Cancelled")
		})
	}

	t.Run("cancel button", func(t *testing.T) {
		h := newHarness(t, 5000)
		h.send(t, keyMsg("r"))
		h.send(t, keyMsg("tab"))
		h.send(t, keyMsg("enter"))
		assert.Zero(t, h.renderer.renders)
	})
}

func TestSelection_SwitchLanguageKeepsGenus(t *testing.T) {
	h := newHarness(t, 1)

	h.send(t, keyMsg("tab"))  // language list
	h.send(t, keyMsg("down")) // Français
	assert.Contains(t, h.model.View(), "> Gainier")

	h.send(t, keyMsg("down")) // English
	assert.Contains(t, h.model.View(), "> Redbud")

	h.send(t, keyMsg("r"))
	assert.Equal(t, []string{"English:Redbud"}, h.source.asked)
}

func TestSelection_MoveGenus(t *testing.T) {
	h := newHarness(t, 1)

	h.send(t, keyMsg("down"))
	assert.Contains(t, h.model.View(), "> Tilia")
	h.send(t, keyMsg("down"))
	assert.Contains(t, h.model.View(), "> Tilia", "cursor stops at the end")
	h.send(t, keyMsg("up"))
	h.send(t, keyMsg("up"))
	h.send(t, keyMsg("up"))
	assert.Contains(t, h.model.View(), "> Acer")

	h.send(t, keyMsg("r"))
	assert.Equal(t, []string{"Latin:Acer"}, h.source.asked)
}

func TestSelection_Exit(t *testing.T) {
	h := newHarness(t, 1)
	assert.True(t, isQuit(h.send(t, keyMsg("q"))))

	h = newHarness(t, 1)
	h.send(t, keyMsg("tab"))
	h.send(t, keyMsg("tab"))
	h.send(t, keyMsg("tab")) // Exit button
	assert.True(t, isQuit(h.send(t, keyMsg("enter"))))
	assert.Zero(t, h.renderer.renders)
}

func TestSelection_QueryErrorQuits(t *testing.T) {
	h := newHarness(t, 1)
	h.source.err = errors.New("no such table: genus_names")

	cmd := h.send(t, keyMsg("r"))
	assert.True(t, isQuit(cmd))
	require.Error(t, h.model.Err())
	assert.Contains(t, h.model.Err().Error(), "no such table")
}

func TestSelection_IgnoresKeysWhileBusy(t *testing.T) {
	h := newHarness(t, 1)

	next, cmd := h.model.Update(keyMsg("r"))
	h.model = next.(SelectionModel)
	require.NotNil(t, cmd)
	assert.True(t, h.model.Busy())

	next, cmd = h.model.Update(keyMsg("down"))
	h.model = next.(SelectionModel)
	assert.Nil(t, cmd)
	assert.Contains(t, h.model.View(), "> Cercis")
}

func TestConfirmModel(t *testing.T) {
	m := NewConfirmModel(1200)
	assert.True(t, strings.HasPrefix(m.Message(), "Please note that there are 1200 trees"))
	assert.Contains(t, m.View(), "Continue")
	assert.Contains(t, m.View(), "Cancel")

	_, cmd := m.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, ConfirmedMsg{Accepted: true}, cmd())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd = m.Update(keyMsg("enter"))
	assert.Equal(t, ConfirmedMsg{Accepted: false}, cmd())
}
