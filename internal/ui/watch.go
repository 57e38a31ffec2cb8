package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mohsinsiddi/w3link/internal/store"
)

// StateMsg is sent for every action dispatched to the connection store.
type StateMsg struct {
	Action string
	State  store.State
	At     time.Time
}

// ToastMsg shows a toast in the watch view.
type ToastMsg Toast

// WatchModel is the Bubble Tea model for the live connection monitor.
type WatchModel struct {
	Current   store.State
	Rows      []StateMsg
	ChainName func(chainID int64) string
	Metrics   string // address metrics are served on, if any
	toasts    []Toast
	cursor    int
	Frame     int
	Quitting  bool
}

var spinFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const maxWatchRows = 200

type watchTickMsg struct{}

func watchSpinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return watchTickMsg{}
	})
}

func (m WatchModel) Init() tea.Cmd { return watchSpinTick() }

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.Rows)-1 {
				m.cursor++
			}
		}

	case watchTickMsg:
		m.Frame = (m.Frame + 1) % len(spinFrames)
		return m, watchSpinTick()

	case StateMsg:
		m.Current = msg.State
		// Latest first.
		m.Rows = append([]StateMsg{msg}, m.Rows...)
		if len(m.Rows) > maxWatchRows {
			m.Rows = m.Rows[:maxWatchRows]
		}

	case ToastMsg:
		t := Toast(msg)
		if t.Key != "" {
			for i, old := range m.toasts {
				if old.Key == t.Key {
					m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
					break
				}
			}
		}
		m.toasts = append(m.toasts, t)
		if len(m.toasts) > MaxToasts {
			m.toasts = m.toasts[len(m.toasts)-MaxToasts:]
		}
	}

	return m, nil
}

func (m WatchModel) chain(id int64) string {
	if id == 0 {
		return "—"
	}
	if m.ChainName != nil {
		if name := m.ChainName(id); name != "" {
			return name
		}
	}
	return fmt.Sprintf("chain %d", id)
}

func (m WatchModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	spin := spinFrames[m.Frame]

	// ── Title ─────────────────────────────────────────────────────────────
	sb.WriteString(StyleTitle.Render("👁  Connection monitor") + "\n")

	// ── Status bar ────────────────────────────────────────────────────────
	if m.Current.Connected {
		sb.WriteString(StyleSuccess.Render("● connected") + "  " +
			Addr(TruncateAddr(m.Current.Address)) + "  " +
			ChainName(m.chain(m.Current.ChainID)) + "\n")
	} else {
		sb.WriteString(StyleMeta.Render(spin+" disconnected, waiting for a wallet…") + "\n")
	}
	pending := len(m.Current.PendingTransactions)
	if pending > 0 {
		sb.WriteString(StyleWarning.Render(fmt.Sprintf("  %d pending transaction(s)", pending)) + "\n")
	}
	if m.Metrics != "" {
		sb.WriteString(StyleMeta.Render("  metrics on http://"+m.Metrics+"/metrics") + "\n")
	}
	sb.WriteString("\n")

	// ── Event table ───────────────────────────────────────────────────────
	const (
		wTime   = 10
		wAction = 18
		wChain  = 16
	)
	sep := StyleMeta.Render(strings.Repeat("─", wTime+wAction+wChain+20))

	sb.WriteString(
		padR(StyleDim.Render("TIME"), wTime) + "  " +
			padR(StyleDim.Render("EVENT"), wAction) + "  " +
			padR(StyleDim.Render("CHAIN"), wChain) + "  " +
			StyleDim.Render("ACCOUNT") + "\n",
	)
	sb.WriteString(sep + "\n")

	if len(m.Rows) == 0 {
		sb.WriteString(StyleMeta.Render("  No events yet…") + "\n")
	} else {
		for i, row := range m.Rows {
			line := padR(StyleMeta.Render(row.At.Format("15:04:05")), wTime) + "  " +
				padR(actionStyle(row.Action).Render(row.Action), wAction) + "  " +
				padR(ChainName(m.chain(row.State.ChainID)), wChain) + "  " +
				Addr(TruncateAddr(row.State.Address))
			if i == m.cursor {
				sb.WriteString(StyleSelected.Render(line) + "\n")
			} else {
				sb.WriteString(line + "\n")
			}
		}
		sb.WriteString(sep + "\n")
	}

	// ── Toasts ────────────────────────────────────────────────────────────
	if len(m.toasts) > 0 {
		sb.WriteString("\n")
		for _, t := range m.toasts {
			sb.WriteString("  " + renderToast(t) + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("[ ↑↓ ] navigate   [ q ] quit"))
	sb.WriteString("\n")
	return sb.String()
}

func actionStyle(action string) lipgloss.Style {
	switch action {
	case "connected":
		return StyleSuccess
	case "disconnected":
		return StyleError
	case "addTransaction":
		return StyleWarning
	}
	return StyleInfo
}

// padR pads s to visible width n (ANSI-safe using lipgloss.Width).
func padR(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}
