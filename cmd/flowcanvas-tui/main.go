package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

// Config
const (
	pulseRate   = 600 * time.Millisecond
	maxLogLines = 50
	logHeight   = 6
)

// Styles
var (
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	logTimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(10)
	dragStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// The canvas starts two rows down, below the header.
var screen = grid{Left: 0, Top: 2}

type pulseMsg time.Time

type model struct {
	editor   *canvas.Editor
	spinner  spinner.Model
	viewport viewport.Model
	log      []string
	pulseOn  bool
	ready    bool
}

func initialModel(editor *canvas.Editor) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(gridCols, logHeight)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62"))

	editor.AttachViewport(screen.Origin())

	return model{
		editor:   editor,
		spinner:  s,
		viewport: vp,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, pulse())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.editor.Reset()
			m.appendLog("layout reset")
			return m, nil
		}
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if entry := m.handleMouse(msg); entry != "" {
			m.appendLog(entry)
		}
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pulseMsg:
		m.pulseOn = !m.pulseOn
		return m, pulse()

	case tea.WindowSizeMsg:
		m.viewport.Width = max(gridCols, msg.Width)
		m.ready = true
	}

	return m, nil
}

// handleMouse routes a terminal mouse event to the editor and returns a log
// entry, or "" when nothing changed.
func (m *model) handleMouse(msg tea.MouseMsg) string {
	pointer := screen.Pointer(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return ""
		}
		id, ok := screen.HitTest(m.editor.Render().Nodes, msg.X, msg.Y)
		if !ok || !m.editor.BeginDrag(id, pointer) {
			return ""
		}
		return "grab " + id

	case tea.MouseActionMotion:
		if !screen.Contains(msg.X, msg.Y) {
			if m.editor.EndDrag() {
				return "left canvas, drop"
			}
			return ""
		}
		m.editor.UpdateDrag(pointer)
		return ""

	case tea.MouseActionRelease:
		drag, ok := m.editor.State().(canvas.Dragging)
		if !m.editor.EndDrag() || !ok {
			return ""
		}
		n, _ := m.editor.Node(drag.NodeID)
		return fmt.Sprintf("drop %s at (%g, %g)", n.ID, n.Position.X, n.Position.Y)
	}
	return ""
}

func (m *model) appendLog(entry string) {
	line := logTimeStyle.Render(time.Now().Format("15:04:05")) + dragStyle.Render(entry)
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
	m.viewport.SetContent(strings.Join(m.log, "\n"))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Initializing...", m.spinner.View())
	}

	scene := m.editor.Render()
	header := headerStyle.Render(fmt.Sprintf("%s Workflow", m.spinner.View())) + "  " +
		subtleStyle.Render(canvas.StateName(m.editor.State()))

	var legend strings.Builder
	for _, entry := range scene.Legend {
		color := canvas.StyleFor(entry.Status).Term
		legend.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■ " + entry.Label))
		legend.WriteString("  ")
	}

	footer := subtleStyle.Render(scene.Instructions + " • r reset • q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		drawScene(scene, m.pulseOn).String(),
		legend.String(),
		m.viewport.View(),
		footer,
	)
}

func pulse() tea.Cmd {
	return tea.Tick(pulseRate, func(t time.Time) tea.Msg {
		return pulseMsg(t)
	})
}

func main() {
	seedPath := flag.String("seed", "", "path to seed graph JSON (built-in graph when empty)")
	standOff := flag.String("standoff", string(canvas.StandOffHorizontal), "connection stand-off mode: horizontal|along-line")
	flag.Parse()

	mode, err := canvas.ParseStandOffMode(*standOff)
	if err != nil {
		fmt.Printf("Invalid -standoff: %v\n", err)
		os.Exit(1)
	}

	nodes := canvas.InitialGraph()
	if *seedPath != "" {
		if nodes, err = canvas.LoadGraph(*seedPath); err != nil {
			fmt.Printf("Failed to load seed: %v\n", err)
			os.Exit(1)
		}
	}

	editor := canvas.NewEditor(nodes)
	editor.SetStandOffMode(mode)

	p := tea.NewProgram(initialModel(editor), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
