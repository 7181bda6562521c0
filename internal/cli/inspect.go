package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/highlight"
	"github.com/Rishikoli/chaingraph/pkg/interact"
	"github.com/Rishikoli/chaingraph/pkg/layout"
	"github.com/Rishikoli/chaingraph/pkg/scene"
	"github.com/Rishikoli/chaingraph/pkg/surface"
)

// newInspectCmd creates the inspect command, an interactive terminal view
// of a chain: the layout settles live, nodes and edges can be selected,
// and highlight queries dim non-matching nodes without hiding them.
func newInspectCmd(configPath *string) *cobra.Command {
	var (
		strategy string
		controls bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file...]",
		Short: "Explore fraud chains interactively in the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if strategy == "" {
				strategy = cfg.Layout.Strategy
			}
			return runInspect(cmd.Context(), args, strategy, controls)
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "layout strategy: force (default), layered")
	cmd.Flags().BoolVar(&controls, "controls", true, "show the key help and status rows")
	return cmd
}

func runInspect(ctx context.Context, inputs []string, strategy string, controls bool) error {
	chains, err := chain.ReadChainFiles(inputs)
	if err != nil {
		return err
	}
	s := scene.Build(chains...)

	if strategy == "" {
		strategy = layout.StrategyForce
	}
	engine, err := layout.EngineFor(strategy, layout.DefaultForceOptions(), layout.DefaultLayeredOptions())
	if err != nil {
		return err
	}

	surf := surface.NewSurface(0, 0)
	orc := layout.NewOrchestrator(engine, layout.WithFitter(surf))
	run, err := orc.Animate(ctx, s)
	if err != nil {
		return err
	}

	m := newInspectModel(ctx, s, surf, run, controls)
	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err = prog.Run()
	surf.Close()
	return err
}

// tickMsg drives layout animation frames.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// inspectModel is the bubbletea model hosting one chain view.
type inspectModel struct {
	ctx   context.Context
	scene *scene.Scene
	surf  *surface.Surface
	coord *interact.Coordinator
	run   *layout.AnimatedRun

	positions layout.Positions
	hl        highlight.Result
	settled   bool

	nodeIDs    []string
	cursor     int
	edgeCursor int

	searching bool
	query     string

	width    int
	height   int
	status   string
	controls bool
}

func newInspectModel(ctx context.Context, s *scene.Scene, surf *surface.Surface, run *layout.AnimatedRun, controls bool) *inspectModel {
	m := &inspectModel{
		ctx:      ctx,
		scene:    s,
		surf:     surf,
		run:      run,
		nodeIDs:  s.NodeIDs(),
		status:   "layout settling...",
		controls: controls,
	}
	m.coord = interact.NewCoordinator(s, interact.Callbacks{
		OnNodeClick: func(n chain.Node) {
			m.status = fmt.Sprintf("node %s (%s)", n.DisplayLabel(), n.Type)
		},
		OnEdgeClick: func(e chain.Edge) {
			m.status = fmt.Sprintf("edge %s (%s)", e.ID, e.Type)
		},
	})
	m.positions = run.Positions()
	surf.SetScene(s, m.positions)
	return m
}

func (m *inspectModel) Init() tea.Cmd {
	return tick()
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.surf.Resize(float64(m.canvasWidth()), float64(m.canvasHeight()))
		return m, nil

	case tickMsg:
		if !m.settled {
			more := m.run.Step()
			m.positions = m.run.Positions()
			m.surf.SetPositions(m.positions)
			if !more {
				m.settled = true
				m.status = "layout settled"
			}
		}
		m.surf.StepFocus()
		return m, tick()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *inspectModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.run.Cancel()
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.nodeIDs)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "enter":
		if len(m.nodeIDs) > 0 {
			id := m.nodeIDs[m.cursor]
			m.coord.TapNode(id)
			m.surf.SetSelected(id)
		}

	case "tab":
		m.selectNextEdge()

	case "h":
		m.toggleHover()

	case "esc":
		m.coord.TapCanvas()
		m.surf.SetSelected("")
		m.status = ""

	case "/":
		m.searching = true
		m.query = ""

	case "c":
		m.applyHighlight(highlight.Criteria{})

	case "+", "=":
		m.surf.ZoomIn()
	case "-":
		m.surf.ZoomOut()
	case "left":
		m.surf.PanBy(4, 0)
	case "right":
		m.surf.PanBy(-4, 0)
	case "f":
		m.surf.FitToContent()

	case "F":
		if rect, ok := m.hl.FocusTarget(m.positions); ok {
			m.surf.Focus(rect, true)
		}

	case "x":
		m.exportPNG()
	}
	return m, nil
}

func (m *inspectModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.applyHighlight(highlight.Criteria{Query: m.query, Focus: true})
	case "esc":
		m.searching = false
		m.query = ""
	case "backspace":
		if len(m.query) > 0 {
			m.query = m.query[:len(m.query)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.query += string(msg.Runes)
		}
	}
	return m, nil
}

// selectNextEdge cycles the edge selection, opening its tooltip anchored at
// the edge midpoint.
func (m *inspectModel) selectNextEdge() {
	edges := m.scene.Edges()
	if len(edges) == 0 {
		return
	}
	el := edges[m.edgeCursor%len(edges)]
	m.edgeCursor++

	mid, ok := interact.Midpoint(el, m.positions)
	if !ok {
		return
	}
	m.coord.TapEdge(el.ID, mid)
	m.surf.SetSelected(el.ID)
}

// toggleHover hovers the edge at the cursor, anchoring its tooltip at the
// edge midpoint. Pressing again leaves the edge, restoring whatever was
// selected before.
func (m *inspectModel) toggleHover() {
	if m.coord.State() == interact.StateEdgeHover {
		m.coord.LeaveEdge()
		return
	}

	edges := m.scene.Edges()
	if len(edges) == 0 {
		return
	}
	el := edges[m.edgeCursor%len(edges)]

	mid, ok := interact.Midpoint(el, m.positions)
	if !ok {
		return
	}
	m.coord.HoverEdge(el.ID, mid)
}

func (m *inspectModel) applyHighlight(crit highlight.Criteria) {
	if crit.Empty() {
		m.hl = highlight.Result{}
		m.surf.SetHighlight(m.hl)
		m.status = "highlight cleared"
		return
	}
	m.hl = highlight.Apply(m.scene, crit)
	m.surf.SetHighlight(m.hl)
	m.status = fmt.Sprintf("%d match(es)", len(m.hl.MatchedIDs))
	if crit.Focus {
		if rect, ok := m.hl.FocusTarget(m.positions); ok {
			m.surf.Focus(rect, true)
		}
	}
}

// exportPNG renders the chain at document size rather than terminal size.
func (m *inspectModel) exportPNG() {
	exp := surface.NewSurface(800, 600)
	defer exp.Close()
	exp.SetScene(m.scene, m.positions)
	exp.SetHighlight(m.hl)
	exp.FitToContent()

	path, err := exp.ExportPNG(m.ctx, ".")
	if err != nil {
		m.status = "export failed: " + err.Error()
		return
	}
	m.status = "exported " + path
}

// =============================================================================
// View
// =============================================================================

var (
	glyphNormal   = lipgloss.NewStyle().Foreground(colorWhite)
	glyphMatched  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	glyphDimmed   = lipgloss.NewStyle().Foreground(colorDim)
	glyphSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

func (m *inspectModel) canvasWidth() int {
	if m.width < 20 {
		return 20
	}
	return m.width
}

func (m *inspectModel) canvasHeight() int {
	rows := 6 // title, help, status, tooltip rows
	if !m.controls {
		rows = 4
	}
	h := m.height - rows
	if h < 5 {
		return 5
	}
	return h
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("chaingraph inspect"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  chain %s · %d nodes · %d edges",
		m.scene.ChainID(), m.scene.NodeCount(), m.scene.EdgeCount())))
	b.WriteString("\n")
	if m.controls {
		b.WriteString(StyleDim.Render("j/k select  ⏎ tap node  ⇥ tap edge  h hover edge  / search  c clear  +/- zoom  f fit  F focus  x export  q quit"))
		b.WriteString("\n")
	}

	b.WriteString(m.renderCanvas())

	if m.searching {
		b.WriteString(StyleHighlight.Render("search: " + m.query + "▌"))
	} else if t := m.coord.Tooltip(); t != nil {
		anchor := t.RenderedAnchor(m.surf.Camera())
		b.WriteString(StyleValue.Render(fmt.Sprintf("%s %s %s  ", t.FromLabel, iconArrow, t.ToLabel)))
		b.WriteString(StyleHighlight.Render(confidenceBar(t.Confidence, confidenceBarWidth)))
		b.WriteString(StyleValue.Render(fmt.Sprintf(" %.0f%%", t.Confidence)))
		b.WriteString(StyleDim.Render(fmt.Sprintf("  (%s at %.0f,%.0f)", t.Relationship, anchor.X, anchor.Y)))
	}
	b.WriteString("\n")

	if m.controls {
		if m.status != "" {
			b.WriteString(StyleDim.Render(m.status))
		}
		b.WriteString("\n")
	}

	return b.String()
}

const confidenceBarWidth = 10

// confidenceBar renders a fixed-width gauge for a confidence percentage.
func confidenceBar(confidence float64, width int) string {
	filled := int(chain.ClampConfidence(confidence) / chain.MaxConfidence * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderCanvas projects every node through the camera into a character
// grid. Edges are not drawn; the terminal canvas is for orientation, the
// SVG/PNG outputs carry the full picture.
func (m *inspectModel) renderCanvas() string {
	w, h := m.canvasWidth(), m.canvasHeight()
	grid := make([][]string, h)
	for y := range grid {
		grid[y] = make([]string, w)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	cam := m.surf.Camera()
	for _, el := range m.scene.Nodes() {
		pos, ok := m.positions[el.ID]
		if !ok {
			continue
		}
		p := cam.Project(pos)
		x, y := int(p.X), int(p.Y)
		if x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		grid[y][x] = m.glyphFor(el)
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}
	return b.String()
}

// glyphFor picks the canvas character and style for one node: the first
// letter of its type, styled by selection and highlight state.
func (m *inspectModel) glyphFor(el scene.NodeElement) string {
	glyph := "?"
	if t := string(el.Node.Type); t != "" {
		glyph = strings.ToUpper(t[:1])
	}

	switch {
	case el.ID == m.coord.SelectedID():
		return glyphSelected.Render(glyph)
	case m.hl.State(el.ID) == highlight.StateMatched:
		return glyphMatched.Render(glyph)
	case m.hl.State(el.ID) == highlight.StateDimmed:
		return glyphDimmed.Render(glyph)
	default:
		return glyphNormal.Render(glyph)
	}
}
