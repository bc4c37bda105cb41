package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/google/uuid"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/workflow"
)

type collectorState int

const (
	collectorStateCity collectorState = iota
	collectorStateAvailable
	collectorStateAssigned
	collectorStateValidate
	collectorStateReject
)

// CollectorModel drives the collector's side of the lifecycle: browse open
// pickups by city, claim, then start, validate or reject claimed ones.
type CollectorModel struct {
	CommonModel
	flow  *workflow.Workflow
	actor identity.Actor

	state   collectorState
	city    string
	table   table.Model
	pickups []*collection.Request
	form    *huh.Form
	target  uuid.UUID

	loading bool
	err     error
	status  string
}

func NewCollectorModel(flow *workflow.Workflow, actor identity.Actor) CollectorModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Slot", Width: 13},
		{Title: "Status", Width: 12},
		{Title: "Weight", Width: 10},
		{Title: "Address", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())

	return CollectorModel{
		flow:  flow,
		actor: actor,
		table: t,
		state: collectorStateCity,
		form:  buildCityForm(),
	}
}

func buildCityForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("city").
				Title("City to search").
				Placeholder("Marrakech").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("enter a city")
					}
					return nil
				}),
		),
	).WithShowHelp(false)
}

func buildWeightForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("weight").
				Title("Measured weight (kg)").
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v <= 0 {
						return fmt.Errorf("enter a positive weight")
					}
					return nil
				}),
		),
	).WithShowHelp(false)
}

func buildReasonForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("reason").
				Title("Rejection reason").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a reason is required")
					}
					return nil
				}),
		),
	).WithShowHelp(false)
}

func (m CollectorModel) Title() string { return "Pickups" }
func (m CollectorModel) ShortHelp() string {
	switch m.state {
	case collectorStateAvailable:
		return "Esc: back | c: claim | a: my pickups | r: refresh"
	case collectorStateAssigned:
		return "Esc: back | s: start | v: validate | x: reject | b: browse | r: refresh"
	default:
		return "Enter: submit | Esc: cancel"
	}
}

func (m CollectorModel) Init() tea.Cmd {
	return m.form.Init()
}

type loadCollectorMsg struct {
	pickups []*collection.Request
	err     error
}

type transitionDoneMsg struct {
	pickup *collection.Request
	err    error
}

func (m CollectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCollectorMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.pickups = msg.pickups
		m.refreshTable()
		return m, nil

	case transitionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		switch msg.pickup.Status {
		case collection.StatusValidated:
			m.status = fmt.Sprintf("Collection validated, %s awarded", FormatPoints(msg.pickup.PointsAwarded))
		default:
			m.status = "Collection is now " + string(msg.pickup.Status)
		}
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case collectorStateCity:
		return m.updateCityForm(msg)
	case collectorStateValidate, collectorStateReject:
		return m.updateActionForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m CollectorModel) updateCityForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.city = strings.TrimSpace(m.form.GetString("city"))
		m.state = collectorStateAvailable
		m.form = nil
		m.loading = true
		return m, m.loadCmd()
	}

	return m, cmd
}

func (m CollectorModel) updateActionForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = collectorStateAssigned
		m.form = nil
		m.table.Focus()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	state, target := m.state, m.target
	m.table.Focus()

	if state == collectorStateValidate {
		weight, _ := strconv.ParseFloat(strings.TrimSpace(m.form.GetString("weight")), 64)
		m.state = collectorStateAssigned
		m.form = nil
		return m, m.validateCmd(target, weight)
	}

	reason := strings.TrimSpace(m.form.GetString("reason"))
	m.state = collectorStateAssigned
	m.form = nil
	return m, m.rejectCmd(target, reason)
}

func (m CollectorModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			if m.state == collectorStateAvailable {
				m.state = collectorStateAssigned
				m.loading = true
				return m, m.loadCmd()
			}
		case "b":
			if m.state == collectorStateAssigned {
				m.state = collectorStateAvailable
				m.loading = true
				return m, m.loadCmd()
			}
		case "c":
			if m.state == collectorStateAvailable {
				return m, m.claimCmd()
			}
		case "s":
			if m.state == collectorStateAssigned {
				return m, m.startCmd()
			}
		case "v":
			if m.state == collectorStateAssigned {
				return m.enterActionForm(collectorStateValidate, buildWeightForm())
			}
		case "x":
			if m.state == collectorStateAssigned {
				return m.enterActionForm(collectorStateReject, buildReasonForm())
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m CollectorModel) enterActionForm(state collectorState, form *huh.Form) (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.pickups) {
		return m, nil
	}

	m.target = m.pickups[idx].ID
	m.state = state
	m.form = form
	m.table.Blur()
	return m, m.form.Init()
}

func (m CollectorModel) View() string {
	if m.state == collectorStateCity {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading pickups...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := "My pickups"
	if m.state == collectorStateAvailable {
		header = "Available in " + activeStyle(m.city)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *CollectorModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.pickups))
	for _, p := range m.pickups {
		rows = append(rows, table.Row{
			FormatDate(p.Date),
			p.TimeSlot,
			string(p.Status),
			FormatWeight(p.TotalWeight),
			p.Address,
		})
	}
	m.table.SetRows(rows)
}

func (m CollectorModel) loadCmd() tea.Cmd {
	assigned := m.state == collectorStateAssigned ||
		m.state == collectorStateValidate || m.state == collectorStateReject
	city := m.city

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if assigned {
			pickups, err := m.flow.ListAssigned(ctx, m.actor)
			return loadCollectorMsg{pickups: pickups, err: err}
		}

		pickups, err := m.flow.ListAvailable(ctx, m.actor, city)
		return loadCollectorMsg{pickups: pickups, err: err}
	}
}

func (m CollectorModel) claimCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.pickups) {
		return nil
	}

	id := m.pickups[idx].ID

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		p, err := m.flow.Claim(ctx, m.actor, id)
		return transitionDoneMsg{pickup: p, err: err}
	}
}

func (m CollectorModel) startCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.pickups) {
		return nil
	}

	id := m.pickups[idx].ID

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		p, err := m.flow.Start(ctx, m.actor, id)
		return transitionDoneMsg{pickup: p, err: err}
	}
}

func (m CollectorModel) validateCmd(id uuid.UUID, weight float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		p, err := m.flow.Validate(ctx, m.actor, id, weight)
		return transitionDoneMsg{pickup: p, err: err}
	}
}

func (m CollectorModel) rejectCmd(id uuid.UUID, reason string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		p, err := m.flow.Reject(ctx, m.actor, id, reason)
		return transitionDoneMsg{pickup: p, err: err}
	}
}
