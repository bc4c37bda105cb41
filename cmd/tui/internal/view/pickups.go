package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/workflow"
)

type PickupsModel struct {
	CommonModel
	flow  *workflow.Workflow
	actor identity.Actor

	table   table.Model
	pickups []*collection.Request

	loading bool
	err     error
	status  string
}

func NewPickupsModel(flow *workflow.Workflow, actor identity.Actor) PickupsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Slot", Width: 13},
		{Title: "Status", Width: 12},
		{Title: "Weight", Width: 10},
		{Title: "Points", Width: 8},
		{Title: "Address", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())

	return PickupsModel{flow: flow, actor: actor, table: t, loading: true}
}

func (m PickupsModel) Title() string { return "My Pickups" }
func (m PickupsModel) ShortHelp() string {
	return "Esc: back | d: delete pending | r: refresh"
}

func (m PickupsModel) Init() tea.Cmd {
	return m.loadCmd()
}

type loadPickupsMsg struct {
	pickups []*collection.Request
	err     error
}

type pickupDeletedMsg struct {
	err error
}

func (m PickupsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPickupsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.pickups = msg.pickups
		m.refreshTable()
		return m, nil

	case pickupDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Cannot delete: %v", msg.err)
			return m, nil
		}
		m.status = "Pickup deleted"
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "d":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m PickupsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading pickups...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *PickupsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.pickups))
	for _, p := range m.pickups {
		weight := FormatWeight(p.TotalWeight)
		if p.ActualWeight != nil {
			weight = FormatWeight(*p.ActualWeight)
		}

		points := ""
		if p.Status == collection.StatusValidated {
			points = FormatPoints(p.PointsAwarded)
		}

		rows = append(rows, table.Row{
			FormatDate(p.Date),
			p.TimeSlot,
			string(p.Status),
			weight,
			points,
			p.Address,
		})
	}
	m.table.SetRows(rows)
}

func (m PickupsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		pickups, err := m.flow.ListOwn(ctx, m.actor)
		return loadPickupsMsg{pickups: pickups, err: err}
	}
}

func (m PickupsModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.pickups) {
		return nil
	}

	id := m.pickups[idx].ID

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return pickupDeletedMsg{err: m.flow.DeleteRequest(ctx, m.actor, id)}
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}
