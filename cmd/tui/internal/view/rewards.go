package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/points"
	"github.com/recyclehub/recyclehub/internal/user"
	"github.com/recyclehub/recyclehub/internal/voucher"
)

type RewardsModel struct {
	CommonModel
	points *points.Service
	issuer *voucher.Issuer
	actor  identity.Actor
	me     *user.User

	balance float64
	history []points.Transaction
	table   table.Model

	loading bool
	err     error
	status  string
}

func NewRewardsModel(pts *points.Service, issuer *voucher.Issuer, actor identity.Actor, me *user.User) RewardsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Kind", Width: 12},
		{Title: "Points", Width: 10},
		{Title: "Description", Width: 44},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	return RewardsModel{points: pts, issuer: issuer, actor: actor, me: me, table: t, loading: true}
}

func (m RewardsModel) Title() string { return "Points & Rewards" }
func (m RewardsModel) ShortHelp() string {
	return "Esc: back | 1-9: exchange tier | r: refresh"
}

func (m RewardsModel) Init() tea.Cmd {
	return m.loadCmd()
}

type loadRewardsMsg struct {
	balance float64
	history []points.Transaction
	err     error
}

type voucherIssuedMsg struct {
	voucher *voucher.Voucher
	err     error
}

func (m RewardsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadRewardsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.balance = msg.balance
		m.history = msg.history
		m.refreshTable()
		return m, nil

	case voucherIssuedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Exchange failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf(
			"Voucher %s issued: %.2f MAD, valid until %s",
			msg.voucher.Number, msg.voucher.Value, FormatDate(msg.voucher.ExpiresAt),
		)
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		default:
			if idx, err := strconv.Atoi(key); err == nil && idx >= 1 && idx <= len(m.points.Tiers()) {
				return m, m.exchangeCmd(m.points.Tiers()[idx-1])
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m RewardsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Balance: %s\n\nExchange:", FormatPoints(m.balance))
	for i, tier := range m.points.Tiers() {
		header += fmt.Sprintf("  [%d] %s → %.0f MAD", i+1, FormatPoints(tier.Points), tier.Value)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *RewardsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.history))
	for _, tx := range m.history {
		rows = append(rows, table.Row{
			FormatDate(tx.CreatedAt),
			string(tx.Kind),
			fmt.Sprintf("%+.0f", tx.Points),
			tx.Description,
		})
	}
	m.table.SetRows(rows)
}

func (m RewardsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		balance, err := m.points.Balance(ctx, m.actor.ID)
		if err != nil {
			return loadRewardsMsg{err: err}
		}

		history, err := m.points.History(ctx, m.actor.ID)
		return loadRewardsMsg{balance: balance, history: history, err: err}
	}
}

func (m RewardsModel) exchangeCmd(tier points.Tier) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		v, err := m.issuer.Issue(ctx, m.actor.ID, tier.Points, m.me.FullName())
		return voucherIssuedMsg{voucher: v, err: err}
	}
}
