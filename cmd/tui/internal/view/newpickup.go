package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/workflow"
)

type NewPickupModel struct {
	CommonModel
	flow  *workflow.Workflow
	actor identity.Actor

	form *huh.Form

	created *collection.Request
	err     error
}

func NewNewPickupModel(flow *workflow.Workflow, actor identity.Actor) NewPickupModel {
	return NewPickupModel{flow: flow, actor: actor, form: buildPickupForm()}
}

func buildPickupForm() *huh.Form {
	weightField := func(key, title string) *huh.Input {
		return huh.NewInput().
			Key(key).
			Title(title + " (kg)").
			Placeholder("0").
			Validate(validateOptionalWeight)
	}

	return huh.NewForm(
		huh.NewGroup(
			weightField("plastic", "Plastic"),
			weightField("glass", "Glass"),
			weightField("paper", "Paper"),
			weightField("metal", "Metal"),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("address").
				Title("Pickup address").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("address is required")
					}
					return nil
				}),
			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("2026-09-15").
				Validate(func(s string) error {
					_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Key("slot").
				Title("Time slot").
				Placeholder("09:00-11:00"),
			huh.NewInput().
				Key("notes").
				Title("Notes"),
		),
	).WithShowHelp(false)
}

func validateOptionalWeight(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a weight in kg")
	}

	return nil
}

func (m NewPickupModel) Title() string     { return "Request a Pickup" }
func (m NewPickupModel) ShortHelp() string { return "Navigate form | Esc: back" }

func (m NewPickupModel) Init() tea.Cmd {
	return m.form.Init()
}

type pickupCreatedMsg struct {
	created *collection.Request
	err     error
}

func (m NewPickupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pickupCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.form = buildPickupForm()
			return m, m.form.Init()
		}
		m.created = msg.created
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc || m.created != nil {
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.createCmd()
	}

	return m, cmd
}

func (m NewPickupModel) createCmd() tea.Cmd {
	entries := make([]material.Entry, 0, 4)
	for key, kind := range map[string]material.Kind{
		"plastic": material.KindPlastic,
		"glass":   material.KindGlass,
		"paper":   material.KindPaper,
		"metal":   material.KindMetal,
	} {
		raw := strings.TrimSpace(m.form.GetString(key))
		if raw == "" {
			continue
		}

		kg, err := strconv.ParseFloat(raw, 64)
		if err != nil || kg <= 0 {
			continue
		}

		entries = append(entries, material.Entry{Kind: kind, Kilograms: kg})
	}

	date, _ := time.Parse("2006-01-02", strings.TrimSpace(m.form.GetString("date")))

	params := collection.CreateParams{
		Materials: entries,
		Address:   strings.TrimSpace(m.form.GetString("address")),
		Date:      date,
		TimeSlot:  strings.TrimSpace(m.form.GetString("slot")),
		Notes:     strings.TrimSpace(m.form.GetString("notes")),
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		created, err := m.flow.CreateRequest(ctx, m.actor, params)
		return pickupCreatedMsg{created: created, err: err}
	}
}

func (m NewPickupModel) View() string {
	if m.created != nil {
		body := fmt.Sprintf(
			"Pickup requested!\n\nDate: %s\nSlot: %s\nDeclared weight: %s\n\nPress any key to go back.",
			FormatDate(m.created.Date),
			m.created.TimeSlot,
			FormatWeight(m.created.TotalWeight),
		)
		return lipgloss.NewStyle().Padding(1, 2).Render(body)
	}

	body := m.form.View()
	if m.err != nil {
		body += "\n" + errStyle.Render(m.err.Error())
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}
