package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/recyclehub/recyclehub/cmd/tui/internal/view"
	"github.com/recyclehub/recyclehub/internal/collection"
	collectionStore "github.com/recyclehub/recyclehub/internal/collection/store"
	"github.com/recyclehub/recyclehub/internal/config"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/points"
	pointsStore "github.com/recyclehub/recyclehub/internal/points/store"
	"github.com/recyclehub/recyclehub/internal/storage"
	"github.com/recyclehub/recyclehub/internal/user"
	userStore "github.com/recyclehub/recyclehub/internal/user/store"
	"github.com/recyclehub/recyclehub/internal/voucher"
	voucherStore "github.com/recyclehub/recyclehub/internal/voucher/store"
	"github.com/recyclehub/recyclehub/internal/workflow"
)

type model struct {
	userService   *user.Service
	pointsService *points.Service
	voucherIssuer *voucher.Issuer
	flow          *workflow.Workflow

	actor identity.Actor
	me    *user.User

	currentView View

	loginView     view.LoginModel
	pickupsView   view.PickupsModel
	newPickupView view.NewPickupModel
	rewardsView   view.RewardsModel
	collectorView view.CollectorModel
}

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewPickups
	ViewNewPickup
	ViewRewards
	ViewCollector
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	pointsSvc := points.NewService(pointsStore.New(store), cfg.Points.PerKg, cfg.Points.Tiers)
	collectionSvc := collection.NewService(collectionStore.New(store), pointsSvc)
	userSvc := user.NewService(userStore.New(store))
	issuer := voucher.NewIssuer(pointsSvc, voucherStore.New(store), cfg.Voucher.Validity)

	return model{
		userService:   userSvc,
		pointsService: pointsSvc,
		voucherIssuer: issuer,
		flow:          workflow.New(collectionSvc),
		currentView:   ViewLogin,
		loginView:     view.NewLoginModel(userSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case view.LoggedInMsg:
		m.me = msg.User
		m.actor = identity.Actor{ID: msg.User.ID, Role: msg.User.Role}
		m.currentView = ViewMenu

		return m, nil

	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil

	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewPickups:
		var newModel tea.Model
		newModel, cmd = m.pickupsView.Update(msg)
		m.pickupsView = newModel.(view.PickupsModel)
	case ViewNewPickup:
		var newModel tea.Model
		newModel, cmd = m.newPickupView.Update(msg)
		m.newPickupView = newModel.(view.NewPickupModel)
	case ViewRewards:
		var newModel tea.Model
		newModel, cmd = m.rewardsView.Update(msg)
		m.rewardsView = newModel.(view.RewardsModel)
	case ViewCollector:
		var newModel tea.Model
		newModel, cmd = m.collectorView.Update(msg)
		m.collectorView = newModel.(view.CollectorModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}

	if m.actor.Role == user.RoleRequester {
		switch msg.String() {
		case "1":
			m.currentView = ViewPickups
			m.pickupsView = view.NewPickupsModel(m.flow, m.actor)

			return m, m.pickupsView.Init()
		case "2":
			m.currentView = ViewNewPickup
			m.newPickupView = view.NewNewPickupModel(m.flow, m.actor)

			return m, m.newPickupView.Init()
		case "3":
			m.currentView = ViewRewards
			m.rewardsView = view.NewRewardsModel(m.pointsService, m.voucherIssuer, m.actor, m.me)

			return m, m.rewardsView.Init()
		}

		return m, nil
	}

	if msg.String() == "1" {
		m.currentView = ViewCollector
		m.collectorView = view.NewCollectorModel(m.flow, m.actor)

		return m, m.collectorView.Init()
	}

	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return m.menuView()
	case ViewPickups:
		return m.pickupsView.View()
	case ViewNewPickup:
		return m.newPickupView.View()
	case ViewRewards:
		return m.rewardsView.View()
	case ViewCollector:
		return m.collectorView.View()
	}

	return "Unknown View"
}

func (m model) menuView() string {
	header := "RecycleHub | " + m.me.FullName() + " (" + string(m.actor.Role) + ")\n\n"

	body := "1. Available Pickups\n\nq. Quit"
	if m.actor.Role == user.RoleRequester {
		body = "1. My Pickups\n" +
			"2. Request a Pickup\n" +
			"3. Points & Rewards\n\n" +
			"q. Quit"
	}

	return lipgloss.NewStyle().Padding(2).Render(header + body)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
