package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"salon-admin-cli/model"
	"salon-admin-cli/planner"
	"salon-admin-cli/store"
)

type appState int

const (
	stateLoadingCatalog appState = iota
	stateSelectCategory
	stateSelectServices
	stateSelectDate
	stateLoadingSlots
	stateSelectTime
	stateContact
	stateSubmitting
	stateSubmitted
	stateError
)

// dateWindow is how many days ahead the date picker offers.
const dateWindow = 14

// CustomerSearcher looks up saved customers for the contact step.
type CustomerSearcher interface {
	SearchCustomers(ctx context.Context, token string, search string, page int) (model.CustomerList, error)
}

// Options wires the wizard to a backend. Customers is optional; without it
// ctrl+r on the contact step only cycles locally remembered clients.
type Options struct {
	Gateway   planner.Gateway
	Customers CustomerSearcher
	Planner   planner.Options
	Logger    *zap.Logger
}

type appModel struct {
	gateway     planner.Gateway
	customers   CustomerSearcher
	plannerOpts planner.Options
	logger      *zap.Logger

	planner *planner.Planner
	session *planner.Session

	state     appState
	lastState appState
	err       error
	notice    string

	width  int
	height int

	category       string
	catalogSource  string
	categoryList   list.Model
	serviceList    list.Model
	dateList       list.Model
	timeList       list.Model
	form           contactForm
	recentClients  []store.RecentClient
	recentIndex    int
	matches        []store.RecentClient
	matchIndex     int
	matchTerm      string
	searching      bool
	submittedDraft model.BookingDraft

	spinner spinner.Model

	errorSuggestNextDay bool
}

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
	suggestNextDay bool
}

type catalogMsg struct {
	payload model.CatalogPayload
	source  string
	err     error
}

type slotsMsg struct {
	query planner.SlotQuery
	grid  model.SlotGrid
	err   error
}

type submitMsg struct {
	draft model.BookingDraft
	err   error
}

type recentClientsMsg struct {
	clients []store.RecentClient
}

type customersMsg struct {
	term      string
	customers []model.Customer
	err       error
}

func New(opts Options) tea.Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	plannerOpts := opts.Planner
	if plannerOpts.Logger == nil {
		plannerOpts.Logger = logger
	}
	m := appModel{
		gateway:     opts.Gateway,
		customers:   opts.Customers,
		plannerOpts: plannerOpts,
		logger:      logger,
		state:       stateLoadingCatalog,
	}

	m.categoryList = newList("Select Category")
	m.serviceList = newList("Select Services")
	m.dateList = newList("Select Date")
	m.timeList = newList("Select Time")
	m.form = newContactForm()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCatalogCmd(), loadRecentClientsCmd(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.handleFilterInput(msg) {
			return m, nil
		}
		var handled bool
		m, cmd, handled := m.handleKey(msg)
		if handled {
			return m, cmd
		}
		// fallthrough to component update
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.returnStateSet {
			m.lastState = msg.returnState
		} else {
			m.lastState = recoverStateFrom(m.state)
		}
		m.errorSuggestNextDay = msg.suggestNextDay
		m.state = stateError
		return m, nil

	case catalogMsg:
		catalog := planner.NewCatalog(msg.payload)
		source := msg.source
		if msg.err != nil || catalog.Len() == 0 {
			m.logger.Warn("service catalog unavailable, using fallback", zap.Error(msg.err))
			catalog = planner.FallbackCatalog()
			source = "fallback"
		}
		m.catalogSource = source
		m.planner = planner.New(m.gateway, catalog, m.plannerOpts)
		m.session = m.planner.NewSession()
		m.categoryList.SetItems(buildCategoryItems(catalog, m.session.Selection()))
		m.state = stateSelectCategory
		return m, nil

	case recentClientsMsg:
		m.recentClients = msg.clients
		return m, nil

	case customersMsg:
		return m.applyCustomers(msg)

	case slotsMsg:
		if m.session == nil {
			return m, nil
		}
		if msg.err != nil {
			if !m.session.ApplySlotError(msg.query, msg.err) || m.state != stateLoadingSlots {
				return m, nil
			}
			_ = m.session.Back()
			return m, errWithOptionsCmd(msg.err, stateSelectDate, false)
		}
		if !m.session.ApplySlots(msg.query, msg.grid) {
			return m, nil
		}
		// The user backed out while the fetch was running.
		if m.state != stateLoadingSlots {
			return m, nil
		}
		if msg.grid.IsEmpty() {
			_ = m.session.Back()
			return m, errWithOptionsCmd(
				fmt.Errorf("no free slots on %s", msg.query.Date.Format(time.DateOnly)),
				stateSelectDate,
				true,
			)
		}
		m.timeList.SetItems(buildTimeItems(m.planner, m.session.Grid(), m.session.Duration()))
		m.timeList.Title = fmt.Sprintf("Select Time • %s", msg.query.Date.Format("Mon 02/01"))
		m.timeList.Select(0)
		m.state = stateSelectTime
		return m, nil

	case submitMsg:
		m.session.FinishSubmit(msg.err)
		if msg.err != nil {
			m.notice = submitFailureText(msg.err)
			m.state = stateContact
			return m, m.form.focusCmd()
		}
		m.submittedDraft = msg.draft
		m.notice = ""
		m.state = stateSubmitted
		return m, rememberClientCmd(store.RecentClient{
			Name:  msg.draft.Name,
			Email: msg.draft.Email,
			Phone: msg.draft.Phone,
		})
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectCategory:
		m.categoryList, cmd = m.categoryList.Update(msg)
	case stateSelectServices:
		m.serviceList, cmd = m.serviceList.Update(msg)
	case stateSelectDate:
		m.dateList, cmd = m.dateList.Update(msg)
	case stateSelectTime:
		m.timeList, cmd = m.timeList.Update(msg)
	case stateContact:
		cmd = m.form.update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoadingCatalog, stateLoadingSlots, stateSubmitting:
		return header + "\n\n" + m.loadingView()
	case stateSelectCategory:
		return header + "\n\n" + m.categoryList.View()
	case stateSelectServices:
		return header + "\n\n" + m.serviceList.View()
	case stateSelectDate:
		return header + "\n\n" + m.dateList.View()
	case stateSelectTime:
		return header + "\n\n" + m.timeList.View()
	case stateContact:
		return header + "\n\n" + m.form.view()
	case stateSubmitted:
		return header + "\n\n" + m.submittedView()
	case stateError:
		if m.errorSuggestNextDay {
			return header + "\n\n" + m.errorRecoveryView()
		}
		return header + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()) + "\n\n" + hint("Press enter to retry, esc to go back or ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Salon Booking")
	sub := []string{}
	if m.catalogSource == "fallback" {
		sub = append(sub, "Catalog: offline defaults")
	}
	if m.session != nil && m.state != stateSubmitted {
		selection := m.session.Selection()
		if selection.Len() > 0 {
			sub = append(sub, fmt.Sprintf("Services: %s", selection.Joined()))
		}
		sub = append(sub, fmt.Sprintf("Duration: %d min", m.session.Duration()))
		sub = append(sub, fmt.Sprintf("Total: $%s", m.session.Price().StringFixed(2)))
		if m.session.Step() != planner.StepSelectingServices {
			sub = append(sub, fmt.Sprintf("Date: %s", m.session.Date().Format(time.DateOnly)))
		}
		if slot := m.session.Slot(); slot != "" {
			sub = append(sub, fmt.Sprintf("Time: %s-%s", slot, m.session.EndTime()))
		}
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}
	hints := "ctrl+c quit • esc back • type to filter"
	switch m.state {
	case stateSelectCategory:
		hints = "ctrl+c quit • type to filter • enter open category • tab continue"
	case stateSelectServices:
		hints = "ctrl+c quit • esc categories • type to filter • enter toggle service • tab continue"
	case stateSelectDate:
		hints = "ctrl+c quit • esc back • enter select date"
	case stateSelectTime:
		hints = "ctrl+c quit • esc back • type to filter • enter select time • ctrl+r refresh"
	case stateContact:
		hints = "ctrl+c quit • esc back • tab next field • ctrl+r find customer • ctrl+s submit"
	case stateSubmitted:
		hints = "ctrl+c quit • enter new booking"
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	noticeLine := ""
	if m.notice != "" {
		noticeLine = "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.notice)
	}
	return title + meta + filterLine + noticeLine + "\n" + hint(hints)
}

func (m appModel) errorRecoveryView() string {
	date := time.Time{}
	if m.session != nil {
		date = m.session.Date()
	}
	nextDate := date.AddDate(0, 0, 1)
	headerChip := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("63")).
		Padding(0, 2)
	actionChip := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("63")).
		Width(8).
		Align(lipgloss.Center).
		Padding(0, 1)
	actionText := lipgloss.NewStyle().Bold(true)

	title := headerChip.Render("Fully Booked")
	message := lipgloss.NewStyle().
		Foreground(lipgloss.Color("203")).
		Bold(true).
		Render(fmt.Sprintf("No free slots on %s for %d minutes.", date.Format(time.DateOnly), m.session.Duration()))
	sub := hint("Press ENTER to try the next day, or ESC to pick another date.")

	enterAction := lipgloss.JoinHorizontal(
		lipgloss.Top,
		actionChip.Render("ENTER"),
		"  ",
		actionText.Render(fmt.Sprintf("Try %s", nextDate.Format("Mon 2006-01-02"))),
	)
	footer := hint("ESC back • CTRL+C quit")

	content := strings.Join([]string{
		title,
		"",
		message,
		"",
		sub,
		"",
		enterAction,
		"",
		footer,
	}, "\n")

	panelStyle := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63")).
		MarginTop(1)
	if m.width > 56 {
		cardWidth := m.width - 8
		if cardWidth > 84 {
			cardWidth = 84
		}
		panelStyle = panelStyle.Width(cardWidth)
	}
	panel := panelStyle.Render(content)
	if m.width > 0 {
		panel = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel)
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(panel)
}

func (m appModel) submittedView() string {
	d := m.submittedDraft
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("42")).
		Padding(0, 2).
		Render("Booking Confirmed")
	lines := []string{
		title,
		"",
		fmt.Sprintf("%s <%s> %s", d.Name, d.Email, d.Phone),
		fmt.Sprintf("%s %s-%s (%d min)", d.Date, d.StartTime, d.EndTime, d.Duration),
		d.Services,
		fmt.Sprintf("Total: $%s", d.TotalPrice),
		"",
		hint("Press enter to start a new booking."),
	}
	return lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("42")).
		Render(strings.Join(lines, "\n"))
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "q":
		if m.state != stateContact {
			return m, tea.Quit, true
		}
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		model, cmd := m.goBack()
		return model, cmd, true
	case "tab":
		if m.state == stateSelectCategory || m.state == stateSelectServices {
			return m.continueToDate()
		}
		if m.state == stateContact {
			return m, m.form.next(), true
		}
	case "shift+tab":
		if m.state == stateContact {
			return m, m.form.prev(), true
		}
	case "ctrl+r":
		if m.state == stateSelectTime {
			return m.startSlotFetch()
		}
		if m.state == stateContact {
			return m.lookupCustomer()
		}
	case "ctrl+s":
		if m.state == stateContact {
			return m.submit()
		}
	}

	if msg.Type == tea.KeyEnter {
		switch m.state {
		case stateError:
			if m.errorSuggestNextDay {
				return m.advanceToNextDayFromError()
			}
			if m.lastState == stateSelectDate && m.session != nil {
				return m.enterTimeStep()
			}
			model, cmd := m.goBack()
			return model, cmd, true
		case stateSelectCategory:
			item, ok := m.categoryList.SelectedItem().(categoryItem)
			if !ok {
				return m, nil, true
			}
			m.category = item.name
			m.notice = ""
			m.refreshServiceList()
			m.serviceList.Select(0)
			m.state = stateSelectServices
			return m, nil, true
		case stateSelectServices:
			item, ok := m.serviceList.SelectedItem().(serviceItem)
			if !ok {
				return m, nil, true
			}
			if _, err := m.session.ToggleService(item.entry.Name); err != nil {
				m.notice = validationText(err)
				return m, nil, true
			}
			m.notice = ""
			index := m.serviceList.Index()
			m.refreshServiceList()
			m.serviceList.Select(index)
			return m, nil, true
		case stateSelectDate:
			item, ok := m.dateList.SelectedItem().(dateItem)
			if !ok {
				return m, nil, true
			}
			if err := m.session.SetDate(item.date); err != nil {
				m.notice = validationText(err)
				return m, nil, true
			}
			m.notice = ""
			return m.enterTimeStep()
		case stateSelectTime:
			item, ok := m.timeList.SelectedItem().(timeItem)
			if !ok {
				return m, nil, true
			}
			if err := m.session.SelectTime(item.slot); err != nil {
				m.notice = validationText(err)
				return m, nil, true
			}
			if err := m.session.Continue(); err != nil {
				m.notice = validationText(err)
				return m, nil, true
			}
			m.notice = ""
			m.state = stateContact
			return m, m.form.focusCmd(), true
		case stateContact:
			if m.form.onLastField() {
				return m.submit()
			}
			return m, m.form.next(), true
		case stateSubmitted:
			m.session.Reset()
			m.category = ""
			m.form.reset()
			m.matches = nil
			m.matchTerm = ""
			m.categoryList.SetItems(buildCategoryItems(m.planner.Catalog(), m.session.Selection()))
			m.state = stateSelectCategory
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m appModel) continueToDate() (tea.Model, tea.Cmd, bool) {
	if err := m.session.Continue(); err != nil {
		m.notice = validationText(err)
		return m, nil, true
	}
	m.notice = ""
	m.dateList.SetItems(buildDateItems(m.planner.Today(), dateWindow))
	m.dateList.Select(dateIndex(m.dateList.Items(), m.session.Date()))
	m.state = stateSelectDate
	return m, nil, true
}

// enterTimeStep moves the session onto the time step and fetches slots.
func (m appModel) enterTimeStep() (tea.Model, tea.Cmd, bool) {
	if m.session.Step() == planner.StepSelectingDate {
		if err := m.session.Continue(); err != nil {
			m.notice = validationText(err)
			m.state = stateSelectDate
			return m, nil, true
		}
	}
	return m.startSlotFetch()
}

func (m appModel) startSlotFetch() (tea.Model, tea.Cmd, bool) {
	query := m.session.SlotQuery()
	m.state = stateLoadingSlots
	return m, tea.Batch(m.fetchSlotsCmd(query), m.spinner.Tick), true
}

func (m appModel) advanceToNextDayFromError() (tea.Model, tea.Cmd, bool) {
	next := m.session.Date().AddDate(0, 0, 1)
	if err := m.session.SetDate(next); err != nil {
		m.notice = validationText(err)
		m.state = stateSelectDate
		m.errorSuggestNextDay = false
		return m, nil, true
	}
	m.errorSuggestNextDay = false
	return m.enterTimeStep()
}

func (m appModel) submit() (tea.Model, tea.Cmd, bool) {
	if _, err := m.session.Confirm(m.form.contact()); err != nil {
		m.notice = validationText(err)
		return m, nil, true
	}
	draft, err := m.session.BeginSubmit()
	if err != nil {
		m.notice = validationText(err)
		return m, nil, true
	}
	m.notice = ""
	m.state = stateSubmitting
	return m, tea.Batch(m.submitCmd(draft), m.spinner.Tick), true
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateSelectServices:
		m.categoryList.SetItems(buildCategoryItems(m.planner.Catalog(), m.session.Selection()))
		m.state = stateSelectCategory
	case stateSelectDate:
		_ = m.session.Back()
		m.state = stateSelectServices
		if m.category == "" {
			m.state = stateSelectCategory
		}
	case stateSelectTime, stateLoadingSlots:
		_ = m.session.Back()
		m.state = stateSelectDate
	case stateContact:
		if err := m.session.Back(); err != nil {
			return m, nil
		}
		m.state = stateSelectTime
	case stateError:
		m.state = m.lastState
		m.errorSuggestNextDay = false
	default:
		return m, nil
	}
	m.notice = ""
	return m, nil
}

// lookupCustomer searches the backend for the typed name, email or phone.
// Repeating ctrl+r on an unchanged form cycles through the last matches.
func (m appModel) lookupCustomer() (tea.Model, tea.Cmd, bool) {
	if m.customers == nil {
		m.fillRecentClient()
		return m, nil, true
	}
	if m.searching {
		return m, nil, true
	}
	term := m.form.searchTerm()
	if len(m.matches) > 0 && term == m.matchTerm {
		m.fillMatch()
		return m, nil, true
	}
	m.searching = true
	m.notice = "Searching customers..."
	return m, m.searchCustomersCmd(term), true
}

func (m appModel) applyCustomers(msg customersMsg) (tea.Model, tea.Cmd) {
	m.searching = false
	if m.state != stateContact {
		return m, nil
	}
	if msg.err != nil {
		m.logger.Warn("customer search failed", zap.String("term", msg.term), zap.Error(msg.err))
		m.matches = nil
		m.fillRecentClient()
		if m.notice == "" {
			m.notice = "Customer search failed; using recent clients."
		}
		return m, nil
	}
	matches := make([]store.RecentClient, 0, len(msg.customers))
	for _, c := range msg.customers {
		matches = append(matches, store.RecentClient{Name: c.Name, Email: c.Email, Phone: c.Phone})
	}
	if len(matches) == 0 {
		m.matches = nil
		m.notice = fmt.Sprintf("No customers match %q.", msg.term)
		return m, nil
	}
	m.matches = matches
	m.matchIndex = 0
	m.fillMatch()
	return m, nil
}

func (m *appModel) fillMatch() {
	client := m.matches[m.matchIndex%len(m.matches)]
	m.matchIndex++
	m.form.fill(client)
	m.matchTerm = m.form.searchTerm()
	m.notice = fmt.Sprintf("Customer %d of %d • ctrl+r for next", (m.matchIndex-1)%len(m.matches)+1, len(m.matches))
}

func (m *appModel) fillRecentClient() {
	if len(m.recentClients) == 0 {
		m.notice = "No recent clients yet."
		return
	}
	client := m.recentClients[m.recentIndex%len(m.recentClients)]
	m.recentIndex++
	m.form.fill(client)
	m.notice = ""
}

func (m *appModel) refreshServiceList() {
	m.serviceList.Title = fmt.Sprintf("Select Services • %s", m.category)
	m.serviceList.SetItems(buildServiceItems(m.planner.Catalog().Services(m.category), m.session.Selection()))
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateSelectCategory:
		return &m.categoryList
	case stateSelectServices:
		return &m.serviceList
	case stateSelectTime:
		return &m.timeList
	default:
		return nil
	}
}

func (m appModel) isLoadingState() bool {
	return m.state == stateLoadingCatalog ||
		m.state == stateLoadingSlots ||
		m.state == stateSubmitting
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateLoadingCatalog:
		title = "Loading services"
	case stateLoadingSlots:
		title = "Checking availability"
	case stateSubmitting:
		title = "Saving booking"
	}

	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Talking to the salon..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 7
	if h < 6 {
		h = 6
	}
	m.categoryList.SetSize(m.width, h)
	m.serviceList.SetSize(m.width, h)
	m.dateList.SetSize(m.width, h)
	m.timeList.SetSize(m.width, h)
	m.form.setWidth(m.width)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errWithOptionsCmd(err error, returnState appState, suggestNextDay bool) tea.Cmd {
	return func() tea.Msg {
		return errMsg{
			err:            err,
			returnState:    returnState,
			returnStateSet: true,
			suggestNextDay: suggestNextDay,
		}
	}
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateLoadingCatalog:
		return stateSelectCategory
	case stateLoadingSlots:
		return stateSelectDate
	case stateSubmitting:
		return stateContact
	case stateError:
		return stateSelectCategory
	default:
		return state
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

// validationText turns planner errors into a line for the notice bar.
func validationText(err error) string {
	var vErr *planner.ValidationError
	if !errors.As(err, &vErr) {
		if errors.Is(err, planner.ErrSubmitInFlight) {
			return "A booking is already being saved."
		}
		return err.Error()
	}
	switch vErr.Reason {
	case planner.ReasonMissingContact:
		return "Name, email and phone are required."
	case planner.ReasonNoServices:
		return "Select at least one service."
	case planner.ReasonNoTime:
		return "Select a time."
	case planner.ReasonNoDate:
		return "Select a date."
	case planner.ReasonPastDate:
		return "That date is in the past."
	case planner.ReasonUnknownService:
		return "That service is no longer offered."
	case planner.ReasonSlotUnavailable:
		return "That time is no longer available."
	case planner.ReasonSlotsNotLoaded:
		return "Availability has not loaded yet."
	case planner.ReasonInvalidTime:
		return "The selected time could not be read."
	default:
		return vErr.Error()
	}
}

func submitFailureText(err error) string {
	var rejection *planner.BackendRejection
	if errors.As(err, &rejection) {
		return rejection.Message
	}
	return fmt.Sprintf("Could not save the booking (%v). Press ctrl+s to retry.", err)
}

func (m appModel) fetchCatalogCmd() tea.Cmd {
	return func() tea.Msg {
		if cached, fresh, err := store.LoadCatalogCache(); err == nil && fresh && len(cached.Categories) > 0 {
			return catalogMsg{payload: cached, source: "cache"}
		}
		ctx := context.Background()
		payload, err := m.gateway.GetServiceCatalog(ctx)
		if err == nil && len(payload.Categories) > 0 {
			if saveErr := store.SaveCatalogCache(payload); saveErr != nil {
				m.logger.Warn("catalog cache write failed", zap.Error(saveErr))
			}
			return catalogMsg{payload: payload, source: "live"}
		}
		// A stale cache beats the built in fallback.
		if cached, _, cacheErr := store.LoadCatalogCache(); cacheErr == nil && len(cached.Categories) > 0 {
			return catalogMsg{payload: cached, source: "cache"}
		}
		if err == nil {
			err = errors.New("service catalog is empty")
		}
		return catalogMsg{err: err}
	}
}

func (m appModel) fetchSlotsCmd(query planner.SlotQuery) tea.Cmd {
	p := m.planner
	return func() tea.Msg {
		ctx := context.Background()
		grid, err := p.FetchSlots(ctx, query.Date, query.Minutes)
		return slotsMsg{query: query, grid: grid, err: err}
	}
}

func (m appModel) submitCmd(draft model.BookingDraft) tea.Cmd {
	p := m.planner
	return func() tea.Msg {
		ctx := context.Background()
		_, err := p.Submit(ctx, draft)
		return submitMsg{draft: draft, err: err}
	}
}

func (m appModel) searchCustomersCmd(term string) tea.Cmd {
	searcher := m.customers
	token := m.plannerOpts.Token
	return func() tea.Msg {
		list, err := searcher.SearchCustomers(context.Background(), token, term, 1)
		return customersMsg{term: term, customers: list.Data, err: err}
	}
}

func loadRecentClientsCmd() tea.Cmd {
	return func() tea.Msg {
		clients, err := store.LoadRecentClients()
		if err != nil {
			return recentClientsMsg{}
		}
		return recentClientsMsg{clients: clients}
	}
}

func rememberClientCmd(client store.RecentClient) tea.Cmd {
	return func() tea.Msg {
		_ = store.RememberClient(client)
		clients, err := store.LoadRecentClients()
		if err != nil {
			return nil
		}
		return recentClientsMsg{clients: clients}
	}
}
