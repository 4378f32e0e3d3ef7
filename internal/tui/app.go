// Package tui is a small terminal browser over the guide and the recording
// area: channel list, per-day schedule, broadcast detail, with a one-key
// record action.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvheim/bongtv/internal/bong"
	"github.com/tvheim/bongtv/internal/domain"
	"github.com/tvheim/bongtv/internal/service"
)

// ApplicationState represents the current view
type ApplicationState int

const (
	StateChannels ApplicationState = iota
	StateSchedule
	StateDetail
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// channelItem adapts a channel to the bubbles list
type channelItem struct {
	channel domain.Channel
}

func (i channelItem) Title() string { return i.channel.Name }
func (i channelItem) Description() string {
	var tags []string
	if i.channel.HD {
		tags = append(tags, "HD")
	}
	if !i.channel.Recordable {
		tags = append(tags, "not recordable")
	}
	if len(tags) == 0 {
		return " "
	}
	return strings.Join(tags, ", ")
}
func (i channelItem) FilterValue() string { return i.channel.Name }

// broadcastItem adapts a broadcast to the bubbles list
type broadcastItem struct {
	broadcast *domain.Broadcast
}

func (i broadcastItem) Title() string {
	return fmt.Sprintf("%s  %s", i.broadcast.StartsAt.Format("15:04"), i.broadcast.Title)
}
func (i broadcastItem) Description() string {
	desc := fmt.Sprintf("%d min", i.broadcast.Duration)
	if i.broadcast.Subtitle != "" {
		desc += "  " + i.broadcast.Subtitle
	}
	return desc
}
func (i broadcastItem) FilterValue() string { return i.broadcast.Title }

// Model is the main Bubble Tea model for the browser
type Model struct {
	State ApplicationState
	Keys  KeyMap

	Guide *service.Guide
	Space *service.Space

	channelList  list.Model
	scheduleList list.Model
	spin         spinner.Model

	channel   *domain.Channel
	dayOffset int
	selected  *domain.Broadcast
	details   *domain.BroadcastDetails

	width   int
	height  int
	loading bool
	status  string
	err     error

	logger *slog.Logger
}

// NewModel creates the browser over the given facades
func NewModel(guide *service.Guide, space *service.Space, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	channelList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	channelList.Title = "Channels"
	channelList.SetShowHelp(true)

	scheduleList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	scheduleList.SetShowHelp(true)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		State:        StateChannels,
		Keys:         DefaultKeyMap(),
		Guide:        guide,
		Space:        space,
		channelList:  channelList,
		scheduleList: scheduleList,
		spin:         spin,
		loading:      true,
		logger:       logger,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadChannels())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		frame := 2
		m.channelList.SetSize(msg.Width, msg.Height-frame)
		m.scheduleList.SetSize(msg.Width, msg.Height-frame)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ErrMsg:
		m.loading = false
		m.err = msg
		m.logger.Error("browser error", "context", msg.Context, "error", msg.Err)
		return m, nil

	case ChannelsLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.Channels))
		for i, c := range msg.Channels {
			items[i] = channelItem{channel: c}
		}
		m.channelList.SetItems(items)
		return m, nil

	case ScheduleLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.Broadcasts))
		for i, b := range msg.Broadcasts {
			items[i] = broadcastItem{broadcast: b}
		}
		m.scheduleList.SetItems(items)
		m.scheduleList.Title = m.scheduleTitle()
		return m, nil

	case DetailsLoadedMsg:
		m.loading = false
		m.selected = msg.Broadcast
		m.details = msg.Details
		m.State = StateDetail
		return m, nil

	case RecordingScheduledMsg:
		m.loading = false
		m.status = fmt.Sprintf("recording scheduled: %s", msg.Recording.Title)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveList(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// while the list filter is open, every key belongs to it
	if m.State == StateChannels && m.channelList.FilterState() == list.Filtering {
		return m.updateActiveList(msg)
	}
	if m.State == StateSchedule && m.scheduleList.FilterState() == list.Filtering {
		return m.updateActiveList(msg)
	}

	m.status = ""
	m.err = nil

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Back):
		switch m.State {
		case StateDetail:
			m.State = StateSchedule
		case StateSchedule:
			m.State = StateChannels
			m.channel = nil
			m.dayOffset = 0
		}
		return m, nil

	case key.Matches(msg, m.Keys.Enter):
		switch m.State {
		case StateChannels:
			item, ok := m.channelList.SelectedItem().(channelItem)
			if !ok {
				return m, nil
			}
			c := item.channel
			m.channel = &c
			m.dayOffset = 0
			m.State = StateSchedule
			m.loading = true
			return m, tea.Batch(m.spin.Tick, m.loadSchedule())
		case StateSchedule:
			item, ok := m.scheduleList.SelectedItem().(broadcastItem)
			if !ok {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spin.Tick, m.loadDetails(item.broadcast))
		}

	case key.Matches(msg, m.Keys.Record):
		b := m.recordTarget()
		if b == nil {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spin.Tick, m.record(b.ID))

	case key.Matches(msg, m.Keys.Refresh):
		m.loading = true
		switch m.State {
		case StateChannels:
			return m, tea.Batch(m.spin.Tick, m.loadChannels())
		case StateSchedule:
			return m, tea.Batch(m.spin.Tick, m.loadSchedule())
		}
		m.loading = false
		return m, nil

	case key.Matches(msg, m.Keys.NextDay):
		if m.State == StateSchedule {
			m.dayOffset++
			m.loading = true
			return m, tea.Batch(m.spin.Tick, m.loadSchedule())
		}

	case key.Matches(msg, m.Keys.PrevDay):
		if m.State == StateSchedule && m.dayOffset > 0 {
			m.dayOffset--
			m.loading = true
			return m, tea.Batch(m.spin.Tick, m.loadSchedule())
		}
	}

	return m.updateActiveList(msg)
}

func (m Model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.State {
	case StateChannels:
		m.channelList, cmd = m.channelList.Update(msg)
	case StateSchedule:
		m.scheduleList, cmd = m.scheduleList.Update(msg)
	}
	return m, cmd
}

// recordTarget returns the broadcast a record keypress applies to
func (m Model) recordTarget() *domain.Broadcast {
	switch m.State {
	case StateDetail:
		return m.selected
	case StateSchedule:
		if item, ok := m.scheduleList.SelectedItem().(broadcastItem); ok {
			return item.broadcast
		}
	}
	return nil
}

func (m Model) scheduleTitle() string {
	if m.channel == nil {
		return "Schedule"
	}
	day := time.Now().AddDate(0, 0, m.dayOffset).Format("Mon 02.01.")
	return fmt.Sprintf("%s · %s", m.channel.Name, day)
}

// View implements tea.Model
func (m Model) View() string {
	var body string
	switch m.State {
	case StateChannels:
		body = m.channelList.View()
	case StateSchedule:
		body = m.scheduleList.View()
	case StateDetail:
		body = m.detailView()
	}

	footer := ""
	switch {
	case m.err != nil:
		footer = errorStyle.Render(m.err.Error())
	case m.loading:
		footer = statusStyle.Render(m.spin.View() + " loading...")
	case m.status != "":
		footer = statusStyle.Render(m.status)
	}
	return body + "\n" + footer
}

func (m Model) detailView() string {
	b := m.selected
	if b == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(b.Title))
	sb.WriteString("\n")
	if b.Subtitle != "" {
		sb.WriteString(b.Subtitle + "\n")
	}
	sb.WriteString(fmt.Sprintf("%s  %s – %s (%d min)\n",
		b.StartsAt.Format("Mon 02.01."), b.StartsAt.Format("15:04"), b.EndsAt.Format("15:04"), b.Duration))
	sb.WriteString(b.ChannelName)
	if b.ProductionYear > 0 {
		sb.WriteString(fmt.Sprintf("  %s %d", b.Country, b.ProductionYear))
	}
	sb.WriteString("\n")
	if b.IsTVShow() {
		sb.WriteString(fmt.Sprintf("Season %d, episode %d\n", b.Season, b.Episode))
	}
	if len(b.Categories) > 0 {
		sb.WriteString(labelStyle.Render("Categories: ") + strings.Join(b.Categories, ", ") + "\n")
	}

	if d := m.details; d != nil {
		sb.WriteString("\n")
		if d.Rating > 0 {
			sb.WriteString(fmt.Sprintf("Rating %.1f (%d votes)\n", d.Rating, d.Votes))
		}
		if d.Plot != "" {
			sb.WriteString("\n" + d.Plot + "\n")
		}
		if len(d.Directors) > 0 {
			sb.WriteString(labelStyle.Render("Directed by: ") + strings.Join(d.Directors, ", ") + "\n")
		}
		if len(d.Actors) > 0 {
			names := make([]string, len(d.Actors))
			for i, a := range d.Actors {
				names[i] = a.Name
			}
			sb.WriteString(labelStyle.Render("Cast: ") + strings.Join(names, ", ") + "\n")
		}
	}

	sb.WriteString("\n" + statusStyle.Render("r record · esc back · q quit"))
	return sb.String()
}

func (m Model) loadChannels() tea.Cmd {
	return func() tea.Msg {
		channels, err := m.Guide.Channels(context.Background())
		if err != nil {
			return ErrMsg{Err: err, Context: "loading channels"}
		}
		return ChannelsLoadedMsg{Channels: channels}
	}
}

func (m Model) loadSchedule() tea.Cmd {
	channelID := m.channel.ID
	offset := m.dayOffset
	return func() tea.Msg {
		broadcasts, err := m.Guide.BroadcastsPerDay(context.Background(), channelID, offset)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading schedule"}
		}
		return ScheduleLoadedMsg{ChannelID: channelID, DayOffset: offset, Broadcasts: broadcasts}
	}
}

func (m Model) loadDetails(b *domain.Broadcast) tea.Cmd {
	return func() tea.Msg {
		details, err := b.Details(context.Background())
		if err != nil && !errors.Is(err, domain.ErrDetailsUnavailable) {
			return ErrMsg{Err: err, Context: "loading details"}
		}
		return DetailsLoadedMsg{Broadcast: b, Details: details}
	}
}

func (m Model) record(broadcastID int) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.Space.CreateRecording(context.Background(), broadcastID)
		if err != nil {
			if errors.Is(err, bong.ErrCannotRecord) {
				return ErrMsg{Err: err, Context: "broadcast cannot be recorded"}
			}
			return ErrMsg{Err: err, Context: "scheduling recording"}
		}
		return RecordingScheduledMsg{Recording: rec}
	}
}

// Run starts the browser and blocks until it exits
func Run(guide *service.Guide, space *service.Space, logger *slog.Logger) error {
	p := tea.NewProgram(NewModel(guide, space, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
