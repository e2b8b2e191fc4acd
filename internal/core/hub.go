package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroomai/internal/llm"
)

// DefaultTimeFormat renders message times as hour:minute:second.
const DefaultTimeFormat = "3:04:05 PM"

// Hub coordinates connections, rooms and the AI responder.
type Hub interface {
	// Run processes commands until ctx is cancelled.
	Run(ctx context.Context)
	// RegisterClient attaches a new connection.
	RegisterClient(c *Client)
	// UnregisterClient detaches a connection, announcing the departure if it had joined.
	UnregisterClient(c *Client)
	// Rooms lists active rooms.
	Rooms(ctx context.Context) ([]RoomInfo, error)
	// Room describes one active room.
	Room(ctx context.Context, name string) (RoomDetail, bool, error)
}

// RoomInfo summarises an active room.
type RoomInfo struct {
	Name    string
	Members int
	AI      AISettings
}

// RoomDetail describes an active room with its members.
type RoomDetail struct {
	RoomInfo
	Users     []User
	LogLength int
}

// Options configures a hub. Zero values fall back to in-memory defaults.
type Options struct {
	Log              MessageLog
	Completer        Completer
	Audit            AuditSink
	Logger           *zerolog.Logger
	WelcomeMessage   string
	TimeFormat       string
	ForgetEmptyRooms bool
	AITimeout        time.Duration
	Now              func() time.Time
}

type inbound struct {
	client *Client
	cmd    *Command
}

type hub struct {
	clients   map[string]*Client
	registry  *Registry
	rooms     *roomTable
	settings  *SettingsStore
	msgLog    MessageLog
	audit     AuditSink
	completer Completer

	inFlight map[string]bool
	pending  map[string]int
	clearGen map[string]uint64

	register   chan *Client
	unregister chan *Client
	inbox      chan inbound
	aiResults  chan aiResult
	queries    chan func()
	done       chan struct{}
	wg         sync.WaitGroup

	log         *zerolog.Logger
	now         func() time.Time
	timeFormat  string
	welcome     string
	forgetEmpty bool
	aiTimeout   time.Duration
}

// NewHub creates a new chat hub instance.
func NewHub(opts Options) Hub {
	h := &hub{
		clients:     make(map[string]*Client),
		registry:    NewRegistry(),
		rooms:       newRoomTable(),
		settings:    NewSettingsStore(),
		msgLog:      opts.Log,
		audit:       opts.Audit,
		completer:   opts.Completer,
		inFlight:    make(map[string]bool),
		pending:     make(map[string]int),
		clearGen:    make(map[string]uint64),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		inbox:       make(chan inbound),
		aiResults:   make(chan aiResult),
		queries:     make(chan func()),
		done:        make(chan struct{}),
		log:         opts.Logger,
		now:         opts.Now,
		timeFormat:  opts.TimeFormat,
		welcome:     opts.WelcomeMessage,
		forgetEmpty: opts.ForgetEmptyRooms,
		aiTimeout:   opts.AITimeout,
	}
	if h.msgLog == nil {
		h.msgLog = NewMemoryLog()
	}
	if h.audit == nil {
		h.audit = NopAudit()
	}
	if h.completer == nil {
		h.completer = noCompleter{}
	}
	if h.log == nil {
		nop := zerolog.Nop()
		h.log = &nop
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.timeFormat == "" {
		h.timeFormat = DefaultTimeFormat
	}
	return h
}

// Run processes registrations, commands and AI results on a single goroutine.
func (h *hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.handleRegister(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(ctx, c)
		case in := <-h.inbox:
			h.handleCommand(ctx, in.client, in.cmd)
		case res := <-h.aiResults:
			h.handleAIResult(ctx, res)
		case q := <-h.queries:
			q()
		}
	}
}

func (h *hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Events)
	}
}

func (h *hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *hub) Rooms(ctx context.Context) ([]RoomInfo, error) {
	rooms := make([]RoomInfo, 0)
	err := h.query(ctx, func() {
		for _, name := range h.rooms.names() {
			r, _ := h.rooms.get(name)
			rooms = append(rooms, RoomInfo{Name: name, Members: r.Len(), AI: h.settings.Get(name)})
		}
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (h *hub) Room(ctx context.Context, name string) (RoomDetail, bool, error) {
	var (
		detail RoomDetail
		found  bool
		logErr error
	)
	err := h.query(ctx, func() {
		r, ok := h.rooms.get(name)
		if !ok {
			return
		}
		found = true
		detail = RoomDetail{
			RoomInfo: RoomInfo{Name: name, Members: r.Len(), AI: h.settings.Get(name)},
			Users:    h.registry.UsersInRoom(name),
		}
		detail.LogLength, logErr = h.msgLog.Len(ctx, name)
	})
	if err != nil {
		return RoomDetail{}, false, err
	}
	if logErr != nil {
		return RoomDetail{}, false, fmt.Errorf("room log length: %w", logErr)
	}
	return detail, found, nil
}

// query runs fn on the hub goroutine and waits for it to finish.
func (h *hub) query(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		fn()
		close(finished)
	}

	select {
	case h.queries <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
}

// pump forwards a client's commands into the hub inbox, preserving their order.
func (h *hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd == nil {
				continue
			}
			select {
			case h.inbox <- inbound{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *hub) shutdown() {
	for id, c := range h.clients {
		close(c.done)
		close(c.Events)
		delete(h.clients, id)
	}
	h.wg.Wait()
	h.log.Info().Msg("hub stopped")
}

func (h *hub) handleRegister(ctx context.Context, c *Client) {
	if _, exists := h.clients[c.ID]; exists {
		h.log.Warn().Str("client_id", c.ID).Msg("duplicate client registration ignored")
		return
	}
	h.clients[c.ID] = c

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.pump(ctx, c)
	}()

	h.log.Info().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("client connected")

	if h.welcome != "" {
		h.sendTo(c, h.messageEvent("", AdminName, h.welcome))
	}
	h.broadcastAll(h.roomListEvent(), nil)
}

func (h *hub) handleUnregister(ctx context.Context, c *Client) {
	if existing, ok := h.clients[c.ID]; !ok || existing != c {
		return
	}
	delete(h.clients, c.ID)
	close(c.done)
	close(c.Events)

	user, joined := h.registry.Leave(c.ID)
	h.log.Info().Str("client_id", c.ID).Bool("joined", joined).Int("clients", len(h.clients)).Msg("client disconnected")
	if !joined {
		return
	}

	emptied := h.rooms.unsubscribe(c, user.Room)
	h.broadcastRoom(user.Room, h.messageEvent(user.Room, AdminName, fmt.Sprintf("User %s disconnected", user.Name)), nil)
	h.broadcastRoom(user.Room, h.userListEvent(user.Room), nil)
	h.broadcastAll(h.roomListEvent(), nil)
	if emptied {
		h.roomEmptied(ctx, user.Room)
	}
}

func (h *hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	if existing, ok := h.clients[c.ID]; !ok || existing != c {
		return
	}

	switch cmd.Kind {
	case CommandEnterRoom:
		h.handleEnterRoom(ctx, c, cmd)
	case CommandSendMessage:
		h.handleMessage(ctx, c, cmd)
	case CommandAIEnable:
		h.handleAIEnable(c, cmd)
	case CommandNumMsgChange:
		h.handleNumMsgChange(c, cmd)
	case CommandActivity:
		h.handleActivity(c, cmd)
	default:
		h.log.Warn().Str("client_id", c.ID).Int("kind", int(cmd.Kind)).Msg("unknown command")
	}
}

func (h *hub) handleEnterRoom(ctx context.Context, c *Client, cmd *Command) {
	if cmd.Name == "" || cmd.Room == "" {
		h.log.Warn().Str("client_id", c.ID).Msg("enterRoom requires name and room")
		return
	}

	prev, had := h.registry.Lookup(c.ID)
	switched := had && prev.Room != cmd.Room
	prevEmptied := false
	if switched {
		prevEmptied = h.rooms.unsubscribe(c, prev.Room)
		h.broadcastRoom(prev.Room, h.messageEvent(prev.Room, AdminName, fmt.Sprintf("%s has left the room", cmd.Name)), nil)
	}

	user := h.registry.Join(c.ID, cmd.Name, cmd.Room)
	if switched {
		h.broadcastRoom(prev.Room, h.userListEvent(prev.Room), nil)
		if prevEmptied {
			h.roomEmptied(ctx, prev.Room)
		}
	}

	h.rooms.subscribe(c, user.Room)
	h.log.Info().Str("client_id", c.ID).Str("name", user.Name).Str("room", user.Room).Msg("user entered room")

	h.sendTo(c, h.messageEvent(user.Room, AdminName, fmt.Sprintf("You have joined the %s chat room", user.Room)))
	h.broadcastAll(h.messageEvent(user.Room, AdminName, fmt.Sprintf("%s has joined the room", user.Name)), c)
	h.broadcastRoom(user.Room, h.userListEvent(user.Room), nil)
	h.broadcastAll(h.roomListEvent(), nil)
}

func (h *hub) handleMessage(ctx context.Context, c *Client, cmd *Command) {
	user, ok := h.registry.Lookup(c.ID)
	if !ok {
		h.log.Debug().Str("client_id", c.ID).Msg("message from unjoined client dropped")
		return
	}
	room := user.Room
	name := cmd.Name
	if name == "" {
		name = user.Name
	}

	// The human message always goes out before any AI work starts.
	h.broadcastRoom(room, h.messageEvent(room, name, cmd.Text), nil)
	h.appendLog(ctx, room, LogEntry{Text: cmd.Text, Role: RoleUser})

	if strings.TrimSpace(cmd.Text) == clearCommand {
		h.broadcastRoom(room, h.messageEvent(room, AdminName, "Chat cleared"), nil)
		h.clearLog(ctx, room)
		return
	}

	if h.settings.IsEnabled(room) {
		h.triggerAutoReply(ctx, room)
	}

	if strings.HasPrefix(cmd.Text, aiCommandPrefix) {
		prompt := strings.TrimSpace(cmd.Text[len(aiCommandPrefix):])
		h.log.Info().Str("room", room).Str("prompt", prompt).Msg("ai command received")
		h.complete(ctx, room, true, []llm.Message{{Role: RoleUser, Content: prompt}})
	}
}

// targetRoom resolves the room an AI settings command applies to. Unjoined senders get none.
func (h *hub) targetRoom(c *Client, cmd *Command) (string, bool) {
	user, ok := h.registry.Lookup(c.ID)
	if !ok {
		h.log.Debug().Str("client_id", c.ID).Str("command", cmd.Kind.String()).Msg("command from unjoined client dropped")
		return "", false
	}
	if cmd.Room != "" {
		return cmd.Room, true
	}
	return user.Room, true
}

func (h *hub) handleAIEnable(c *Client, cmd *Command) {
	room, ok := h.targetRoom(c, cmd)
	if !ok {
		return
	}

	enabled := cmd.Enabled
	h.settings.SetEnabled(room, enabled)
	h.log.Info().Str("room", room).Bool("enabled", enabled).Msg("ai toggled")

	text := "AI is now disabled for this room"
	if enabled {
		text = "AI is now enabled for this room"
	}
	h.broadcastRoom(room, &Event{Kind: EventAIChange, Room: room, AI: AIChange{Enabled: &enabled}}, nil)
	h.broadcastRoom(room, h.messageEvent(room, AdminName, text), nil)
}

func (h *hub) handleNumMsgChange(c *Client, cmd *Command) {
	room, ok := h.targetRoom(c, cmd)
	if !ok {
		return
	}
	if !ValidWindow(cmd.Num) {
		h.log.Warn().Str("room", room).Int("num", cmd.Num).Msg("invalid number of messages")
		return
	}

	n := cmd.Num
	h.settings.SetWindow(room, n)
	h.broadcastRoom(room, &Event{Kind: EventAIChange, Room: room, AI: AIChange{LastN: &n}}, nil)
}

func (h *hub) handleActivity(c *Client, cmd *Command) {
	user, ok := h.registry.Lookup(c.ID)
	if !ok {
		return
	}
	name := cmd.Name
	if name == "" {
		name = user.Name
	}
	h.broadcastRoom(user.Room, &Event{Kind: EventActivity, Room: user.Room, Activity: name}, c)
}

// roomEmptied runs after the last member left a room.
func (h *hub) roomEmptied(ctx context.Context, room string) {
	h.log.Debug().Str("room", room).Msg("room empty")
	if !h.forgetEmpty {
		return
	}
	h.settings.Drop(room)
	delete(h.pending, room)
	h.clearGen[room]++
	if err := h.msgLog.Drop(ctx, room); err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("drop room log")
		return
	}
	h.audit.Record(ctx, AuditRecord{Room: room, Action: AuditDrop, At: h.now()})
}

func (h *hub) appendLog(ctx context.Context, room string, entry LogEntry) {
	if err := h.msgLog.Append(ctx, room, entry); err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("append room log")
		return
	}
	h.audit.Record(ctx, AuditRecord{Room: room, Action: AuditAppend, Entry: &entry, At: h.now()})
}

func (h *hub) clearLog(ctx context.Context, room string) {
	delete(h.pending, room)
	h.clearGen[room]++
	if err := h.msgLog.Clear(ctx, room); err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("clear room log")
		return
	}
	h.audit.Record(ctx, AuditRecord{Room: room, Action: AuditClear, At: h.now()})
}

func (h *hub) messageEvent(room, name, text string) *Event {
	return &Event{
		Kind: EventMessage,
		Room: room,
		Message: ChatMessage{
			Name: name,
			Text: text,
			Time: h.now().Format(h.timeFormat),
		},
	}
}

func (h *hub) userListEvent(room string) *Event {
	return &Event{Kind: EventUserList, Room: room, Users: h.registry.UsersInRoom(room)}
}

func (h *hub) roomListEvent() *Event {
	return &Event{Kind: EventRoomList, Rooms: h.rooms.names()}
}

func (h *hub) sendTo(c *Client, event *Event) {
	if !c.send(event) {
		h.log.Warn().Str("client_id", c.ID).Int("kind", int(event.Kind)).Msg("client queue full, event dropped")
	}
}

func (h *hub) broadcastAll(event *Event, except *Client) {
	for _, c := range h.clients {
		if c == except {
			continue
		}
		h.sendTo(c, event)
	}
}

func (h *hub) broadcastRoom(room string, event *Event, except *Client) {
	r, ok := h.rooms.get(room)
	if !ok {
		return
	}
	if dropped := r.Broadcast(event, except); dropped > 0 {
		h.log.Warn().Str("room", room).Int("dropped", dropped).Msg("room broadcast dropped events")
	}
}
