package chat_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"socialnet/internal/app/chat"
	"socialnet/internal/app/user"
	"socialnet/internal/pkg/errs"
)

// recordedEvent is one delivery captured by a fakeConn.
type recordedEvent struct {
	event string
	data  any
}

// fakeConn is an in-memory chat.Conn recording everything sent to it.
type fakeConn struct {
	id string

	mu     sync.Mutex
	events []recordedEvent
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, recordedEvent{event: event, data: data})
	return nil
}

func (c *fakeConn) SendError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, recordedEvent{event: chat.EventError, data: err})
}

// eventsNamed returns the captured deliveries for one event name.
func (c *fakeConn) eventsNamed(name string) []recordedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []recordedEvent
	for _, e := range c.events {
		if e.event == name {
			out = append(out, e)
		}
	}
	return out
}

// fakeMessageStore is an in-memory chat.MessageStore.
type fakeMessageStore struct {
	mu     sync.Mutex
	byRoom map[string][]chat.Message
	nextID int

	failAppend bool
	failList   bool
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{byRoom: make(map[string][]chat.Message)}
}

func (s *fakeMessageStore) Append(ctx context.Context, msg chat.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAppend {
		return "", errs.NewError(errs.ErrStorage)
	}

	s.nextID++
	msg.ID = strconv.Itoa(s.nextID)
	s.byRoom[msg.Room] = append(s.byRoom[msg.Room], msg)
	return msg.ID, nil
}

func (s *fakeMessageStore) ListByRoom(ctx context.Context, room string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failList {
		return nil, errs.NewError(errs.ErrStorage)
	}

	out := make([]chat.Message, len(s.byRoom[room]))
	copy(out, s.byRoom[room])
	return out, nil
}

// fakeDirectory is an in-memory chat.UserDirectory.
type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]user.User

	failList   bool
	failUpdate bool
}

func newFakeDirectory(users ...user.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]user.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) ListAll(ctx context.Context) ([]user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failList {
		return nil, errs.NewError(errs.ErrStorage)
	}

	out := make([]user.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	return out, nil
}

func (d *fakeDirectory) GetByID(ctx context.Context, id string) (user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return user.User{}, errs.NewError(errs.ErrUserNotFound)
	}
	return u, nil
}

func (d *fakeDirectory) UpdateStatus(ctx context.Context, id string, status user.Status, newMessages int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failUpdate {
		return errs.NewError(errs.ErrStorage)
	}

	u, ok := d.users[id]
	if !ok {
		return errs.NewError(errs.ErrUserNotFound)
	}

	u.Status = status
	u.NewMessages = newMessages
	d.users[id] = u
	return nil
}

// testCore wires a controller over fakes and registers the given connections.
func testCore(t *testing.T, conns ...*fakeConn) (*chat.Controller, *fakeMessageStore, *fakeDirectory) {
	t.Helper()

	messages := newFakeMessageStore()
	directory := newFakeDirectory(
		user.User{ID: "u-alice", FirstName: "Alice", Status: user.StatusOnline},
		user.User{ID: "u-bob", FirstName: "Bob", Status: user.StatusOnline},
	)

	registry := chat.NewRegistry(directory)
	members := chat.NewMembership([]string{"general", "tech", "finance", "crypto"})
	controller := chat.NewController(registry, members, messages, directory)

	for _, conn := range conns {
		controller.Register(conn)
	}

	return controller, messages, directory
}

// TestAnnouncePresence verifies the presence snapshot reaches every live
// connection, including the announcer.
func TestAnnouncePresence(t *testing.T) {
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	controller, _, _ := testCore(t, a, b)

	controller.Announce(context.Background(), a)

	for _, conn := range []*fakeConn{a, b} {
		snapshots := conn.eventsNamed(chat.EventAnnounce)
		if len(snapshots) != 1 {
			t.Fatalf("%s: expected 1 presence snapshot, got %d", conn.id, len(snapshots))
		}
		users, ok := snapshots[0].data.([]user.User)
		if !ok {
			t.Fatalf("%s: snapshot payload has type %T", conn.id, snapshots[0].data)
		}
		if len(users) != 2 {
			t.Errorf("%s: snapshot carries %d users, want 2", conn.id, len(users))
		}
	}
}

// TestAnnouncePresenceDirectoryFailure verifies the failure goes back to the
// announcer only and nothing is fanned out.
func TestAnnouncePresenceDirectoryFailure(t *testing.T) {
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	controller, _, directory := testCore(t, a, b)
	directory.failList = true

	controller.Announce(context.Background(), a)

	if len(a.eventsNamed(chat.EventError)) != 1 {
		t.Error("announcer did not receive the error")
	}
	if len(b.eventsNamed(chat.EventAnnounce)) != 0 {
		t.Error("snapshot fanned out despite directory failure")
	}
	if len(b.eventsNamed(chat.EventError)) != 0 {
		t.Error("error leaked to an unrelated connection")
	}
}

// TestJoinRoomEmptyHistory verifies a join of an empty room unicasts an empty
// group sequence to the joiner alone.
func TestJoinRoomEmptyHistory(t *testing.T) {
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	controller, _, _ := testCore(t, a, b)

	controller.JoinRoom(context.Background(), a, chat.JoinRoomPayload{NewRoom: "general"})

	histories := a.eventsNamed(chat.EventRoomMessages)
	if len(histories) != 1 {
		t.Fatalf("expected 1 history delivery, got %d", len(histories))
	}
	groups, ok := histories[0].data.([]chat.DateGroup)
	if !ok {
		t.Fatalf("history payload has type %T", histories[0].data)
	}
	if len(groups) != 0 {
		t.Errorf("expected empty history, got %d groups", len(groups))
	}

	if len(b.eventsNamed(chat.EventRoomMessages)) != 0 {
		t.Error("history leaked to a connection that did not join")
	}
}

// TestJoinUnknownRoom verifies the error goes to the joiner and the previous
// binding survives.
func TestJoinUnknownRoom(t *testing.T) {
	a := newFakeConn("conn-a")
	controller, _, _ := testCore(t, a)

	controller.JoinRoom(context.Background(), a, chat.JoinRoomPayload{NewRoom: "general"})
	controller.JoinRoom(context.Background(), a, chat.JoinRoomPayload{NewRoom: "not-a-real-room", PreviousRoom: "general"})

	errsSeen := a.eventsNamed(chat.EventError)
	if len(errsSeen) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(errsSeen))
	}
	customErr, ok := errsSeen[0].data.(*errs.CustomError)
	if !ok || customErr.Code != errs.ErrUnknownRoom {
		t.Fatalf("expected UnknownRoom error, got %#v", errsSeen[0].data)
	}

	// The failed switch must not have dropped the general binding: a message
	// sent to general still reaches this connection.
	controller.SendMessage(context.Background(), newRegisteredConn(t, controller, "conn-x"), chat.SendMessagePayload{
		Room: "general", Content: "ping", Sender: "alice", Time: "10:00", Date: "03/01/2024",
	})

	if len(a.eventsNamed(chat.EventRoomMessages)) < 2 {
		t.Error("connection lost its general membership after a rejected switch")
	}
}

// newRegisteredConn registers an extra fake connection mid-test.
func newRegisteredConn(t *testing.T, controller *chat.Controller, id string) *fakeConn {
	t.Helper()
	conn := newFakeConn(id)
	controller.Register(conn)
	return conn
}

// TestSendMessageBroadcastTargeting: two connections in
// general, one in crypto. The history broadcast reaches exactly the general
// members; the activity signal reaches only the crypto connection.
func TestSendMessageBroadcastTargeting(t *testing.T) {
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	c := newFakeConn("conn-c")
	controller, _, _ := testCore(t, a, b, c)

	controller.JoinRoom(context.Background(), a, chat.JoinRoomPayload{NewRoom: "general"})
	controller.JoinRoom(context.Background(), b, chat.JoinRoomPayload{NewRoom: "general"})
	controller.JoinRoom(context.Background(), c, chat.JoinRoomPayload{NewRoom: "crypto"})

	controller.SendMessage(context.Background(), a, chat.SendMessagePayload{
		Room: "general", Content: "hi", Sender: "alice", Time: "10:00", Date: "03/01/2024",
	})

	// Both general members get the refreshed history (join delivered one
	// each already).
	for _, conn := range []*fakeConn{a, b} {
		if got := len(conn.eventsNamed(chat.EventRoomMessages)); got != 2 {
			t.Errorf("%s: history deliveries = %d, want 2", conn.id, got)
		}
		if got := len(conn.eventsNamed(chat.EventNotifications)); got != 0 {
			t.Errorf("%s: received %d activity signals, want 0", conn.id, got)
		}
	}

	// The crypto connection gets the activity signal and no general history.
	notes := c.eventsNamed(chat.EventNotifications)
	if len(notes) != 1 {
		t.Fatalf("crypto connection: activity signals = %d, want 1", len(notes))
	}
	if room, ok := notes[0].data.(string); !ok || room != "general" {
		t.Errorf("activity payload = %#v, want \"general\"", notes[0].data)
	}
	if got := len(c.eventsNamed(chat.EventRoomMessages)); got != 1 {
		t.Errorf("crypto connection: history deliveries = %d, want 1 (its own join only)", got)
	}
}

// TestEndToEndScenario follows one full session: join an empty room,
// send one message, verify the date group content and the cross-room signal.
func TestEndToEndScenario(t *testing.T) {
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	controller, _, _ := testCore(t, a, b)

	controller.JoinRoom(context.Background(), a, chat.JoinRoomPayload{NewRoom: "general"})
	controller.JoinRoom(context.Background(), b, chat.JoinRoomPayload{NewRoom: "tech"})

	controller.SendMessage(context.Background(), a, chat.SendMessagePayload{
		Room: "general", Content: "hi", Sender: "alice", Time: "10:00", Date: "03/01/2024",
	})

	histories := a.eventsNamed(chat.EventRoomMessages)
	if len(histories) != 2 {
		t.Fatalf("sender history deliveries = %d, want 2", len(histories))
	}

	groups := histories[1].data.([]chat.DateGroup)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].Date != "03/01/2024" {
		t.Errorf("group date = %q, want 03/01/2024", groups[0].Date)
	}
	if len(groups[0].Messages) != 1 || groups[0].Messages[0].Content != "hi" {
		t.Fatalf("group messages = %+v", groups[0].Messages)
	}

	notes := b.eventsNamed(chat.EventNotifications)
	if len(notes) != 1 || notes[0].data.(string) != "general" {
		t.Fatalf("tech connection signals = %+v, want one \"general\"", notes)
	}
	if got := len(b.eventsNamed(chat.EventRoomMessages)); got != 1 {
		t.Errorf("tech connection saw %d history deliveries, want 1 (its own join)", got)
	}
}

// TestSendMessageStorageFailure verifies a failed append reports to the
// sender and broadcasts nothing.
func TestSendMessageStorageFailure(t *testing.T) {
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	controller, messages, _ := testCore(t, a, b)

	controller.JoinRoom(context.Background(), a, chat.JoinRoomPayload{NewRoom: "general"})
	controller.JoinRoom(context.Background(), b, chat.JoinRoomPayload{NewRoom: "general"})
	messages.failAppend = true

	controller.SendMessage(context.Background(), a, chat.SendMessagePayload{
		Room: "general", Content: "hi", Sender: "alice", Time: "10:00", Date: "03/01/2024",
	})

	errsSeen := a.eventsNamed(chat.EventError)
	if len(errsSeen) != 1 {
		t.Fatalf("sender errors = %d, want 1", len(errsSeen))
	}
	if got := len(b.eventsNamed(chat.EventRoomMessages)); got != 1 {
		t.Errorf("other member saw %d history deliveries, want 1 (its join only)", got)
	}
	if got := len(b.eventsNamed(chat.EventError)); got != 0 {
		t.Errorf("storage failure leaked to another connection (%d errors)", got)
	}
}

// TestSendMessageMalformedDate verifies a bad date label is rejected before
// anything is persisted.
func TestSendMessageMalformedDate(t *testing.T) {
	a := newFakeConn("conn-a")
	controller, messages, _ := testCore(t, a)

	controller.JoinRoom(context.Background(), a, chat.JoinRoomPayload{NewRoom: "general"})

	controller.SendMessage(context.Background(), a, chat.SendMessagePayload{
		Room: "general", Content: "hi", Sender: "alice", Time: "10:00", Date: "2024-03-01",
	})

	errsSeen := a.eventsNamed(chat.EventError)
	if len(errsSeen) != 1 {
		t.Fatalf("sender errors = %d, want 1", len(errsSeen))
	}
	customErr, ok := errsSeen[0].data.(*errs.CustomError)
	if !ok || customErr.Code != errs.ErrMalformedDate {
		t.Fatalf("expected MalformedDate, got %#v", errsSeen[0].data)
	}

	stored, err := messages.ListByRoom(context.Background(), "general")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 0 {
		t.Errorf("message persisted despite malformed date: %+v", stored)
	}
}

// TestSendMessageUnknownRoom verifies an out-of-set room is rejected.
func TestSendMessageUnknownRoom(t *testing.T) {
	a := newFakeConn("conn-a")
	controller, _, _ := testCore(t, a)

	controller.SendMessage(context.Background(), a, chat.SendMessagePayload{
		Room: "nowhere", Content: "hi", Sender: "alice", Time: "10:00", Date: "03/01/2024",
	})

	errsSeen := a.eventsNamed(chat.EventError)
	if len(errsSeen) != 1 {
		t.Fatalf("sender errors = %d, want 1", len(errsSeen))
	}
	customErr, ok := errsSeen[0].data.(*errs.CustomError)
	if !ok || customErr.Code != errs.ErrUnknownRoom {
		t.Fatalf("expected UnknownRoom, got %#v", errsSeen[0].data)
	}
}

// TestLogout verifies the offline transition, the unread counter write, and
// the follow-up presence announcement.
func TestLogout(t *testing.T) {
	a := newFakeConn("conn-a")
	controller, _, directory := testCore(t, a)

	if err := controller.Logout(context.Background(), "u-alice", 7); err != nil {
		t.Fatalf("logout: %v", err)
	}

	u, err := directory.GetByID(context.Background(), "u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if u.Status != user.StatusOffline {
		t.Errorf("status = %q, want offline", u.Status)
	}
	if u.NewMessages != 7 {
		t.Errorf("newMessages = %d, want 7", u.NewMessages)
	}

	if len(a.eventsNamed(chat.EventAnnounce)) != 1 {
		t.Error("presence not announced after logout")
	}
}

// TestLogoutFailures verifies no presence announcement when the update fails.
func TestLogoutFailures(t *testing.T) {
	a := newFakeConn("conn-a")
	controller, _, directory := testCore(t, a)

	if err := controller.Logout(context.Background(), "u-ghost", 0); err == nil {
		t.Fatal("expected NotFound for unknown user")
	}
	if len(a.eventsNamed(chat.EventAnnounce)) != 0 {
		t.Error("presence announced despite NotFound")
	}

	directory.failUpdate = true
	if err := controller.Logout(context.Background(), "u-alice", 0); err == nil {
		t.Fatal("expected storage error")
	}
	if len(a.eventsNamed(chat.EventAnnounce)) != 0 {
		t.Error("presence announced despite storage failure")
	}
}

// TestDisconnectStopsDelivery verifies a departed connection receives nothing
// and that repeated disconnects are harmless.
func TestDisconnectStopsDelivery(t *testing.T) {
	a := newFakeConn("conn-a")
	b := newFakeConn("conn-b")
	controller, _, _ := testCore(t, a, b)

	controller.JoinRoom(context.Background(), a, chat.JoinRoomPayload{NewRoom: "general"})
	controller.JoinRoom(context.Background(), b, chat.JoinRoomPayload{NewRoom: "general"})

	controller.Disconnect(b.ID())
	controller.Disconnect(b.ID())

	controller.SendMessage(context.Background(), a, chat.SendMessagePayload{
		Room: "general", Content: "hi", Sender: "alice", Time: "10:00", Date: "03/01/2024",
	})

	if got := len(b.eventsNamed(chat.EventRoomMessages)); got != 1 {
		t.Errorf("departed connection saw %d history deliveries, want 1 (its join only)", got)
	}
	if got := len(b.eventsNamed(chat.EventNotifications)); got != 0 {
		t.Errorf("departed connection saw %d activity signals, want 0", got)
	}
}
