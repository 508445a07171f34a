// Package notify is the process-wide notification bus: an ordered,
// newest-first list of transient messages with auto-expiry and manual
// dismissal.
package notify

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
)

// ErrMessageRequired is returned by Recommend without a message.
var ErrMessageRequired = errors.New("recommendation requires a message")

// Type classifies a notification.
type Type string

const (
	TypeSuccess        Type = "success"
	TypeError          Type = "error"
	TypeInfo           Type = "info"
	TypeWarning        Type = "warning"
	TypeRecommendation Type = "recommendation"
)

const (
	DefaultDuration   = 5 * time.Second
	ErrorDuration     = 7 * time.Second
	RecommendDuration = 10 * time.Second
)

// Action is the single optional call to action of a notification.
type Action struct {
	Label    string `json:"label"`
	Callback func() `json:"-"`
}

// Notification is one entry of the bus. A zero Duration never expires.
type Notification struct {
	ID          string        `json:"id"`
	Type        Type          `json:"type"`
	Title       string        `json:"title"`
	Message     string        `json:"message,omitempty"`
	Action      *Action       `json:"action,omitempty"`
	Duration    time.Duration `json:"duration"`
	Dismissible bool          `json:"dismissible"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Request describes a notification to publish. A nil Duration means
// DefaultDuration and a nil Dismissible means true.
type Request struct {
	Type        Type
	Title       string
	Message     string
	Action      *Action
	Duration    *time.Duration
	Dismissible *bool
}

// Expires returns a Duration for Request. Expires(0) makes a sticky notification.
func Expires(d time.Duration) *time.Duration {
	return &d
}

// Bus is safe for concurrent use. List mutations and expiry callbacks are
// serialized on one mutex.
type Bus struct {
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	list    []Notification
	timers  map[string]*clock.Timer
	subs    map[int]chan []Notification
	nextSub int
}

// Option customizes a Bus.
type Option func(*Bus)

// WithClock sets the clock driving expiry.
func WithClock(c clock.Clock) Option {
	return func(b *Bus) { b.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		clock:  clock.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		timers: make(map[string]*clock.Timer),
		subs:   make(map[int]chan []Notification),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Notify publishes req at the head of the list and returns its id.
func (b *Bus) Notify(req Request) string {
	n := Notification{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Action:      req.Action,
		Duration:    DefaultDuration,
		Dismissible: true,
		CreatedAt:   b.clock.Now(),
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}
	if req.Duration != nil {
		n.Duration = max(*req.Duration, 0)
	}
	if req.Dismissible != nil {
		n.Dismissible = *req.Dismissible
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.list = slices.Insert(b.list, 0, n)
	if n.Duration > 0 {
		id := n.ID
		b.timers[id] = b.clock.AfterFunc(n.Duration, func() { b.expire(id) })
	}
	b.logger.Debug("notification published", "id", n.ID, "type", n.Type)
	b.publishLocked()
	return n.ID
}

// Success publishes a success notification and returns its id.
func (b *Bus) Success(title, message string) string {
	return b.Notify(Request{Type: TypeSuccess, Title: title, Message: message, Duration: Expires(DefaultDuration)})
}

// Error publishes an error notification and returns its id.
func (b *Bus) Error(title, message string) string {
	return b.Notify(Request{Type: TypeError, Title: title, Message: message, Duration: Expires(ErrorDuration)})
}

// Info publishes an informational notification and returns its id.
func (b *Bus) Info(title, message string) string {
	return b.Notify(Request{Type: TypeInfo, Title: title, Message: message, Duration: Expires(DefaultDuration)})
}

// Warning publishes a warning and returns its id.
func (b *Bus) Warning(title, message string) string {
	return b.Notify(Request{Type: TypeWarning, Title: title, Message: message, Duration: Expires(DefaultDuration)})
}

// Recommend publishes a tip. Tips must carry a message.
func (b *Bus) Recommend(title, message string, action *Action) (string, error) {
	if message == "" {
		return "", ErrMessageRequired
	}
	return b.Notify(Request{
		Type:     TypeRecommendation,
		Title:    title,
		Message:  message,
		Action:   action,
		Duration: Expires(RecommendDuration),
	}), nil
}

// Dismiss removes id. Unknown or already dismissed ids are ignored.
func (b *Bus) Dismiss(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	if b.removeLocked(id) {
		b.publishLocked()
	}
}

// DismissAll clears the list.
func (b *Bus) DismissAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopTimersLocked()
	if len(b.list) == 0 {
		return
	}
	b.list = nil
	b.publishLocked()
}

// List returns the notifications, newest first.
func (b *Bus) List() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.list)
}

// Get returns the notification with id.
func (b *Bus) Get(id string) (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.list, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return Notification{}, false
	}
	return b.list[i], true
}

// Subscribe returns a channel carrying the latest list after every change.
// Slow readers only see the most recent snapshot. Call cancel to unsubscribe.
func (b *Bus) Subscribe() (<-chan []Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	ch := make(chan []Notification, 1)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Close stops every expiry timer and ends all subscriptions. The list is kept.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopTimersLocked()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *Bus) expire(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.timers, id)
	if b.removeLocked(id) {
		b.logger.Debug("notification expired", "id", id)
		b.publishLocked()
	}
}

func (b *Bus) removeLocked(id string) bool {
	i := slices.IndexFunc(b.list, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	b.list = slices.Delete(b.list, i, i+1)
	return true
}

func (b *Bus) stopTimersLocked() {
	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
}

func (b *Bus) publishLocked() {
	for _, ch := range b.subs {
		snapshot := slices.Clone(b.list)
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
