package client

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// ChatMessage is the view form of one chat envelope.
type ChatMessage struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	Type           string
	Timestamp      time.Time
	Read           bool
	Attachment     *types.Attachment
	Mentions       []string
	Priority       string
}

// LastMessage is the denormalized summary shown in a conversation list.
type LastMessage struct {
	Sender    string
	Content   string
	Timestamp time.Time
	Read      bool
}

// Conversation list filters.
const (
	FilterAll     = "all"
	FilterPrivate = "private"
	FilterGroup   = "group"
)

// ConversationState is the per-conversation view state.
type ConversationState struct {
	ID          string
	Type        string // "private" or "group"
	LastMessage *LastMessage
	UnreadCount int
}

// DayGroup is one calendar day's worth of messages, for display.
type DayGroup struct {
	Day      time.Time
	Messages []ChatMessage
}

// Projection folds the envelope stream into conversation and message
// view state. It is derived state only, never the source of truth, and
// de-duplicates by envelope id so a locally appended message is
// reconciled rather than duplicated when the server echo arrives.
type Projection struct {
	mu            sync.Mutex
	conversations map[string]*ConversationState
	messages      map[string][]ChatMessage
	index         map[string]messageRef
	active        string
	filter        string
}

type messageRef struct {
	conversationID string
	pos            int
}

// NewProjection creates an empty projection.
func NewProjection() *Projection {
	return &Projection{
		conversations: make(map[string]*ConversationState),
		messages:      make(map[string][]ChatMessage),
		index:         make(map[string]messageRef),
		filter:        FilterAll,
	}
}

// Apply folds one envelope into the view state. Envelopes that are not
// chat messages, or that carry an id already seen, update nothing new;
// a seen id refreshes the stored copy with the server-enriched fields.
func (p *Projection) Apply(env types.Envelope) {
	if env.MessageType != types.TypeChatMessage || env.ID == "" {
		return
	}
	msg := toChatMessage(env)

	p.mu.Lock()
	defer p.mu.Unlock()

	if ref, ok := p.index[msg.ID]; ok {
		// Echo of a locally appended message: reconcile in place.
		existing := &p.messages[ref.conversationID][ref.pos]
		existing.Timestamp = msg.Timestamp
		existing.SenderID = msg.SenderID
		return
	}
	p.append(msg, msg.ConversationID != p.active)
}

// AppendLocal records an optimistic local send so the UI shows the
// message immediately. The broadcast echo with the same id reconciles
// instead of duplicating. A local append never counts as unread.
func (p *Projection) AppendLocal(env types.Envelope) {
	if env.MessageType != types.TypeChatMessage || env.ID == "" {
		return
	}
	msg := toChatMessage(env)
	msg.Read = true

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.index[msg.ID]; ok {
		return
	}
	p.append(msg, false)
}

func (p *Projection) append(msg ChatMessage, unread bool) {
	conv := p.conversations[msg.ConversationID]
	if conv == nil {
		conv = &ConversationState{ID: msg.ConversationID}
		p.conversations[msg.ConversationID] = conv
	}

	list := p.messages[msg.ConversationID]
	p.index[msg.ID] = messageRef{conversationID: msg.ConversationID, pos: len(list)}
	p.messages[msg.ConversationID] = append(list, msg)

	conv.LastMessage = &LastMessage{
		Sender:    msg.SenderID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		Read:      !unread,
	}
	if unread {
		conv.UnreadCount++
	}
}

// SetActive switches the active conversation. Its unread counter resets
// and its messages are marked read locally; server state is untouched.
func (p *Projection) SetActive(conversationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = conversationID
	conv := p.conversations[conversationID]
	if conv == nil {
		return
	}
	conv.UnreadCount = 0
	if conv.LastMessage != nil {
		conv.LastMessage.Read = true
	}
	list := p.messages[conversationID]
	for i := range list {
		list[i].Read = true
	}
}

// Active returns the active conversation id.
func (p *Projection) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// UnreadCount returns the unread counter for a conversation.
func (p *Projection) UnreadCount(conversationID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conv := p.conversations[conversationID]; conv != nil {
		return conv.UnreadCount
	}
	return 0
}

// MarkRead marks a single message read. Unknown ids are ignored.
func (p *Projection) MarkRead(messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ref, ok := p.index[messageID]; ok {
		p.messages[ref.conversationID][ref.pos].Read = true
	}
}

// Search returns every message whose content contains the query,
// case-insensitively. A blank query matches nothing.
func (p *Projection) Search(query string) []ChatMessage {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.messages))
	for id := range p.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []ChatMessage
	for _, id := range ids {
		for _, msg := range p.messages[id] {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				out = append(out, msg)
			}
		}
	}
	return out
}

// TrackConversation records a conversation's type, normally seeded from
// the conversation list endpoint, so the list filter can classify it.
func (p *Projection) TrackConversation(conversationID, convType string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	conv := p.conversations[conversationID]
	if conv == nil {
		conv = &ConversationState{ID: conversationID}
		p.conversations[conversationID] = conv
	}
	conv.Type = convType
}

// SetFilter switches the conversation list filter.
func (p *Projection) SetFilter(filter string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = filter
}

// Filter returns the current conversation list filter.
func (p *Projection) Filter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// Conversations returns the conversations matching the current filter,
// ordered by id.
func (p *Projection) Conversations() []ConversationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ConversationState, 0, len(p.conversations))
	for _, conv := range p.conversations {
		if p.filter != FilterAll && conv.Type != p.filter {
			continue
		}
		c := *conv
		if conv.LastMessage != nil {
			lm := *conv.LastMessage
			c.LastMessage = &lm
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Conversation returns a copy of one conversation's view state.
func (p *Projection) Conversation(conversationID string) (ConversationState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	conv := p.conversations[conversationID]
	if conv == nil {
		return ConversationState{}, false
	}
	out := *conv
	if conv.LastMessage != nil {
		lm := *conv.LastMessage
		out.LastMessage = &lm
	}
	return out, true
}

// Messages returns a copy of a conversation's messages in arrival order.
func (p *Projection) Messages(conversationID string) []ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ChatMessage{}, p.messages[conversationID]...)
}

// MessagesByDay groups a conversation's messages by local calendar day,
// sorted by timestamp within each day.
func (p *Projection) MessagesByDay(conversationID string) []DayGroup {
	msgs := p.Messages(conversationID)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})

	var groups []DayGroup
	for _, msg := range msgs {
		day := truncateToDay(msg.Timestamp.Local())
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Messages = append(groups[n-1].Messages, msg)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Messages: []ChatMessage{msg}})
	}
	return groups
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func toChatMessage(env types.Envelope) ChatMessage {
	ts, err := time.Parse(time.RFC3339, env.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	msgType := env.ContentType
	if msgType == "" {
		msgType = "text"
	}
	priority := env.Priority
	if priority == "" {
		priority = "normal"
	}
	return ChatMessage{
		ID:             env.ID,
		ConversationID: string(env.ConversationID),
		SenderID:       string(env.SenderID),
		Content:        env.Content,
		Type:           msgType,
		Timestamp:      ts,
		Attachment:     env.Attachment,
		Mentions:       env.Mentions,
		Priority:       priority,
	}
}
