// Package storage holds the dashboard's data layer: an in-memory store
// standing in for a relational database, plus an optional Redis-backed
// chat history log.
package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// User is a dashboard account.
type User struct {
	ID         int        `json:"id"`
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	FullName   string     `json:"fullName"`
	Avatar     string     `json:"avatar,omitempty"`
	Role       string     `json:"role,omitempty"`
	Status     string     `json:"status,omitempty"`
	LastActive *time.Time `json:"lastActive,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// InsertUser is the caller-supplied part of a User.
type InsertUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Conversation is a private or group chat thread.
type Conversation struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // "private" or "group"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InsertConversation is the caller-supplied part of a Conversation.
type InsertConversation struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Message is a persisted chat message.
type Message struct {
	ID             int               `json:"id"`
	ConversationID int               `json:"conversationId"`
	SenderID       int               `json:"senderId"`
	Content        string            `json:"content"`
	Timestamp      time.Time         `json:"timestamp"`
	Read           bool              `json:"read"`
	Type           string            `json:"type"` // "text", "file", "image"
	Attachment     *types.Attachment `json:"attachment,omitempty"`
	Mentions       []string          `json:"mentions,omitempty"`
	Priority       string            `json:"priority"` // "normal", "important", "urgent"
}

// InsertMessage is the caller-supplied part of a Message.
type InsertMessage struct {
	ConversationID int               `json:"conversationId"`
	SenderID       int               `json:"senderId"`
	Content        string            `json:"content"`
	Type           string            `json:"type,omitempty"`
	Attachment     *types.Attachment `json:"attachment,omitempty"`
	Mentions       []string          `json:"mentions,omitempty"`
	Priority       string            `json:"priority,omitempty"`
}

// Dashboard metric rows.
type DashboardStats struct {
	ID               int       `json:"id"`
	ActiveProjects   int       `json:"activeProjects"`
	PendingTasks     int       `json:"pendingTasks"`
	TeamProductivity int       `json:"teamProductivity"`
	UpcomingMeetings int       `json:"upcomingMeetings"`
	NextMeeting      string    `json:"nextMeeting,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type PendingWork struct {
	ID       int    `json:"id"`
	Priority string `json:"priority"` // "High", "Medium", "Low"
	Tasks    int    `json:"tasks"`
	Color    string `json:"color"`
}

type Performance struct {
	ID         int    `json:"id"`
	Month      string `json:"month"`
	Completion int    `json:"completion"`
	Efficiency int    `json:"efficiency"`
}

type CompletedWork struct {
	ID        int    `json:"id"`
	Period    string `json:"period"`
	Bugs      int    `json:"bugs"`
	Features  int    `json:"features"`
	Documents int    `json:"documents"`
}

type Notifications struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type ProjectSuccess struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Success int    `json:"success"`
	Failure int    `json:"failure"`
}

type Workload struct {
	ID       int    `json:"id"`
	UserID   int    `json:"userId"`
	Workload int    `json:"workload"` // percentage
	Status   string `json:"status"`   // "Available", "Good", "Heavy", "Overloaded"
}

// Store is the persistence surface consumed by the REST handlers and,
// for CreateMessage, fire-and-forget by the relay.
type Store interface {
	GetUser(id int) (User, bool)
	GetUserByUsername(username string) (User, bool)
	CreateUser(u InsertUser) (User, error)
	AllUsers() []User

	AllConversations() []Conversation
	GetConversation(id int) (Conversation, bool)
	CreateConversation(c InsertConversation) (Conversation, error)

	MessagesByConversation(conversationID int) []Message
	CreateMessage(m InsertMessage) (Message, error)

	GetDashboardStats() []DashboardStats
	GetPendingWork() []PendingWork
	GetPerformance() []Performance
	GetCompletedWork() []CompletedWork
	GetNotifications() []Notifications
	GetProjectSuccess() []ProjectSuccess
	GetWorkload() []Workload
}

// MemStore is a map-backed Store. A single id sequence spans all
// entities, matching the relational serial columns it stands in for.
type MemStore struct {
	mu            sync.RWMutex
	users         map[int]User
	conversations map[int]Conversation
	messages      map[int]Message

	stats          []DashboardStats
	pendingWork    []PendingWork
	performance    []Performance
	completedWork  []CompletedWork
	notifications  []Notifications
	projectSuccess []ProjectSuccess
	workload       []Workload

	nextID int
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:          make(map[int]User),
		conversations:  make(map[int]Conversation),
		messages:       make(map[int]Message),
		stats:          []DashboardStats{},
		pendingWork:    []PendingWork{},
		performance:    []Performance{},
		completedWork:  []CompletedWork{},
		notifications:  []Notifications{},
		projectSuccess: []ProjectSuccess{},
		workload:       []Workload{},
		nextID:         1,
	}
}

func (s *MemStore) GetUser(id int) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *MemStore) GetUserByUsername(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

func (s *MemStore) CreateUser(in InsertUser) (User, error) {
	if in.Username == "" {
		return User{}, fmt.Errorf("username is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := User{
		ID:        s.nextID,
		Username:  in.Username,
		Password:  in.Password,
		FullName:  in.FullName,
		Avatar:    in.Avatar,
		Role:      in.Role,
		Status:    "offline",
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.users[u.ID] = u
	return u, nil
}

func (s *MemStore) AllUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) AllConversations() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) GetConversation(id int) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	return c, ok
}

func (s *MemStore) CreateConversation(in InsertConversation) (Conversation, error) {
	if in.Name == "" {
		return Conversation{}, fmt.Errorf("name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	c := Conversation{
		ID:        s.nextID,
		Name:      in.Name,
		Type:      in.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.conversations[c.ID] = c
	return c, nil
}

func (s *MemStore) MessagesByConversation(conversationID int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Message{}
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	// Ids are a single monotonic sequence, so id order is insertion order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) CreateMessage(in InsertMessage) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgType := in.Type
	if msgType == "" {
		msgType = "text"
	}
	priority := in.Priority
	if priority == "" {
		priority = "normal"
	}
	m := Message{
		ID:             s.nextID,
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Timestamp:      time.Now(),
		Read:           false,
		Type:           msgType,
		Attachment:     in.Attachment,
		Mentions:       in.Mentions,
		Priority:       priority,
	}
	s.nextID++
	s.messages[m.ID] = m
	return m, nil
}

func (s *MemStore) GetDashboardStats() []DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]DashboardStats{}, s.stats...)
}

func (s *MemStore) GetPendingWork() []PendingWork {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PendingWork{}, s.pendingWork...)
}

func (s *MemStore) GetPerformance() []Performance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Performance{}, s.performance...)
}

func (s *MemStore) GetCompletedWork() []CompletedWork {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CompletedWork{}, s.completedWork...)
}

func (s *MemStore) GetNotifications() []Notifications {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notifications{}, s.notifications...)
}

func (s *MemStore) GetProjectSuccess() []ProjectSuccess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ProjectSuccess{}, s.projectSuccess...)
}

func (s *MemStore) GetWorkload() []Workload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Workload{}, s.workload...)
}

// SetDashboardData replaces the metric rows served by the dashboard
// endpoints. The relay never writes these; they are loaded at startup.
func (s *MemStore) SetDashboardData(
	stats []DashboardStats,
	pending []PendingWork,
	performance []Performance,
	completed []CompletedWork,
	notifications []Notifications,
	success []ProjectSuccess,
	workload []Workload,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats != nil {
		s.stats = stats
	}
	if pending != nil {
		s.pendingWork = pending
	}
	if performance != nil {
		s.performance = performance
	}
	if completed != nil {
		s.completedWork = completed
	}
	if notifications != nil {
		s.notifications = notifications
	}
	if success != nil {
		s.projectSuccess = success
	}
	if workload != nil {
		s.workload = workload
	}
}
