package fakeapi

import (
	"errors"
	"sort"
	"sync"

	"github.com/gravadigital/simradar/internal/domain/participant"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrGroupNotFound = errors.New("group not found")
)

// User is a backend account
type User struct {
	ID      int64
	Name    string
	Surname string
}

// Event is a backend event. Slot is the "date time-range" label used as the
// column header of exports by title.
type Event struct {
	ID    int64
	Title string
	Slot  string
}

// Store is an in-memory stand-in for the backend database
type Store struct {
	mu sync.RWMutex

	nextID int64
	users  map[int64]User
	events map[int64]Event
	groups map[int64]string

	// event id -> user ids
	participations map[int64]map[int64]struct{}
	// group id -> user ids
	memberships map[int64]map[int64]struct{}
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		users:          make(map[int64]User),
		events:         make(map[int64]Event),
		groups:         make(map[int64]string),
		participations: make(map[int64]map[int64]struct{}),
		memberships:    make(map[int64]map[int64]struct{}),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser creates a user and returns its id
func (s *Store) AddUser(name, surname string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.users[id] = User{ID: id, Name: name, Surname: surname}
	return id
}

// AddEvent creates an event and returns its id
func (s *Store) AddEvent(title, slot string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.events[id] = Event{ID: id, Title: title, Slot: slot}
	s.participations[id] = make(map[int64]struct{})
	return id
}

// AddGroup creates a group and returns its id
func (s *Store) AddGroup(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.groups[id] = name
	s.memberships[id] = make(map[int64]struct{})
	return id
}

// AddMember puts a user in a group
func (s *Store) AddMember(groupID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.memberships[groupID]
	if !ok {
		return ErrGroupNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return ErrUserNotFound
	}
	members[userID] = struct{}{}
	return nil
}

// Participants lists the users of an event ordered by id. Unknown events have none
func (s *Store) Participants(eventID int64) []participant.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]participant.Participant, 0, len(s.participations[eventID]))
	for userID := range s.participations[eventID] {
		u := s.users[userID]
		out = append(out, participant.Participant{ID: u.ID, Name: u.Name, Surname: u.Surname})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Participates reports whether a user is registered for an event
func (s *Store) Participates(eventID, userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.participations[eventID][userID]
	return ok
}

// Register adds a participation. It returns false when it already existed
func (s *Store) Register(eventID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, ok := s.participations[eventID]
	if !ok {
		return false, ErrEventNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return false, ErrUserNotFound
	}
	if _, exists := users[userID]; exists {
		return false, nil
	}
	users[userID] = struct{}{}
	return true, nil
}

// Unregister removes a participation and reports whether it existed
func (s *Store) Unregister(eventID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participations[eventID][userID]; !ok {
		return false
	}
	delete(s.participations[eventID], userID)
	return true
}

// DeleteEvent removes an event and its participations
func (s *Store) DeleteEvent(eventID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.participations, eventID)
	if _, ok := s.events[eventID]; !ok {
		return false
	}
	delete(s.events, eventID)
	return true
}

// RemoveMember takes a user out of a group and reports whether it was a member
func (s *Store) RemoveMember(userID, groupID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memberships[groupID][userID]; !ok {
		return false
	}
	delete(s.memberships[groupID], userID)
	return true
}

// DeleteGroup removes a group and its memberships
func (s *Store) DeleteGroup(groupID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.memberships, groupID)
	if _, ok := s.groups[groupID]; !ok {
		return false
	}
	delete(s.groups, groupID)
	return true
}

// DeleteUser removes a user with all its participations and memberships
func (s *Store) DeleteUser(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false
	}
	delete(s.users, userID)
	for _, users := range s.participations {
		delete(users, userID)
	}
	for _, members := range s.memberships {
		delete(members, userID)
	}
	return true
}

// Members lists the user ids of a group in ascending order
func (s *Store) Members(groupID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.memberships[groupID]))
	for id := range s.memberships[groupID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HasEvent reports whether the event exists
func (s *Store) HasEvent(eventID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.events[eventID]
	return ok
}

// HasGroup reports whether the group exists
func (s *Store) HasGroup(groupID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.groups[groupID]
	return ok
}

// EventsByTitle returns the events sharing a title ordered by id
func (s *Store) EventsByTitle(title string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.Title == title {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
