package memory

import (
	"errors"
	"fmt"
	"sync"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrConstraintViolation mirrors the unique constraints the Postgres schema enforces.
var ErrConstraintViolation = errors.New("constraint violation")

type state struct {
	users           map[uuid.UUID]entity.User
	templates       map[uuid.UUID]entity.AssignmentTemplate
	templateOrder   []uuid.UUID
	assignments     map[uuid.UUID]entity.Assignment
	assignmentOrder []uuid.UUID
	iterations      map[uuid.UUID]entity.Iteration
	iterationOrder  []uuid.UUID
	interactions    map[uuid.UUID][]entity.Interaction
}

func newState() *state {
	return &state{
		users:        make(map[uuid.UUID]entity.User),
		templates:    make(map[uuid.UUID]entity.AssignmentTemplate),
		assignments:  make(map[uuid.UUID]entity.Assignment),
		iterations:   make(map[uuid.UUID]entity.Iteration),
		interactions: make(map[uuid.UUID][]entity.Interaction),
	}
}

// clone copies the maps. Stored values are never mutated in place, so the
// values themselves can be shared.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.templates {
		c.templates[k] = v
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.iterations {
		c.iterations[k] = v
	}
	for k, v := range s.interactions {
		c.interactions[k] = v
	}
	c.templateOrder = append([]uuid.UUID{}, s.templateOrder...)
	c.assignmentOrder = append([]uuid.UUID{}, s.assignmentOrder...)
	c.iterationOrder = append([]uuid.UUID{}, s.iterationOrder...)
	return c
}

func (s *state) checkConstraints() error {
	type userTopic struct {
		user  uuid.UUID
		topic entity.Topic
	}
	topics := make(map[userTopic]bool)
	active := make(map[uuid.UUID]bool)
	for _, a := range s.assignments {
		key := userTopic{a.UserId, a.Topic}
		if topics[key] {
			return fmt.Errorf("%w: duplicate assignment for user %s topic %s", ErrConstraintViolation, a.UserId, a.Topic)
		}
		topics[key] = true
		if a.IsActive {
			if active[a.UserId] {
				return fmt.Errorf("%w: more than one active assignment for user %s", ErrConstraintViolation, a.UserId)
			}
			active[a.UserId] = true
		}
	}

	type assignmentNumber struct {
		assignment uuid.UUID
		number     int
	}
	numbers := make(map[assignmentNumber]bool)
	for _, it := range s.iterations {
		key := assignmentNumber{it.AssignmentId, it.Number}
		if numbers[key] {
			return fmt.Errorf("%w: duplicate iteration %d for assignment %s", ErrConstraintViolation, it.Number, it.AssignmentId)
		}
		numbers[key] = true
	}

	for iterationId, list := range s.interactions {
		keys := make(map[entity.InteractionKey]bool, len(list))
		for _, in := range list {
			if keys[in.Key()] {
				return fmt.Errorf("%w: duplicate interaction %s in iteration %s", ErrConstraintViolation, in.Key(), iterationId)
			}
			keys[in.Key()] = true
		}
	}
	return nil
}

type op func(s *state) error

// Store is an in-process stand-in for the relational schema. Writes made inside a
// unit of work become visible together at Commit, and a failing batch leaves the
// committed state untouched.
type Store struct {
	mu    sync.RWMutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) apply(ops []op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	for _, o := range ops {
		if err := o(next); err != nil {
			return err
		}
	}
	if err := next.checkConstraints(); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store) read(fn func(s *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func unsupported(spec specification.Specification) error {
	return fmt.Errorf("memory store: unsupported specification %T", spec)
}

// descending reports whether an OrderBy asks for reverse order. The store keeps
// its natural order (insertion, or iteration number) and only honours direction.
func descending(specs []specification.Specification) bool {
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok {
			return o.Desc
		}
	}
	return false
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
