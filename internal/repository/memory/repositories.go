package memory

import (
	"context"
	"fmt"
	"time"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/repository/specification"

	"github.com/google/uuid"
)

type userRepository struct {
	uow *UnitOfWork
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	stored := *user
	return r.uow.write(func(s *state) error {
		if _, exists := s.users[stored.Id]; exists {
			return fmt.Errorf("%w: user %s exists", ErrConstraintViolation, stored.Id)
		}
		s.users[stored.Id] = stored
		return nil
	})
}

func (r *userRepository) matches(u entity.User, specs []specification.Specification) (bool, error) {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if u.Id != sp.ID {
				return false, nil
			}
		case specification.OrderBy, specification.ForUpdate:
		default:
			return false, unsupported(spec)
		}
	}
	return true, nil
}

func (r *userRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *userRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	out := make([]*entity.User, 0)
	err := r.uow.store.read(func(s *state) error {
		for _, u := range s.users {
			ok, err := r.matches(u, specs)
			if err != nil {
				return err
			}
			if ok {
				c := u
				out = append(out, &c)
			}
		}
		return nil
	})
	sortUsers(out)
	if descending(specs) {
		reverse(out)
	}
	return out, err
}

type assignmentTemplateRepository struct {
	uow *UnitOfWork
}

func (r *assignmentTemplateRepository) Create(ctx context.Context, template *entity.AssignmentTemplate) error {
	if template.Id == uuid.Nil {
		template.Id = uuid.New()
	}
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now()
	}
	stored := *copyTemplate(*template)
	return r.uow.write(func(s *state) error {
		if _, exists := s.templates[stored.Id]; exists {
			return fmt.Errorf("%w: template %s exists", ErrConstraintViolation, stored.Id)
		}
		s.templates[stored.Id] = stored
		s.templateOrder = append(s.templateOrder, stored.Id)
		return nil
	})
}

func (r *assignmentTemplateRepository) matches(t entity.AssignmentTemplate, specs []specification.Specification) (bool, error) {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if t.Id != sp.ID {
				return false, nil
			}
		case specification.ByTopic:
			if t.Topic != sp.Topic {
				return false, nil
			}
		case specification.OrderBy, specification.ForUpdate:
		default:
			return false, unsupported(spec)
		}
	}
	return true, nil
}

func (r *assignmentTemplateRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssignmentTemplate, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *assignmentTemplateRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssignmentTemplate, error) {
	out := make([]*entity.AssignmentTemplate, 0)
	err := r.uow.store.read(func(s *state) error {
		for _, id := range s.templateOrder {
			t := s.templates[id]
			ok, err := r.matches(t, specs)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, copyTemplate(t))
			}
		}
		return nil
	})
	if descending(specs) {
		reverse(out)
	}
	return out, err
}

func (r *assignmentTemplateRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *assignmentTemplateRepository) IncrementReuseCount(ctx context.Context, id uuid.UUID) error {
	return r.uow.write(func(s *state) error {
		t, ok := s.templates[id]
		if !ok {
			return fmt.Errorf("template %s: record not found", id)
		}
		t.ReuseCount++
		s.templates[id] = t
		return nil
	})
}

type assignmentRepository struct {
	uow *UnitOfWork
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *entity.Assignment) error {
	if assignment.Id == uuid.Nil {
		assignment.Id = uuid.New()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now()
	}
	stored := *assignment
	stored.Iterations = nil
	return r.uow.write(func(s *state) error {
		if _, exists := s.assignments[stored.Id]; exists {
			return fmt.Errorf("%w: assignment %s exists", ErrConstraintViolation, stored.Id)
		}
		s.assignments[stored.Id] = stored
		s.assignmentOrder = append(s.assignmentOrder, stored.Id)
		return nil
	})
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *entity.Assignment) error {
	now := time.Now()
	assignment.UpdatedAt = &now
	stored := *assignment
	stored.Iterations = nil
	return r.uow.write(func(s *state) error {
		if _, exists := s.assignments[stored.Id]; !exists {
			return fmt.Errorf("assignment %s: record not found", stored.Id)
		}
		s.assignments[stored.Id] = stored
		return nil
	})
}

func (r *assignmentRepository) matches(a entity.Assignment, specs []specification.Specification) (bool, error) {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if a.Id != sp.ID {
				return false, nil
			}
		case specification.UserOwnedBy:
			if a.UserId != sp.UserID {
				return false, nil
			}
		case specification.ByTopic:
			if a.Topic != sp.Topic {
				return false, nil
			}
		case specification.IsActive:
			if !a.IsActive {
				return false, nil
			}
		case specification.OrderBy, specification.ForUpdate:
		default:
			return false, unsupported(spec)
		}
	}
	return true, nil
}

func (r *assignmentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assignment, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *assignmentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assignment, error) {
	out := make([]*entity.Assignment, 0)
	err := r.uow.store.read(func(s *state) error {
		for _, id := range s.assignmentOrder {
			a := s.assignments[id]
			ok, err := r.matches(a, specs)
			if err != nil {
				return err
			}
			if ok {
				c := a
				out = append(out, &c)
			}
		}
		return nil
	})
	if descending(specs) {
		reverse(out)
	}
	return out, err
}

func (r *assignmentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *assignmentRepository) DeactivateAllByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.uow.write(func(s *state) error {
		for id, a := range s.assignments {
			if a.UserId == userId && a.IsActive {
				a.IsActive = false
				s.assignments[id] = a
			}
		}
		return nil
	})
}

func (r *assignmentRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.uow.write(func(s *state) error {
		a, ok := s.assignments[id]
		if !ok {
			return fmt.Errorf("assignment %s: record not found", id)
		}
		a.IsActive = active
		now := time.Now()
		a.UpdatedAt = &now
		s.assignments[id] = a
		return nil
	})
}

type iterationRepository struct {
	uow *UnitOfWork
}

func (r *iterationRepository) Create(ctx context.Context, iteration *entity.Iteration) error {
	if iteration.Id == uuid.Nil {
		iteration.Id = uuid.New()
	}
	if iteration.CreatedAt.IsZero() {
		iteration.CreatedAt = time.Now()
	}
	stored := *copyIteration(*iteration)
	return r.uow.write(func(s *state) error {
		if _, exists := s.iterations[stored.Id]; exists {
			return fmt.Errorf("%w: iteration %s exists", ErrConstraintViolation, stored.Id)
		}
		s.iterations[stored.Id] = stored
		s.iterationOrder = append(s.iterationOrder, stored.Id)
		return nil
	})
}

func (r *iterationRepository) UpdateSnapshotHandle(ctx context.Context, id uuid.UUID, handle string) error {
	return r.uow.write(func(s *state) error {
		it, ok := s.iterations[id]
		if !ok {
			return fmt.Errorf("iteration %s: record not found", id)
		}
		it.SnapshotHandle = handle
		now := time.Now()
		it.UpdatedAt = &now
		s.iterations[id] = it
		return nil
	})
}

func (r *iterationRepository) matches(it entity.Iteration, specs []specification.Specification) (bool, error) {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if it.Id != sp.ID {
				return false, nil
			}
		case specification.ByAssignmentID:
			if it.AssignmentId != sp.AssignmentID {
				return false, nil
			}
		case specification.ByIterationNumber:
			if it.Number != sp.Number {
				return false, nil
			}
		case specification.OrderBy, specification.ForUpdate:
		default:
			return false, unsupported(spec)
		}
	}
	return true, nil
}

func (r *iterationRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Iteration, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

// FindAll returns iterations ordered by assignment then number.
func (r *iterationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Iteration, error) {
	out := make([]*entity.Iteration, 0)
	err := r.uow.store.read(func(s *state) error {
		for _, id := range s.iterationOrder {
			it := s.iterations[id]
			ok, err := r.matches(it, specs)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, copyIteration(it))
			}
		}
		return nil
	})
	sortIterations(out)
	if descending(specs) {
		reverse(out)
	}
	return out, err
}

type interactionRepository struct {
	uow *UnitOfWork
}

func (r *interactionRepository) SaveAll(ctx context.Context, iterationId uuid.UUID, interactions []*entity.Interaction) error {
	if len(interactions) == 0 {
		return nil
	}
	incoming := make([]entity.Interaction, 0, len(interactions))
	for _, in := range interactions {
		in.IterationId = iterationId
		if in.Id == uuid.Nil {
			in.Id = uuid.New()
		}
		incoming = append(incoming, *in)
	}
	return r.uow.write(func(s *state) error {
		if _, ok := s.iterations[iterationId]; !ok {
			return fmt.Errorf("%w: iteration %s does not exist", ErrConstraintViolation, iterationId)
		}
		existing := s.interactions[iterationId]
		byId := make(map[uuid.UUID]bool, len(incoming))
		for _, in := range incoming {
			byId[in.Id] = true
		}
		// rows not named in the batch keep their place after the saved ones, as
		// they would when ordering by position in Postgres with ties
		merged := append([]entity.Interaction{}, incoming...)
		for _, in := range existing {
			if !byId[in.Id] {
				merged = append(merged, in)
			}
		}
		s.interactions[iterationId] = merged
		return nil
	})
}

func (r *interactionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error) {
	var iterationIds []uuid.UUID
	filterById := uuid.Nil
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByIterationID:
			iterationIds = append(iterationIds, sp.IterationID)
		case specification.ByID:
			filterById = sp.ID
		case specification.OrderBy, specification.ForUpdate:
		default:
			return nil, unsupported(spec)
		}
	}

	out := make([]*entity.Interaction, 0)
	err := r.uow.store.read(func(s *state) error {
		if len(iterationIds) == 0 {
			iterationIds = append(iterationIds, s.iterationOrder...)
		}
		for _, id := range iterationIds {
			for _, in := range s.interactions[id] {
				if filterById != uuid.Nil && in.Id != filterById {
					continue
				}
				c := in
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}
