package store

import (
	"context"
	"strings"
	"time"

	"finflow/internal/models"
	"finflow/internal/util"

	"github.com/shopspring/decimal"
)

const defaultPriority = 5

type GoalInput struct {
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *models.Date    `json:"deadline"`
	Priority      *int            `json:"priority"`
}

type GoalPatch struct {
	Name          Optional[string]          `json:"name"`
	Description   Optional[string]          `json:"description"`
	TargetAmount  Optional[decimal.Decimal] `json:"target_amount"`
	CurrentAmount Optional[decimal.Decimal] `json:"current_amount"`
	Deadline      Optional[models.Date]     `json:"deadline"`
	Priority      Optional[int]             `json:"priority"`
}

type GoalStore struct {
	scoped[models.Goal]
	now func() time.Time
}

func (s *GoalStore) List(ctx context.Context, owner uint, p Page) ([]models.Goal, error) {
	return s.list(ctx, owner, p)
}

func (s *GoalStore) Get(ctx context.Context, owner, id uint) (*models.Goal, error) {
	return s.get(ctx, s.db, owner, id)
}

func (s *GoalStore) Create(ctx context.Context, owner uint, in GoalInput) (*models.Goal, error) {
	g := &models.Goal{
		UserID:        owner,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		Priority:      defaultPriority,
	}
	if in.Priority != nil {
		g.Priority = *in.Priority
	}
	if err := validateGoal(g); err != nil {
		return nil, err
	}
	s.markCompletion(g)
	if err := s.create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GoalStore) Update(ctx context.Context, owner, id uint, p GoalPatch) (*models.Goal, error) {
	g, err := s.get(ctx, s.db, owner, id)
	if err != nil {
		return nil, err
	}

	if err := assign("name", &g.Name, p.Name); err != nil {
		return nil, err
	}
	if err := assign("target_amount", &g.TargetAmount, p.TargetAmount); err != nil {
		return nil, err
	}
	if err := assign("current_amount", &g.CurrentAmount, p.CurrentAmount); err != nil {
		return nil, err
	}
	if err := assign("priority", &g.Priority, p.Priority); err != nil {
		return nil, err
	}
	assignPtr(&g.Description, p.Description)
	assignPtr(&g.Deadline, p.Deadline)

	g.Name = strings.TrimSpace(g.Name)
	if err := validateGoal(g); err != nil {
		return nil, err
	}
	s.markCompletion(g)
	if err := s.save(ctx, s.db, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GoalStore) Delete(ctx context.Context, owner, id uint) error {
	return s.remove(ctx, owner, id)
}

// markCompletion keeps IsCompleted equal to current >= target; CompletedAt is
// stamped on the transition and cleared when the goal falls back.
func (s *GoalStore) markCompletion(g *models.Goal) {
	done := g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	switch {
	case done && !g.IsCompleted:
		now := s.now().UTC()
		g.IsCompleted, g.CompletedAt = true, &now
	case !done:
		g.IsCompleted, g.CompletedAt = false, nil
	}
}

func validateGoal(g *models.Goal) error {
	if err := util.ValidateName(g.Name, 255); err != nil {
		return invalid("name", err)
	}
	if err := util.ValidateAmount(g.TargetAmount); err != nil {
		return invalid("target_amount", err)
	}
	if err := util.ValidateNonNegative(g.CurrentAmount); err != nil {
		return invalid("current_amount", err)
	}
	if err := util.ValidatePriority(g.Priority); err != nil {
		return invalid("priority", err)
	}
	return nil
}
