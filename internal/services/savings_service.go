package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

// Savings manages goals and their deposit histories. The current
// amount of a goal is always the sum of its deposits.
type Savings struct {
	repo   *storage.Repository
	events *amqp.Client
	now    func() time.Time
}

func NewSavings(repo *storage.Repository, events *amqp.Client) *Savings {
	return &Savings{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

// AddGoal registers a new goal with an empty deposit history.
func (s *Savings) AddGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	g.ID = uuid.NewString()
	g.CreatedAt = s.now()
	g.CurrentAmount = core.Money{}
	g.Deposits = nil
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	all := append(s.repo.SavingsGoals(), g)
	if err := s.repo.ReplaceSavingsGoals(ctx, all); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("save goals: %w", err)
	}
	return g, nil
}

// UpdateGoal replaces the descriptive fields of a goal. The deposit
// history and accumulated amount are preserved.
func (s *Savings) UpdateGoal(ctx context.Context, id string, g core.SavingsGoal) (core.SavingsGoal, error) {
	all := s.repo.SavingsGoals()
	for i, cur := range all {
		if cur.ID != id {
			continue
		}
		g.ID = cur.ID
		g.CreatedAt = cur.CreatedAt
		g.CurrentAmount = cur.CurrentAmount
		g.Deposits = cur.Deposits
		if err := g.Validate(); err != nil {
			return core.SavingsGoal{}, err
		}
		all[i] = g
		if err := s.repo.ReplaceSavingsGoals(ctx, all); err != nil {
			return core.SavingsGoal{}, fmt.Errorf("save goals: %w", err)
		}
		return g, nil
	}
	return core.SavingsGoal{}, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
}

func (s *Savings) DeleteGoal(ctx context.Context, id string) error {
	all := s.repo.SavingsGoals()
	for i, cur := range all {
		if cur.ID != id {
			continue
		}
		remaining := append(all[:i:i], all[i+1:]...)
		if err := s.repo.ReplaceSavingsGoals(ctx, remaining); err != nil {
			return fmt.Errorf("save goals: %w", err)
		}
		return nil
	}
	return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
}

// AddDeposit appends a positive deposit to a goal and bumps its
// current amount by the same value.
func (s *Savings) AddDeposit(ctx context.Context, goalID string, amount core.Money, date core.Date) (core.SavingsGoal, error) {
	if amount.Cents <= 0 {
		return core.SavingsGoal{}, core.ErrDepositNonPositive
	}
	if date.IsEmpty() {
		date = core.DateOf(s.now())
	}

	all := s.repo.SavingsGoals()
	for i, cur := range all {
		if cur.ID != goalID {
			continue
		}
		dep := core.Deposit{
			ID:     uuid.NewString(),
			Amount: amount,
			Date:   date,
		}
		cur.Deposits = append(cur.Deposits, dep)
		cur.CurrentAmount = cur.CurrentAmount.Add(amount)
		all[i] = cur
		if err := s.repo.ReplaceSavingsGoals(ctx, all); err != nil {
			return core.SavingsGoal{}, fmt.Errorf("save goals: %w", err)
		}
		s.publish(ctx, amqp.NewLedgerEvent(amqp.EntityDeposit, amqp.ActionAdded, dep.ID, string(core.CompetencyOf(date.Time))))
		slog.InfoContext(ctx, "Deposit added",
			"goal", cur.Name,
			"amount_cents", amount.Cents,
			"current_cents", cur.CurrentAmount.Cents)
		return cur, nil
	}
	return core.SavingsGoal{}, fmt.Errorf("goal %s: %w", goalID, core.ErrNotFound)
}

func (s *Savings) Goals() []core.SavingsGoal {
	return s.repo.SavingsGoals()
}

func (s *Savings) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"entity", event.Entity,
			"action", event.Action,
			"entity_id", event.EntityID,
			"error", err)
	}
}
