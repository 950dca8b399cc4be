package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"stokvel/internal/core"
	"stokvel/internal/ledger"
)

// Store is an in-memory goal collection guarded by a mutex. It hands out
// deep copies so callers can apply contributions without racing the
// store, and ReplaceGoal swaps a whole goal value back in.
type Store struct {
	mu    sync.Mutex
	goals map[int64]core.Goal
	order []int64
}

func New(goals []core.Goal) *Store {
	s := &Store{goals: make(map[int64]core.Goal, len(goals))}
	for _, g := range goals {
		if _, dup := s.goals[g.ID]; dup {
			continue
		}
		s.goals[g.ID] = g.Clone()
		s.order = append(s.order, g.ID)
	}
	return s
}

// NewFromFile seeds the store from a goals JSON document. A missing file
// yields an empty store rather than an error, matching the demo-data
// seeding behavior.
func NewFromFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	goals, err := parseGoals(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return New(goals), nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Goal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.goals[id].Clone())
	}
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, id int64) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, ledger.ErrGoalNotFound
	}
	return g.Clone(), nil
}

// ReplaceGoal stores the new goal value, inserting it when the id is new.
func (s *Store) ReplaceGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("replace goal %d: %w", g.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; !ok {
		s.order = append(s.order, g.ID)
		sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
	}
	s.goals[g.ID] = g.Clone()
	return nil
}

// seed document shapes: amounts are plain decimal numbers, dates are ISO
// strings, absent completedDate/category/priority stay zero.
type (
	seedGoal struct {
		ID            int64             `json:"id"`
		Name          string            `json:"name"`
		Target        float64           `json:"target"`
		Current       float64           `json:"current"`
		Deadline      string            `json:"deadline"`
		Status        string            `json:"status"`
		Participants  []seedParticipant `json:"participants"`
		Contributions []seedContrib     `json:"contributions"`
		CreatedDate   string            `json:"createdDate"`
		CompletedDate string            `json:"completedDate"`
		Category      string            `json:"category"`
		Priority      string            `json:"priority"`
	}

	seedParticipant struct {
		Name   string `json:"name"`
		Role   string `json:"role"`
		Avatar string `json:"avatar"`
	}

	seedContrib struct {
		ID     int64   `json:"id"`
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}
)

func parseGoals(raw []byte) ([]core.Goal, error) {
	var seeds []seedGoal
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, err
	}
	goals := make([]core.Goal, 0, len(seeds))
	for _, sg := range seeds {
		g := core.Goal{
			ID:       sg.ID,
			Name:     sg.Name,
			Target:   toMoney(sg.Target),
			Current:  toMoney(sg.Current),
			Status:   core.GoalStatus(sg.Status),
			Category: sg.Category,
			Priority: sg.Priority,
		}
		var err error
		if g.Deadline, err = parseDate(sg.Deadline); err != nil {
			return nil, fmt.Errorf("goal %d deadline: %w", sg.ID, err)
		}
		if g.CreatedDate, err = parseDate(sg.CreatedDate); err != nil {
			return nil, fmt.Errorf("goal %d createdDate: %w", sg.ID, err)
		}
		if g.CompletedDate, err = parseDate(sg.CompletedDate); err != nil {
			return nil, fmt.Errorf("goal %d completedDate: %w", sg.ID, err)
		}
		for _, sp := range sg.Participants {
			g.Participants = append(g.Participants, core.Participant{
				Name: sp.Name, Role: sp.Role, Avatar: sp.Avatar,
			})
		}
		for _, sc := range sg.Contributions {
			c := core.Contribution{ID: sc.ID, Name: sc.Name, Amount: toMoney(sc.Amount)}
			if c.Date, err = parseDate(sc.Date); err != nil {
				return nil, fmt.Errorf("goal %d contribution %d: %w", sg.ID, sc.ID, err)
			}
			g.Contributions = append(g.Contributions, c)
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func toMoney(rands float64) core.Money {
	return core.Money{Cents: int64(math.Round(rands * 100))}
}
