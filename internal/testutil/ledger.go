package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/models"
	"github.com/google/uuid"
)

// FakeLedger is an in-memory creation ledger.
type FakeLedger struct {
	CreateErr error

	mu        sync.Mutex
	creations map[uuid.UUID]*models.Creation
	clock     time.Time
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{creations: make(map[uuid.UUID]*models.Creation), clock: time.Unix(1700000000, 0)}
}

func (l *FakeLedger) CreateCreation(ctx context.Context, c *models.Creation) (*models.Creation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.CreateErr != nil {
		return nil, l.CreateErr
	}

	cp := *c
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.Likes == nil {
		cp.Likes = []string{}
	}
	// Strictly increasing timestamps keep newest-first ordering deterministic.
	l.clock = l.clock.Add(time.Second)
	cp.CreatedAt, cp.UpdatedAt = l.clock, l.clock
	l.creations[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (l *FakeLedger) GetCreation(ctx context.Context, id uuid.UUID) (*models.Creation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.creations[id]
	if !ok {
		return nil, apperr.NotFound("Creation not found")
	}
	out := *c
	out.Likes = append([]string(nil), c.Likes...)
	return &out, nil
}

func (l *FakeLedger) ListByUser(ctx context.Context, userID string) ([]models.Creation, error) {
	return l.filter(func(c *models.Creation) bool { return c.UserID == userID }), nil
}

func (l *FakeLedger) ListPublished(ctx context.Context) ([]models.Creation, error) {
	return l.filter(func(c *models.Creation) bool { return c.Publish }), nil
}

func (l *FakeLedger) filter(keep func(*models.Creation) bool) []models.Creation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []models.Creation{}
	for _, c := range l.creations {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (l *FakeLedger) ToggleLike(ctx context.Context, id uuid.UUID, userID string) (*models.Creation, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.creations[id]
	if !ok {
		return nil, false, apperr.NotFound("Creation not found")
	}
	liked := c.ToggleLike(userID)
	out := *c
	return &out, liked, nil
}

func (l *FakeLedger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.creations)
}

// FakeText records the last completion request.
type FakeText struct {
	Reply string
	Err   error

	mu        sync.Mutex
	calls     int
	Prompt    string
	MaxTokens int
}

func (f *FakeText) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.Prompt, f.MaxTokens = prompt, maxTokens
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

func (f *FakeText) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakePublisher records broadcast events.
type FakePublisher struct {
	Err error

	mu      sync.Mutex
	Created []*models.Creation
	Liked   []bool
}

func (p *FakePublisher) PublishCreation(ctx context.Context, c *models.Creation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Created = append(p.Created, c)
	return p.Err
}

func (p *FakePublisher) PublishLike(ctx context.Context, c *models.Creation, liked bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Liked = append(p.Liked, liked)
	return p.Err
}
