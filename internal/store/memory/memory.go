// Package memory provides an in-process store implementation used by
// the memory backend and as a substitute in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

type avatar struct {
	name string
	data []byte
}

type Store struct {
	mu       sync.Mutex
	txs      []core.Transaction
	profiles map[uuid.UUID]store.Profile
	avatars  map[uuid.UUID]avatar
}

func New() *Store {
	return &Store{
		profiles: make(map[uuid.UUID]store.Profile),
		avatars:  make(map[uuid.UUID]avatar),
	}
}

// Seed inserts transactions without validation ordering guarantees;
// intended for tests and local development.
func (s *Store) Seed(txs ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, txs...)
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	s.txs = append(s.txs, tx)
	return nil
}

func (s *Store) FetchTransactions(_ context.Context, ownerID uuid.UUID, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.OwnerID != ownerID {
			continue
		}
		if !f.From.IsZero() && tx.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !tx.Date.Before(f.To) {
			continue
		}
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		out = append(out, tx)
	}
	sortByDate(out)
	return out, nil
}

func (s *Store) FetchAllTransactions(ctx context.Context, ownerID uuid.UUID) ([]core.Transaction, error) {
	return s.FetchTransactions(ctx, ownerID, store.TransactionFilter{})
}

func (s *Store) FetchRecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.Transaction, error) {
	all, err := s.FetchAllTransactions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	// Most recent first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) CreateProfile(_ context.Context, p *store.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return store.ErrDuplicateEmail
		}
	}
	if p.UserID == uuid.Nil {
		p.UserID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[p.UserID] = *p
	return nil
}

func (s *Store) GetProfile(_ context.Context, userID uuid.UUID) (store.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return store.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetProfileByEmail(_ context.Context, email string) (store.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return store.Profile{}, store.ErrNotFound
}

func (s *Store) UpdateProfile(_ context.Context, p store.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.profiles[p.UserID]
	if !ok {
		return store.ErrNotFound
	}
	existing.FullName = p.FullName
	existing.Phone = p.Phone
	existing.AvatarName = p.AvatarName
	existing.UpdatedAt = time.Now().UTC()
	s.profiles[p.UserID] = existing
	return nil
}

func (s *Store) SaveAvatar(_ context.Context, userID uuid.UUID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatars[userID] = avatar{name: name, data: append([]byte(nil), data...)}
	return nil
}

func (s *Store) GetAvatar(_ context.Context, userID uuid.UUID) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.avatars[userID]
	if !ok {
		return "", nil, store.ErrNotFound
	}
	return a.name, append([]byte(nil), a.data...), nil
}

func (s *Store) DeleteAvatar(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.avatars, userID)
	return nil
}

func (s *Store) Close() error { return nil }

// sortByDate orders transactions by date, breaking ties with the
// creation timestamp so the order is stable for a given input.
func sortByDate(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.Before(txs[j].Date.Time)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
}
