package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memory.Store
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{store: memory.NewStore(), ctx: context.Background()}
}

func (f *fixture) user(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: email, Email: email, PasswordHash: "hash", Role: role}
	_, err := f.store.Users().Create(f.ctx, u)
	require.NoError(t, err)
	return u
}

// managed creates a trainer with one customer already linked.
func (f *fixture) managed(t *testing.T) (trainer, customer *domain.User) {
	t.Helper()
	trainer = f.user(t, "coach@example.com", domain.RoleTrainer)
	customer = f.user(t, "jane.roe@example.com", domain.RoleCustomer)
	require.NoError(t, f.store.Users().AddCustomerToTrainer(f.ctx, trainer.ID, customer.ID))
	require.NoError(t, f.store.Users().SetTrainerForCustomer(f.ctx, customer.ID, trainer.ID))
	return trainer, customer
}

func actorOf(u *domain.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }

// fakeStorage records objects in memory.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) PutObject(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://files.test/%s?expires=%d", key, int(expires.Seconds())), nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
