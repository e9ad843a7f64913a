package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botica-erp/botica-erp/internal/masterdata/shared"
)

type memoryRepo struct {
	nextID int64
	items  map[int64]Customer
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, items: map[int64]Customer{}}
}

func (r *memoryRepo) List(_ context.Context, _ shared.ListFilters) ([]Customer, int, error) {
	out := make([]Customer, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Customer, error) {
	s, ok := r.items[id]
	if !ok {
		return Customer{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) Create(_ context.Context, s Customer) (Customer, error) {
	s.ID = r.nextID
	r.nextID++
	r.items[s.ID] = s
	return s, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, s Customer) error {
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	s.ID = id
	r.items[id] = s
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Customer{Name: "Botica Central"})
	require.ErrorIs(t, err, shared.ErrRequiredField)

	_, err = svc.Create(context.Background(), Customer{Code: "CLI-01"})
	require.ErrorIs(t, err, shared.ErrRequiredField)

	created, err := svc.Create(context.Background(), Customer{Code: " CLI-01 ", Name: " Botica Central "})
	require.NoError(t, err)
	require.Equal(t, "CLI-01", created.Code)
	require.Equal(t, "Botica Central", created.Name)
}

func TestServiceInvalidID(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrInvalidID)

	require.ErrorIs(t, svc.Delete(context.Background(), -1), shared.ErrInvalidID)
}
