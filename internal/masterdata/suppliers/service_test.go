package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botica-erp/botica-erp/internal/masterdata/shared"
)

type memoryRepo struct {
	nextID int64
	items  map[int64]Supplier
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, items: map[int64]Supplier{}}
}

func (r *memoryRepo) List(_ context.Context, _ shared.ListFilters) ([]Supplier, int, error) {
	out := make([]Supplier, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Supplier, error) {
	s, ok := r.items[id]
	if !ok {
		return Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) Create(_ context.Context, s Supplier) (Supplier, error) {
	s.ID = r.nextID
	r.nextID++
	r.items[s.ID] = s
	return s, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, s Supplier) error {
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

	_, err := svc.Create(context.Background(), Supplier{Name: "Farma Import"})
	require.ErrorIs(t, err, shared.ErrRequiredField)

	_, err = svc.Create(context.Background(), Supplier{Code: "SUP-01"})
	require.ErrorIs(t, err, shared.ErrRequiredField)

	created, err := svc.Create(context.Background(), Supplier{Code: " SUP-01 ", Name: " Farma Import "})
	require.NoError(t, err)
	require.Equal(t, "SUP-01", created.Code)
	require.Equal(t, "Farma Import", created.Name)
}

func TestServiceInvalidID(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrInvalidID)

	require.ErrorIs(t, svc.Delete(context.Background(), -1), shared.ErrInvalidID)
}
