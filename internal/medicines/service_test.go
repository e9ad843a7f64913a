package medicines

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	nextID    int64
	medicines map[int64]Medicine
	prices    map[int64][]Price
	params    map[int64]Params
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:    1,
		medicines: map[int64]Medicine{},
		prices:    map[int64][]Price{},
		params:    map[int64]Params{},
	}
}

func (r *memoryRepo) List(_ context.Context, _ string) ([]Medicine, error) {
	out := make([]Medicine, 0, len(r.medicines))
	for _, m := range r.medicines {
		out = append(out, m)
	}
	return out, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Medicine, error) {
	m, ok := r.medicines[id]
	if !ok {
		return Medicine{}, pgx.ErrNoRows
	}
	return m, nil
}

func (r *memoryRepo) Create(_ context.Context, m Medicine) (Medicine, error) {
	m.ID = r.nextID
	r.nextID++
	r.medicines[m.ID] = m
	return m, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, m Medicine) error {
	if _, ok := r.medicines[id]; !ok {
		return pgx.ErrNoRows
	}
	m.ID = id
	r.medicines[id] = m
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.medicines[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.medicines, id)
	return nil
}

func (r *memoryRepo) AddPrice(_ context.Context, p Price) (Price, error) {
	history := r.prices[p.MedicineID]
	for i := range history {
		history[i].IsActive = false
	}
	p.ID = r.nextID
	r.nextID++
	p.IsActive = true
	r.prices[p.MedicineID] = append(history, p)
	return p, nil
}

func (r *memoryRepo) UpsertParams(_ context.Context, p Params) (Params, error) {
	r.params[p.MedicineID] = p
	return p, nil
}

func TestServiceCreateDefaults(t *testing.T) {
	svc := NewService(newMemoryRepo())

	m, err := svc.Create(context.Background(), Medicine{Code: " AMX-500 ", CommercialName: " Amoxil "})
	require.NoError(t, err)
	require.Equal(t, "AMX-500", m.Code)
	require.Equal(t, "Amoxil", m.CommercialName)
	require.Equal(t, "comprimidos", m.DosageForm)
	require.Equal(t, "mg", m.Concentration)
	require.Equal(t, "blister", m.Packaging)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Medicine{CommercialName: "Amoxil"})
	require.ErrorIs(t, err, ErrCodeRequired)

	_, err = svc.Create(context.Background(), Medicine{Code: "AMX-500"})
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestServiceAddPrice(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	first, err := svc.AddPrice(context.Background(), 7, 75, 25, nil)
	require.NoError(t, err)
	require.InDelta(t, 100.0, first.SalePrice, 0.001)
	require.True(t, first.IsActive)

	floor := 90.0
	second, err := svc.AddPrice(context.Background(), 7, 80, 20, &floor)
	require.NoError(t, err)
	require.InDelta(t, 100.0, second.SalePrice, 0.001)
	require.NotNil(t, second.DiscountFloor)
	require.Equal(t, 90.0, *second.DiscountFloor)

	history := repo.prices[7]
	require.Len(t, history, 2)
	require.False(t, history[0].IsActive)
	require.True(t, history[1].IsActive)
}

func TestServiceAddPriceRejectsNegative(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.AddPrice(context.Background(), 7, -1, 20, nil)
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.AddPrice(context.Background(), 0, 10, 20, nil)
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestServiceSetParamsDefaults(t *testing.T) {
	svc := NewService(newMemoryRepo())

	p, err := svc.SetParams(context.Background(), 3, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultMinStock, p.MinStock)
	require.Equal(t, DefaultExpiryAlertDays, p.ExpiryAlertDays)
	require.Equal(t, DefaultIdleAlertDays, p.IdleAlertDays)

	p, err = svc.SetParams(context.Background(), 3, 5, 45, 120)
	require.NoError(t, err)
	require.Equal(t, 5, p.MinStock)
	require.Equal(t, 45, p.ExpiryAlertDays)
	require.Equal(t, 120, p.IdleAlertDays)
}
