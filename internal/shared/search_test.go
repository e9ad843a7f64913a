package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldSearchTerm(t *testing.T) {
	cases := map[string]string{
		"  Ibuprofeno ": "ibuprofeno",
		"Acetaminofén":  "acetaminofen",
		"AMOXICILINA":   "amoxicilina",
		"ácido fólico":  "acido folico",
		"":              "",
	}
	for in, want := range cases {
		require.Equal(t, want, FoldSearchTerm(in))
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0, 45)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 20, p.PerPage)
	require.Equal(t, 3, p.TotalPages)

	p = NewPagination(2, 10, 45)
	require.Equal(t, 5, p.TotalPages)
}
