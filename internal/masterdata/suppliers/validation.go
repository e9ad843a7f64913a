package suppliers

import (
	"fmt"
	"strings"

	"github.com/botica-erp/botica-erp/internal/masterdata/shared"
)

func (s *Service) validate(sup *Supplier) error {
	sup.Code = strings.TrimSpace(sup.Code)
	sup.Name = strings.TrimSpace(sup.Name)
	if sup.Code == "" {
		return fmt.Errorf("supplier code: %w", shared.ErrRequiredField)
	}
	if sup.Name == "" {
		return fmt.Errorf("supplier name: %w", shared.ErrRequiredField)
	}
	return nil
}
