package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jarombrown/wardsync/internal/classify"
)

// seedFile is the on-disk format of the standard roster seed.
type seedFile struct {
	Organizations []seedOrg `json:"organizations"`
}

type seedOrg struct {
	Name         string   `json:"name"`
	DisplayOrder int      `json:"display_order"`
	Callings     []string `json:"callings"`
}

// seedStandardRoster ensures every organization and calling in the seed file
// exists, so vacant positions stay visible in the roster. Existing rows are
// never deleted; a missing seed file only skips the step. Returns the number
// of seed callings ensured.
func (e *Engine) seedStandardRoster(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			e.log("Warning: %s not found, skipping standard roster seeding", path)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	ensured := 0
	for _, org := range seed.Organizations {
		if org.Name == "" {
			continue
		}
		displayOrder := org.DisplayOrder
		if displayOrder == 0 {
			displayOrder = 50
		}
		orgID, err := e.store.EnsureOrganization(ctx, org.Name, displayOrder)
		if err != nil {
			return ensured, err
		}
		for _, title := range org.Callings {
			if _, err := e.store.EnsureCalling(ctx, orgID, title, classify.CallingDisplayOrder(title)); err != nil {
				return ensured, err
			}
			ensured++
		}
	}

	e.log("Ensured %d standard callings exist", ensured)
	return ensured, nil
}
