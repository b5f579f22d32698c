package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnez/pkg/utils"
)

// mapDBError translates gorm errors into the service error taxonomy.
func mapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", utils.ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", utils.ErrDatabaseError, op, err)
}

// parseID treats malformed ids as unknown records.
func parseID(kind, id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", utils.ErrNotFound, kind, id)
	}
	return parsed, nil
}
