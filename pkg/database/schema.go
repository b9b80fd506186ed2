package database

import (
	"context"
	"fmt"
)

// EnsureSchema creates the advert table and its title index when they are missing.
func EnsureSchema(ctx context.Context, q Querier, dialect Dialect) error {
	for _, stmt := range dialect.SchemaStatements() {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure %s schema: %w", dialect.Name(), err)
		}
	}
	return nil
}
