package membership

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresResolver looks up product-group membership in the contract store
type PostgresResolver struct {
	db *pgxpool.Pool
}

// NewPostgresResolver creates a resolver backed by the contract store pool
func NewPostgresResolver(db *pgxpool.Pool) *PostgresResolver {
	return &PostgresResolver{db: db}
}

// ListContractIDs returns the contracts currently assigned to the group.
// Zero rows is a valid empty group; query failures wrap ErrUnavailable.
func (r *PostgresResolver) ListContractIDs(ctx context.Context, productGroup string) ([]string, error) {
	query := `
		SELECT contract_id
		FROM contracts.product_group_members
		WHERE product_group = $1
		ORDER BY contract_id
	`

	rows, err := r.db.Query(ctx, query, productGroup)
	if err != nil {
		return nil, fmt.Errorf("%w: query members of %q: %v", ErrUnavailable, productGroup, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan member of %q: %v", ErrUnavailable, productGroup, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read members of %q: %v", ErrUnavailable, productGroup, err)
	}

	return ids, nil
}
