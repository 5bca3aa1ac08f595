package region

import "context"

// Repository defines read access to the per-year data tables
type Repository interface {
	LoadYear(ctx context.Context, year Year) ([]Record, error)
}
