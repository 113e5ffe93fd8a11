package guild

import "context"

type Repository interface {
	Seed(ctx context.Context, gs []Guild) error
	List(ctx context.Context) ([]Guild, error)
	Get(ctx context.Context, id string) (Guild, bool, error)
	Update(ctx context.Context, g Guild) (Guild, error)
}
