package agent

import "context"

type Repository interface {
	Seed(ctx context.Context, as []Agent) error
	List(ctx context.Context) ([]Agent, error)
	ListByGuild(ctx context.Context, guildID string) ([]Agent, error)
	Get(ctx context.Context, id ID) (Agent, bool, error)
	Update(ctx context.Context, a Agent) (Agent, error)
}
