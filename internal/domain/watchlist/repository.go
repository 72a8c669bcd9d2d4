package watchlist

import "context"

// Repository is the durable storage of a user's serialized watchlists.
// Reads and writes always cover the whole map: name -> Encode output.
type Repository interface {
	LoadAll(ctx context.Context, userID string) (map[string]string, error)
	SaveAll(ctx context.Context, userID string, data map[string]string) error
	Clear(ctx context.Context, userID string) error
	Health(ctx context.Context) error
}
