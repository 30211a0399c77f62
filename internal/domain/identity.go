package domain

import (
	"context"
	"time"
)

// Principal is the raw caller descriptor handed in by the auth layer.
// Some client platforms supply a durable user id, others only an email.
type Principal struct {
	// ID is the durable principal id when the platform supplies one;
	// empty otherwise.
	ID string
	// Email is always present for an authenticated caller.
	Email string
}

// Identity is a synthetic identity record keyed by email. The store assigns
// UserID on first insert; it becomes the durable principal id for callers
// whose platform does not supply one.
type Identity struct {
	Email     string    `json:"email"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IdentityRepository defines the interface for identity record storage.
//
// Get may be served by a read-through cache. GetConsistent MUST bypass any
// caching layer and read the current committed record: the resolver relies
// on it to observe the store-assigned UserID immediately after Put. If this
// read path is ever relaxed to eventual consistency the resolver fails
// loudly rather than returning a stale id.
type IdentityRepository interface {
	// Put persists the identity record for email if it does not exist yet.
	// Re-putting an existing email keeps the original UserID.
	Put(ctx context.Context, email string) error
	Get(ctx context.Context, email string) (*Identity, error)
	GetConsistent(ctx context.Context, email string) (*Identity, error)
}

// IdentityResolver maps a raw caller principal to a stable principal id.
type IdentityResolver interface {
	// Resolve returns the durable principal id for p. When p already
	// carries one it is returned unchanged without touching the store.
	Resolve(ctx context.Context, p Principal) (string, error)
}

// TokenIssuer issues bearer tokens carrying a principal. Token validation
// and issuance are an external concern; the core only consumes the
// resulting Principal.
type TokenIssuer interface {
	Issue(p Principal, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the principal it
// carries. The returned principal may lack a durable id (ID empty) but
// always has an email.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}
