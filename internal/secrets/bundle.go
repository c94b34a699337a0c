package secrets

import (
	"context"
	"fmt"
	"sync"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
)

// Bundle is the complete set of sensitive values the service needs. Once
// constructed, every field is non-empty; a partial bundle is never exposed.
// The bundle is immutable for the lifetime of the process — there is no
// refresh or rotation path short of a restart.
type Bundle struct {
	GitHubClientSecret string
	DatabaseUsername   string
	DatabasePassword   string
	JWTSigningKey      string
}

// Loader fetches the Bundle from a Provider at most once per process.
//
// Load may be called from any number of goroutines; sync.Once guarantees a
// single provider round trip and a single result shared by all callers.
// A failed load is also cached: the process is expected to treat it as fatal
// at boot, not to retry per-request.
type Loader struct {
	provider Provider
	names    []string // github oauth secret, db username, db password, jwt key

	once   sync.Once
	bundle Bundle
	err    error
}

// NewLoader creates a Loader requesting the four named secrets, in order:
// GitHub OAuth client secret, database username, database password, JWT
// signing key.
func NewLoader(provider Provider, names []string) (*Loader, error) {
	if len(names) != 4 {
		return nil, fmt.Errorf("secrets: loader needs exactly 4 secret names, got %d: %w",
			len(names), apperror.ErrConfiguration)
	}
	return &Loader{provider: provider, names: names}, nil
}

// Load returns the cached Bundle, fetching it on first call.
func (l *Loader) Load(ctx context.Context) (Bundle, error) {
	l.once.Do(func() {
		l.bundle, l.err = l.fetch(ctx)
	})
	return l.bundle, l.err
}

// fetch performs the one batched provider round trip and builds the bundle
// atomically: any absent secret fails the whole load.
func (l *Loader) fetch(ctx context.Context) (Bundle, error) {
	results, err := l.provider.GetMany(ctx, l.names)
	if err != nil {
		return Bundle{}, fmt.Errorf("secrets: fetching bundle: %w", err)
	}
	if len(results) != len(l.names) {
		return Bundle{}, fmt.Errorf("secrets: provider returned %d results for %d names: %w",
			len(results), len(l.names), apperror.ErrConfiguration)
	}

	var missing []string
	for _, r := range results {
		if !r.Found || r.Value == "" {
			missing = append(missing, r.Name)
		}
	}
	if len(missing) > 0 {
		return Bundle{}, apperror.MissingSecrets(missing)
	}

	return Bundle{
		GitHubClientSecret: results[0].Value,
		DatabaseUsername:   results[1].Value,
		DatabasePassword:   results[2].Value,
		JWTSigningKey:      results[3].Value,
	}, nil
}
