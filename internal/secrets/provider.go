// Package secrets isolates how sensitive values reach the process.
//
// The Provider interface is the seam to whatever secret store the deployment
// uses. Absence of a secret is reported in-band (found=false), never as an
// error — only transport/store failures are errors. The bundle loader on top
// of this decides that absence is fatal.
package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider fetches named secret values.
type Provider interface {
	// Get returns the value for name. found is false when the store has no
	// such secret; err is reserved for store/transport failures.
	Get(ctx context.Context, name string) (value string, found bool, err error)

	// GetMany resolves several names in one call where the backing store
	// supports batching. Results are positional: result[i] corresponds to
	// names[i].
	GetMany(ctx context.Context, names []string) ([]Lookup, error)
}

// Lookup is one result of a batched secret fetch.
type Lookup struct {
	Name  string
	Value string
	Found bool
}

// EnvProvider reads secrets from environment variables. Secret names are
// mapped to variable names by uppercasing and replacing separators, so
// "github-oauth-client-secret" resolves from GITHUB_OAUTH_CLIENT_SECRET.
type EnvProvider struct{}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

func (p *EnvProvider) Get(_ context.Context, name string) (string, bool, error) {
	v, ok := os.LookupEnv(envKey(name))
	return v, ok && v != "", nil
}

func (p *EnvProvider) GetMany(ctx context.Context, names []string) ([]Lookup, error) {
	return getManyViaGet(ctx, p, names)
}

func envKey(name string) string {
	r := strings.NewReplacer("-", "_", "/", "_", ".", "_")
	return strings.ToUpper(r.Replace(name))
}

// FileProvider reads secrets from files in a directory, one file per secret
// (e.g. <dir>/github-oauth-client-secret.txt). This is the local-development
// store; values are trimmed of surrounding whitespace.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

func (p *FileProvider) Get(_ context.Context, name string) (string, bool, error) {
	path := filepath.Join(p.dir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("secrets: reading %s: %w", path, err)
	}
	v := strings.TrimSpace(string(data))
	return v, v != "", nil
}

func (p *FileProvider) GetMany(ctx context.Context, names []string) ([]Lookup, error) {
	return getManyViaGet(ctx, p, names)
}

// getManyViaGet implements batching for providers whose store has no native
// batch call.
func getManyViaGet(ctx context.Context, p Provider, names []string) ([]Lookup, error) {
	out := make([]Lookup, 0, len(names))
	for _, name := range names {
		v, found, err := p.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, Lookup{Name: name, Value: v, Found: found})
	}
	return out, nil
}
