package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/pkg/logger"
	"rpc-gateway.backend/pkg/redis"
)

var (
	redisGet = redis.Get
	redisSet = redis.Set
)

// l1MaxEntries bounds the process-local cache. Project ids are
// caller-supplied, so the L1 must not grow with the number of distinct ids
// seen; past the bound the least recently used entry is evicted.
const l1MaxEntries = 10000

type l1Entry struct {
	cached    entities.CachedProject
	expiresAt time.Time
}

// Authorizer validates project ids against the registry through a two-tier
// cache: a process-local LRU in front of Redis in front of the registry.
// Positive and negative answers are cached with the same TTL; registry
// transport failures are never cached.
type Authorizer struct {
	registry RegistryClient
	ttl      time.Duration
	l1       *lru.Cache[string, l1Entry]

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewAuthorizer builds the authorizer.
func NewAuthorizer(registry RegistryClient, ttl time.Duration) *Authorizer {
	l1, err := lru.New[string, l1Entry](l1MaxEntries)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &Authorizer{
		registry: registry,
		ttl:      ttl,
		l1:       l1,
		now:      time.Now,
	}
}

// Validate admits or rejects a project id. Reject reasons map to the
// outward taxonomy at the engine boundary.
func (a *Authorizer) Validate(ctx context.Context, projectID string) (*entities.ProjectData, error) {
	if projectID == "" {
		return nil, domainerrors.BadRequestField("projectId", "projectId query parameter is required")
	}

	cached, err := a.lookup(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return a.admit(cached)
}

// AllowedOrigins returns the project's configured origin patterns, or nil
// when the project has no restriction.
func (a *Authorizer) AllowedOrigins(ctx context.Context, projectID string) ([]string, error) {
	data, err := a.Validate(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return data.AllowedOrigins, nil
}

func (a *Authorizer) admit(cached *entities.CachedProject) (*entities.ProjectData, error) {
	switch {
	case cached.NotFound:
		return nil, domainerrors.Unauthorized("We failed to authenticate your request")
	case cached.Invalid:
		return nil, domainerrors.Unauthorized("Project is misconfigured, check your dashboard")
	case cached.Data == nil:
		return nil, domainerrors.InternalError(errors.New("empty cached project entry"))
	case !cached.Data.IsEnabled:
		return nil, domainerrors.Unauthorized("Project is disabled")
	case cached.Data.QuotaExceeded():
		return nil, domainerrors.QuotaExceeded()
	}
	return cached.Data, nil
}

func (a *Authorizer) lookup(ctx context.Context, projectID string) (*entities.CachedProject, error) {
	if cached, ok := a.l1Get(projectID); ok {
		return cached, nil
	}

	key := "project:" + projectID
	if val, err := redisGet(ctx, key); err == nil {
		var cached entities.CachedProject
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			a.l1Set(projectID, cached)
			return &cached, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		logger.Warn(ctx, "project cache read failed", zap.Error(err))
	}

	data, err := a.registry.FetchProject(ctx, projectID)
	cached := entities.CachedProject{FetchedAt: a.now()}
	switch {
	case err == nil:
		cached.Data = data
	case errors.Is(err, domainerrors.ErrProjectNotFound):
		cached.NotFound = true
	case errors.Is(err, domainerrors.ErrInvalidInput):
		cached.Invalid = true
	default:
		// Transport failure: do not cache, fail closed.
		return nil, domainerrors.Unauthorized("We failed to authenticate your request")
	}

	a.l1Set(projectID, cached)
	if blob, err := json.Marshal(cached); err == nil {
		if err := redisSet(ctx, key, string(blob), a.ttl); err != nil {
			logger.Warn(ctx, "project cache write failed", zap.Error(err))
		}
	}
	return &cached, nil
}

func (a *Authorizer) l1Get(projectID string) (*entities.CachedProject, bool) {
	entry, ok := a.l1.Get(projectID)
	if !ok {
		return nil, false
	}
	if a.now().After(entry.expiresAt) {
		a.l1.Remove(projectID)
		return nil, false
	}
	cached := entry.cached
	return &cached, true
}

func (a *Authorizer) l1Set(projectID string, cached entities.CachedProject) {
	a.l1.Add(projectID, l1Entry{cached: cached, expiresAt: a.now().Add(a.ttl)})
}

// ConstantTimeEqual compares a caller-supplied id against a configured
// secret without leaking the mismatch position. An empty configured value
// never matches.
func ConstantTimeEqual(supplied, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(configured)) == 1
}
