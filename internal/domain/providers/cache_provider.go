package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache. A missing key is reported as ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// GetMulti retrieves several keys at once. Missing keys are absent from the result.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMulti stores several values with the same expiration
	SetMulti(ctx context.Context, items map[string][]byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}

// ErrCacheMiss is returned by Get when the key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// DepartmentDoctorsKeyPattern matches every cached department doctor list
const DepartmentDoctorsKeyPattern = "doctors:department:*"

// DepartmentDoctorsKey is the cache key of a department's doctor list
func DepartmentDoctorsKey(id entities.DepartmentID) string {
	return fmt.Sprintf("doctors:department:%d", id)
}
