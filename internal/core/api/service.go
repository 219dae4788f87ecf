// Package api provides gRPC service implementations for the maskfold
// projection API.
package api

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/mwrona/maskfold/internal/core/config"
	"github.com/mwrona/maskfold/internal/core/db"
	"github.com/mwrona/maskfold/internal/mask"
)

// ProjectionAPIService implements the ProjectionAPIServer interface.
// Thin orchestration layer delegating to auth, mask, and database packages.
type ProjectionAPIService struct {
	db      *sqlx.DB
	queries *db.Queries
	cfg     *config.ProjectionAPIConfig

	// Decoded templates cached per tenant and resource. Cached nodes are
	// read-only once stored; ComposeWithTemplate clones before composing.
	cacheMu sync.RWMutex
	cache   map[string]*mask.Node
}

// NewProjectionAPIService creates service instance with dependencies.
func NewProjectionAPIService(database *sqlx.DB, queries *db.Queries, cfg *config.ProjectionAPIConfig) (*ProjectionAPIService, error) {
	if database == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if queries == nil {
		return nil, fmt.Errorf("queries cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}

	return &ProjectionAPIService{
		db:      database,
		queries: queries,
		cfg:     cfg,
		cache:   make(map[string]*mask.Node),
	}, nil
}

// cacheKey namespaces cached templates per tenant.
func cacheKey(tenantID, resource string) string {
	return tenantID + "\x00" + resource
}

func (s *ProjectionAPIService) cachedTemplate(tenantID, resource string) *mask.Node {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache[cacheKey(tenantID, resource)]
}

func (s *ProjectionAPIService) storeTemplate(tenantID, resource string, n *mask.Node) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache[cacheKey(tenantID, resource)] = n
}

func (s *ProjectionAPIService) invalidateTemplate(tenantID, resource string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.cache, cacheKey(tenantID, resource))
}
