package permissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/SimoSabev/LynkSkill-sub003/internal/cache"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/metrics"
)

// ErrNoMembership is returned when the user holds no ACTIVE membership.
var ErrNoMembership = errors.New("permission: no active membership")

// Snapshot captures a user's active membership and its effective permissions.
type Snapshot struct {
	MemberID     string             `json:"member_id"`
	CompanyID    string             `json:"company_id"`
	DefaultRole  *models.MemberRole `json:"default_role,omitempty"`
	CustomRoleID *string            `json:"custom_role_id,omitempty"`
	Permissions  []Permission       `json:"permissions"`
}

// Set returns the snapshot's permissions as a Set.
func (s *Snapshot) Set() Set {
	if s == nil {
		return Set{}
	}
	return NewSet(s.Permissions...)
}

// MembershipReader loads the ACTIVE membership of a user with its custom role attached.
type MembershipReader interface {
	FindActiveByUser(ctx context.Context, userID string) (*models.CompanyMember, error)
}

// Resolver yields the effective permission snapshot for a user.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (*Snapshot, error)
}

// Invalidator drops cached snapshots after membership or role writes.
type Invalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

// StoreResolver computes snapshots straight from the membership repository.
type StoreResolver struct {
	members MembershipReader
}

// NewStoreResolver constructs a resolver backed by members.
func NewStoreResolver(members MembershipReader) *StoreResolver {
	return &StoreResolver{members: members}
}

// Resolve loads the membership and computes its effective set.
func (r *StoreResolver) Resolve(ctx context.Context, userID string) (*Snapshot, error) {
	member, err := r.members.FindActiveByUser(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoMembership
		}
		return nil, fmt.Errorf("permission: load membership: %w", err)
	}
	return SnapshotOf(member), nil
}

// SnapshotOf computes the snapshot of member.
func SnapshotOf(member *models.CompanyMember) *Snapshot {
	return &Snapshot{
		MemberID:     member.ID,
		CompanyID:    member.CompanyID,
		DefaultRole:  member.DefaultRole,
		CustomRoleID: member.CustomRoleID,
		Permissions:  GetMemberPermissions(member).Sorted(),
	}
}

const (
	cacheKeyPrefix      = "permissions:user:"
	generationKeyPrefix = "permissions:gen:"
	initialGeneration   = "0"
	defaultCacheTTL     = 5 * time.Minute
)

// CachedResolver memoises snapshots in a cache.Store and collapses concurrent loads for the same user.
// Snapshots are keyed by a per-user generation that Invalidate replaces, so a load racing an
// invalidation can only write under a generation nobody reads any more.
type CachedResolver struct {
	next          Resolver
	store         cache.Store
	ttl           time.Duration
	group         singleflight.Group
	log           *zap.Logger
	newGeneration func() string
}

// NewCachedResolver wraps next with a cache. A nil store disables caching.
func NewCachedResolver(next Resolver, store cache.Store, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedResolver{
		next:          next,
		store:         store,
		ttl:           ttl,
		log:           logger.WithModule("permissions"),
		newGeneration: uuid.NewString,
	}
}

// Resolve returns the cached snapshot or loads and stores a fresh one.
func (r *CachedResolver) Resolve(ctx context.Context, userID string) (*Snapshot, error) {
	if r.store == nil {
		return r.next.Resolve(ctx, userID)
	}

	generation, err := r.generation(ctx, userID)
	if err != nil {
		metrics.PermissionCache.WithLabelValues("error").Inc()
		r.log.Warn("permission cache read failed", zap.String("user_id", userID), zap.Error(err))
		return r.next.Resolve(ctx, userID)
	}

	key := cacheKeyPrefix + userID + ":" + generation
	if raw, ok, err := r.store.Get(ctx, key); err != nil {
		metrics.PermissionCache.WithLabelValues("error").Inc()
		r.log.Warn("permission cache read failed", zap.String("user_id", userID), zap.Error(err))
	} else if ok {
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			metrics.PermissionCache.WithLabelValues("hit").Inc()
			return &snap, nil
		}
		r.log.Warn("discarding corrupt permission cache entry", zap.String("user_id", userID))
	}
	metrics.PermissionCache.WithLabelValues("miss").Inc()

	v, err, _ := r.group.Do(key, func() (any, error) {
		snap, err := r.next.Resolve(ctx, userID)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(snap); err == nil {
			if err := r.store.Set(ctx, key, raw, r.ttl); err != nil {
				r.log.Warn("permission cache write failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate moves userIDs to a fresh generation, orphaning their cached snapshots.
func (r *CachedResolver) Invalidate(ctx context.Context, userIDs ...string) error {
	if r.store == nil || len(userIDs) == 0 {
		return nil
	}
	var errs []error
	for _, id := range userIDs {
		if err := r.store.Set(ctx, generationKeyPrefix+id, []byte(r.newGeneration()), r.generationTTL()); err != nil {
			errs = append(errs, fmt.Errorf("permission: invalidate %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (r *CachedResolver) generation(ctx context.Context, userID string) (string, error) {
	raw, ok, err := r.store.Get(ctx, generationKeyPrefix+userID)
	if err != nil {
		return "", err
	}
	if !ok || len(raw) == 0 {
		return initialGeneration, nil
	}
	return string(raw), nil
}

// generationTTL outlives every snapshot written under the generation it replaced, so an
// expired generation never revives a stale initial-generation entry.
func (r *CachedResolver) generationTTL() time.Duration {
	return 2*r.ttl + time.Minute
}

// Invalidate is a no-op for the uncached resolver.
func (r *StoreResolver) Invalidate(context.Context, ...string) error {
	return nil
}
