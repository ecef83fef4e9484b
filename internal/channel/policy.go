// Package channel decides where the game may be played and which ratings each channel may show.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"go.uber.org/zap"
)

var (
	// ErrMissingMainChannel is returned when a scope is set without a main channel.
	ErrMissingMainChannel = errors.New("main channel is required")
	// ErrCorruptScopes is returned by SetScope when the stored table cannot be decoded.
	ErrCorruptScopes = errors.New("stored channel scope table is corrupt")
)

// Policy owns the per-community channel scope table.
type Policy struct {
	docs    storage.Store
	logger  *zap.Logger
	scopes  map[string]types.ChannelScope
	mu      sync.RWMutex
	writeMu sync.Mutex
}

// NewPolicy creates a policy with no configured scopes. Call Load to read the stored table.
func NewPolicy(docs storage.Store, logger *zap.Logger) *Policy {
	return &Policy{
		docs:   docs,
		logger: logger.Named("channel_policy"),
		scopes: make(map[string]types.ChannelScope),
	}
}

// Load reads the stored scope table. A missing or corrupt document leaves
// every community unrestricted; the error is only logged.
func (p *Policy) Load(ctx context.Context) {
	scopes, err := p.read(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrDocumentNotFound) {
			p.logger.Error("Failed to load channel scopes, treating all communities as unrestricted",
				zap.String("key", storage.KeyServerConfig),
				zap.Error(err))
		}

		scopes = make(map[string]types.ChannelScope)
	}

	p.mu.Lock()
	p.scopes = scopes
	p.mu.Unlock()

	p.logger.Debug("Loaded channel scopes", zap.Int("communities", len(scopes)))
}

// GetScope returns the scope of a community. A missing scope means unrestricted.
func (p *Policy) GetScope(communityID string) (types.ChannelScope, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	scope, ok := p.scopes[communityID]

	return scope, ok
}

// SetScope replaces the scope of a community and persists the table.
// An empty nsfwChannelID leaves the main channel unrestricted. The stored
// table is re-read first and a corrupt one is never overwritten.
func (p *Policy) SetScope(
	ctx context.Context, communityID, mainChannelID, nsfwChannelID string,
) (types.ChannelScope, error) {
	if mainChannelID == "" {
		return types.ChannelScope{}, ErrMissingMainChannel
	}

	if nsfwChannelID == mainChannelID {
		nsfwChannelID = ""
	}

	scope := types.ChannelScope{
		CommunityID:   communityID,
		MainChannelID: mainChannelID,
		NSFWChannelID: nsfwChannelID,
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	next, err := p.read(ctx)
	switch {
	case errors.Is(err, storage.ErrDocumentNotFound):
		next = make(map[string]types.ChannelScope)
	case errors.Is(err, ErrCorruptScopes):
		p.logger.Error("Refusing to overwrite corrupt channel scopes",
			zap.String("key", storage.KeyServerConfig),
			zap.String("communityID", communityID),
			zap.Error(err))

		return types.ChannelScope{}, err
	case err != nil:
		return types.ChannelScope{}, fmt.Errorf("failed to read channel scopes: %w", err)
	}

	next[communityID] = scope

	data, err := types.EncodeScopes(next)
	if err != nil {
		return types.ChannelScope{}, fmt.Errorf("failed to encode channel scopes: %w", err)
	}

	if err := p.docs.WriteDocument(ctx, storage.KeyServerConfig, data); err != nil {
		return types.ChannelScope{}, fmt.Errorf("failed to write channel scopes: %w", err)
	}

	p.mu.Lock()
	p.scopes = next
	p.mu.Unlock()

	p.logger.Info("Updated channel scope",
		zap.String("communityID", communityID),
		zap.String("mainChannelID", mainChannelID),
		zap.String("nsfwChannelID", nsfwChannelID))

	return scope, nil
}

// AllowedRatings returns the ratings a channel may show.
func (p *Policy) AllowedRatings(communityID, channelID string) enum.RatingSet {
	scope, ok := p.GetScope(communityID)
	if !ok {
		return enum.AllRatings()
	}

	return AllowedRatingsFor(scope, channelID)
}

// IsChannelAllowed reports whether the game may be played in a channel.
func (p *Policy) IsChannelAllowed(communityID, channelID string) bool {
	scope, ok := p.GetScope(communityID)
	if !ok {
		return true
	}

	return IsChannelInScope(scope, channelID)
}

// AllowedRatingsFor applies a configured scope to a channel. The main channel
// is limited to PG and PG-13 only while an NSFW channel is configured.
func AllowedRatingsFor(scope types.ChannelScope, channelID string) enum.RatingSet {
	switch {
	case scope.HasNSFW() && channelID == scope.NSFWChannelID:
		return enum.AllRatings()
	case channelID == scope.MainChannelID && scope.HasNSFW():
		return enum.NewRatingSet(enum.RatingPG, enum.RatingPG13)
	case channelID == scope.MainChannelID:
		return enum.AllRatings()
	default:
		return enum.NoRatings
	}
}

// IsChannelInScope reports whether the channel is one of the scope's channels.
func IsChannelInScope(scope types.ChannelScope, channelID string) bool {
	return channelID == scope.MainChannelID || (scope.HasNSFW() && channelID == scope.NSFWChannelID)
}

func (p *Policy) read(ctx context.Context) (map[string]types.ChannelScope, error) {
	data, err := p.docs.ReadDocument(ctx, storage.KeyServerConfig)
	if err != nil {
		return nil, err
	}

	scopes, err := types.DecodeScopes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptScopes, err)
	}

	return scopes, nil
}
