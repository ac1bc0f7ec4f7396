package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbarrio/automod/internal/model"
	"github.com/openbarrio/automod/internal/store"
)

// CanModerate reports whether userID may moderate communityID. The
// community owner always can, membership or not. Anyone else needs an
// owner or moderator membership with the can_moderate flag set.
func (s *Service) CanModerate(ctx context.Context, userID, communityID string) (bool, error) {
	community, err := s.store.GetCommunity(ctx, communityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading community %s: %w", communityID, err)
	}
	if community.OwnerID == userID {
		return true, nil
	}

	member, err := s.store.GetMember(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading membership: %w", err)
	}
	if member.IsBanned {
		return false, nil
	}
	switch member.Role {
	case model.RoleOwner, model.RoleModerator:
		return member.CanModerate, nil
	}
	return false, nil
}
