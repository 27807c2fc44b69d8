package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/db/repositories"
)

// GifterResolver turns the free-form gifter input of the subscription form
// into a user id.
type GifterResolver struct {
	users *repositories.UserRepositoryGORM
}

func NewGifterResolver(users *repositories.UserRepositoryGORM) *GifterResolver {
	return &GifterResolver{users: users}
}

// Resolve accepts a numeric user id or a username. Blank input means no
// gifter. Both paths verify the user exists and differs from the recipient.
func (r *GifterResolver) Resolve(ctx context.Context, raw string, recipientID int64) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var gifterID int64
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		user, err := r.users.GetByID(ctx, id)
		if err != nil {
			return nil, fromRepo(err, constants.MsgGifterNotFound)
		}
		gifterID = user.ID
	} else {
		user, err := r.users.GetByUsername(ctx, raw)
		if err != nil {
			return nil, fromRepo(err, constants.MsgGifterNotFound)
		}
		gifterID = user.ID
	}

	if gifterID == recipientID {
		return nil, errConflict("gifter", constants.MsgGiftSelf, gifterID)
	}
	return &gifterID, nil
}
