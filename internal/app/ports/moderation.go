package ports

import (
	"context"
	"twitchbot/internal/app/domain/message"
)

type ModeratorPort interface {
	Moderate(ctx context.Context, msg message.Message) (bool, error)
}
