package tradev1

import "context"

// Publisher emits executed trades downstream.
type Publisher interface {
	PublishTrade(ctx context.Context, event *TradeEvent) error
}
