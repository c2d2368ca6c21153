package client

import (
	"context"
	"net/http"
)

// Rewards fetches the point balance, catalog, and past purchases.
func (c *Client) Rewards(ctx context.Context) (RewardsPage, error) {
	return call[RewardsPage](ctx, c, http.MethodGet, "/users/me/rewards", nil)
}

// Redeem exchanges points for a catalog item. Insufficient balance surfaces
// as a validation-kind APIError carrying the server's message.
func (c *Client) Redeem(ctx context.Context, rewardID ID) (RedeemResult, error) {
	return call[RedeemResult](ctx, c, http.MethodPost, "/users/me/rewards", map[string]any{"reward_id": rewardID.Uint()})
}
