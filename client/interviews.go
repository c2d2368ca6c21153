package client

import (
	"context"
	"fmt"
	"net/http"
)

// FirstQuestion fetches the account's very first dispatched question,
// creating it when signup deferred the dispatch.
func (c *Client) FirstQuestion(ctx context.Context) (Dispatch, error) {
	return call[Dispatch](ctx, c, http.MethodGet, "/interviews/first", nil)
}

// TodayQuestion fetches today's dispatched question. Idempotent per day.
func (c *Client) TodayQuestion(ctx context.Context) (Dispatch, error) {
	return call[Dispatch](ctx, c, http.MethodGet, "/interviews/me/today", nil)
}

// SubmitAnswer sends an answer to today's question and returns the scored
// result together with earned points and the streak.
func (c *Client) SubmitAnswer(ctx context.Context, answer string) (SubmitResult, error) {
	return call[SubmitResult](ctx, c, http.MethodPost, "/interviews/me/today", map[string]string{"answer": answer})
}

// Histories fetches one page of the submission history, newest first.
func (c *Client) Histories(ctx context.Context, page, pageSize int) (HistoryPage, error) {
	path := fmt.Sprintf("/interviews/me/histories?page=%d&page_size=%d", page, pageSize)
	return call[HistoryPage](ctx, c, http.MethodGet, path, nil)
}

// History fetches a single submission by ID.
func (c *Client) History(ctx context.Context, id ID) (Submission, error) {
	return call[Submission](ctx, c, http.MethodGet, "/interviews/me/histories/"+string(id), nil)
}

// Stats fetches daily submission counts for the trailing activity window.
func (c *Client) Stats(ctx context.Context) (StatsResult, error) {
	return call[StatsResult](ctx, c, http.MethodGet, "/interviews/me/stats", nil)
}
