package client

import (
	"context"
	"net/http"
)

// Feedback fetches the stored rubric feedback for one submission.
func (c *Client) Feedback(ctx context.Context, submissionID ID) (Feedback, error) {
	return call[Feedback](ctx, c, http.MethodGet, "/evaluation/feedback/"+string(submissionID), nil)
}

// RegenerateFeedback re-runs the evaluation for one submission and returns
// the refreshed breakdown. Earned points are unaffected.
func (c *Client) RegenerateFeedback(ctx context.Context, submissionID ID) (Feedback, error) {
	return call[Feedback](ctx, c, http.MethodPost, "/evaluation/feedback/"+string(submissionID), nil)
}
