package core

import "context"

// Context keys for job scoped values
type contextKey string

const jobIDKey contextKey = "jobID"

// withJobID tags the context with the id of the running analysis job
func withJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// jobIDFromContext returns the job id, or empty outside a job
func jobIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(jobIDKey).(string)
	return id
}
