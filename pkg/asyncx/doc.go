// Package asyncx holds the retry and deadline helpers used around calls to
// external systems: store connections at startup, Google token
// verification and email dispatch.
//
//	client, err := asyncx.Retry(ctx, asyncx.RetryPolicy{Attempts: 3, Interval: 5 * time.Second},
//	    func(ctx context.Context) (*mongo.Client, error) { return connect(ctx) })
//
//	identity, err := asyncx.WithTimeout(ctx, 10*time.Second,
//	    func(ctx context.Context) (*auth.FederatedIdentity, error) { return verify(ctx) })
package asyncx
