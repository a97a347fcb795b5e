package auth

import "context"

// SetClaimsForTest injects viewer claims into the context for testing purposes.
func SetClaimsForTest(ctx context.Context, viewerID, tournamentID string) context.Context {
	return context.WithValue(ctx, claimsKey, &Claims{ViewerID: viewerID, Tournament: tournamentID})
}
