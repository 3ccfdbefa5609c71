package context

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// KeyUserID is the key for storing the authenticated user ID.
const KeyUserID ContextKey = "user_id"

// SetUserID stores the authenticated user in echo.Context and in the request context.
func SetUserID(c echo.Context, userID uuid.UUID) {
	c.Set(string(KeyUserID), userID)
	c.SetRequest(c.Request().WithContext(WithUserID(c.Request().Context(), userID)))
}

// GetUserID returns the authenticated user set by the auth middleware.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(string(KeyUserID)).(uuid.UUID)

	return userID, ok && userID != uuid.Nil
}

// WithUserID returns a new context carrying userID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, KeyUserID, userID)
}

// GetUserIDFromContext extracts the user ID from standard context.Context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return valueOf[uuid.UUID](ctx, KeyUserID)
}
