package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"dogschool_backend/internals/constants"
)

// GetUserIDFromToken reads the authenticated user id set by the JWT
// middleware. 401 when missing, 400 when malformed.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("user_id")
	if v == nil {
		return uuid.Nil, ErrUnauthenticated("not logged in")
	}

	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, ErrUnauthenticated("not logged in")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return uuid.Nil, ErrUnauthenticated("not logged in")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, ErrBadRequest("invalid user id in token")
		}
		return id, nil
	default:
		return uuid.Nil, ErrBadRequest("invalid user id in token")
	}
}

// GetRoleFromToken reads the role claim set by the JWT middleware.
func GetRoleFromToken(c *fiber.Ctx) string {
	if v, ok := c.Locals("role").(string); ok {
		return v
	}
	return ""
}

// RequireTrainer returns the caller's id after checking the trainer role.
func RequireTrainer(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := GetUserIDFromToken(c)
	if err != nil {
		return uuid.Nil, err
	}
	if role := GetRoleFromToken(c); role != constants.RoleTrainer && role != constants.RoleAdmin {
		return uuid.Nil, ErrUnauthorized("trainer role required")
	}
	return id, nil
}

// ErrUnauthenticated is the 401 flavor of the ownership/role guard error.
func ErrUnauthenticated(msg string) *AppError {
	return NewAppError(fiber.StatusUnauthorized, CodeUnauthorized, msg)
}
