package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/classdesk/classdesk-api/internal/service"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// identityFromContext reads the resolved caller identity bound by the JWT
// middleware. An empty ID means the request is unauthenticated.
func identityFromContext(c *fiber.Ctx) service.Identity {
	identity := service.Identity{}
	if id, ok := c.Locals("user_id").(string); ok {
		identity.ID = id
	}
	if role, ok := c.Locals("user_role").(string); ok {
		identity.Role = role
	}
	return identity
}
