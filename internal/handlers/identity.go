package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var errInvalidIdentity = errors.New("invalid identity")

func currentUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "", errInvalidIdentity
	}
	return userID, nil
}

func currentRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
