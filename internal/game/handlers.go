package game

import (
	"errors"

	"backend-arquest/internal/auth"
	"backend-arquest/internal/ledger"
	"backend-arquest/internal/spawn"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		info, err := svc.CreateSession(c.Context(), auth.PlayerID(c))
		if err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(info)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		info, err := svc.Session(c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(info)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.EndSession(c.Params("id")); err != nil {
			return toHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/sensors", func(c *fiber.Ctx) error {
		var req SensorRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		status, err := svc.StartSensors(c.Context(), c.Params("id"), req)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(status)
	})

	r.Get("/:id/sensors", func(c *fiber.Ctx) error {
		status, err := svc.SensorStatus(c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(status)
	})

	r.Post("/:id/position", func(c *fiber.Ctx) error {
		var req PositionInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ack, err := svc.PushPosition(c.Params("id"), req)
		if err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(ack)
	})

	r.Post("/:id/heading", func(c *fiber.Ctx) error {
		var req HeadingInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ack, err := svc.PushHeading(c.Params("id"), req)
		if err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(ack)
	})

	r.Get("/:id/walking", func(c *fiber.Ctx) error {
		status, err := svc.Walking(c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(status)
	})

	r.Post("/:id/walking/reset", func(c *fiber.Ctx) error {
		status, err := svc.ResetWalking(c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(status)
	})

	r.Get("/:id/visible", func(c *fiber.Ctx) error {
		view, err := svc.Visible(c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(view)
	})

	r.Post("/:id/refresh", func(c *fiber.Ctx) error {
		view, err := svc.Refresh(c.Context(), c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(view)
	})

	r.Post("/:id/coins/:spawnID/lock", authMiddleware, func(c *fiber.Ctx) error {
		view, err := svc.LockCoin(c.Context(), c.Params("id"), auth.PlayerID(c), c.Params("spawnID"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(view)
	})

	r.Post("/:id/coins/:spawnID/unlock", authMiddleware, func(c *fiber.Ctx) error {
		view, err := svc.UnlockCoin(c.Context(), c.Params("id"), auth.PlayerID(c), c.Params("spawnID"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(view)
	})

	r.Post("/:id/monsters/:spawnID/capture", authMiddleware, func(c *fiber.Ctx) error {
		view, err := svc.CaptureMonster(c.Context(), c.Params("id"), auth.PlayerID(c), c.Params("spawnID"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(view)
	})

	r.Get("/:id/coins/:spawnID", func(c *fiber.Ctx) error {
		view, err := svc.Interaction(c.Params("id"), c.Params("spawnID"), spawn.CategoryCoin)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(view)
	})

	r.Get("/:id/monsters/:spawnID", func(c *fiber.Ctx) error {
		view, err := svc.Interaction(c.Params("id"), c.Params("spawnID"), spawn.CategoryMonster)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(view)
	})
}

func toHTTPError(err error) error {
	var actionErr *ledger.ActionError
	switch {
	case errors.As(err, &actionErr):
		return fiber.NewError(fiber.StatusConflict, actionErr.Message)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, spawn.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrWrongCategory), errors.Is(err, ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrLedgerUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
