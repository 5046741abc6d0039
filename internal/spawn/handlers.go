package spawn

import (
	"strconv"

	"backend-arquest/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, catalog *Catalog) {
	r.Get("/", func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lng") == "" {
			return c.JSON(catalog.All())
		}
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid lat")
		}
		lng, err := strconv.ParseFloat(c.Query("lng"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid lng")
		}
		radius, _ := strconv.ParseFloat(c.Query("radius_m"), 64)
		if radius <= 0 {
			radius = 1000
		}
		return c.JSON(catalog.Within(geo.Point{Lat: lat, Lng: lng}, radius))
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		obj, err := catalog.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "spawn not found")
		}
		return c.JSON(obj)
	})
}
