package http

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/fieldconv"
)

// ---- Partners ----

// GetPartnerHandler returns a single partner by ID.
func GetPartnerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Partners.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(p)
	}
}

// ListLocatedPartnersHandler lists partners that have a location.
func ListLocatedPartnersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		partners, err := deps.Partners.ListLocated(c.UserContext(), 0)
		if err != nil {
			return errFromDomain(c, err)
		}
		offset, limit := pageParams(c, 100, 500)
		return c.JSON(paginate(c, partners, offset, limit))
	}
}

// NearbyPartnersHandler returns partners within a radius of a point.
func NearbyPartnersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		center := domain.GeoPoint{Lat: c.QueryFloat("lat", 0), Lon: c.QueryFloat("lon", 0)}
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 50)

		if center.IsZero() {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}

		partners, err := deps.Partners.FindNearby(c.UserContext(), center, radius, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(partners)
	}
}

// locationRequest carries any accepted geometry shape: WKT, GeoJSON text,
// hex WKB, a GeoJSON object, or null to clear the location.
type locationRequest struct {
	Value     any  `json:"value"`
	PreferWKB bool `json:"prefer_wkb"`
}

// SetPartnerLocationHandler writes the partner location.
func SetPartnerLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req locationRequest
		dec := json.NewDecoder(bytes.NewReader(c.Body()))
		if err := dec.Decode(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		p, err := deps.Partners.SetLocation(c.UserContext(), c.Params("id"), req.Value, req.PreferWKB || c.QueryBool("wkb"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(p)
	}
}

type coordinatesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// SetPartnerCoordinatesHandler writes the legacy latitude/longitude columns.
func SetPartnerCoordinatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req coordinatesRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Latitude == nil || req.Longitude == nil {
			return errBadRequest(c, "latitude and longitude are required")
		}
		p, err := deps.Partners.SetCoordinates(c.UserContext(), c.Params("id"), *req.Latitude, *req.Longitude)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(p)
	}
}

type geolocalizeRequest struct {
	PartnerIDs []string `json:"partner_ids"`
}

// GeolocalizeHandler geocodes a batch of partners. With ?async=true the batch
// is queued and 202 is returned.
func GeolocalizeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req geolocalizeRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.PartnerIDs) == 0 {
			return errBadRequest(c, "partner_ids is required")
		}
		if len(req.PartnerIDs) > 500 {
			return errBadRequest(c, "at most 500 partners per batch")
		}

		if c.QueryBool("async") {
			if err := deps.Geolocalize.RequestAsync(c.UserContext(), req.PartnerIDs); err != nil {
				return newError(c, fiber.StatusServiceUnavailable, "unavailable", err.Error())
			}
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": len(req.PartnerIDs)})
		}

		partners, err := deps.Geolocalize.Geolocalize(c.UserContext(), req.PartnerIDs)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(partners)
	}
}

// ImportPartnersHandler loads a CSV from a multipart "file" field or the raw body.
func ImportPartnersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := fieldconv.Point
		if k := c.Query("kind"); k != "" {
			parsed, err := fieldconv.ParseFieldKind(k)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			kind = parsed
		}

		var r io.Reader
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return errBadRequest(c, "cannot open uploaded file")
			}
			defer f.Close()
			r = f
		} else {
			if len(c.Body()) == 0 {
				return errBadRequest(c, "csv body or file is required")
			}
			r = bytes.NewReader(c.Body())
		}

		res, err := deps.Imports.ImportCSV(c.UserContext(), r, kind)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ---- Layers ----

// ListRasterLayersHandler returns the raster layers of ?view= (all when empty).
func ListRasterLayersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layers, err := deps.Layers.ListRaster(c.UserContext(), c.Query("view"))
		if err != nil {
			return errFromDomain(c, err)
		}
		if layers == nil {
			layers = []domain.RasterLayer{}
		}
		return c.JSON(layers)
	}
}

// ListVectorLayersHandler returns the vector layers of ?view= (all when empty).
func ListVectorLayersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layers, err := deps.Layers.ListVector(c.UserContext(), c.Query("view"))
		if err != nil {
			return errFromDomain(c, err)
		}
		if layers == nil {
			layers = []domain.VectorLayer{}
		}
		return c.JSON(layers)
	}
}

// CreateRasterLayerHandler validates and stores a raster layer.
func CreateRasterLayerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var l domain.RasterLayer
		if err := json.Unmarshal(c.Body(), &l); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Layers.SaveRaster(c.UserContext(), &l); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	}
}

// CreateVectorLayerHandler validates and stores a vector layer.
func CreateVectorLayerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var l domain.VectorLayer
		if err := json.Unmarshal(c.Body(), &l); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Layers.SaveVector(c.UserContext(), &l); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	}
}

// LayerFeaturesHandler returns a vector layer as a GeoJSON FeatureCollection.
func LayerFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := deps.Layers.FeatureCollection(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// ---- Settings ----

type settingsBody struct {
	MapboxToken *string `json:"mapbox_token"`
}

// GetSettingsHandler returns the geoengine settings.
func GetSettingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := deps.Settings.MapboxToken(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"mapbox_token": token})
	}
}

// UpdateSettingsHandler updates the geoengine settings.
func UpdateSettingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body settingsBody
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if body.MapboxToken == nil {
			return errBadRequest(c, "mapbox_token is required")
		}
		if err := deps.Settings.SetMapboxToken(c.UserContext(), *body.MapboxToken); err != nil {
			return errFromDomain(c, err)
		}
		return GetSettingsHandler(deps)(c)
	}
}

// SessionInfoHandler returns the map bootstrap payload.
func SessionInfoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := deps.Settings.SessionInfo(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(info)
	}
}
