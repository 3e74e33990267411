package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Misakait/hullwatch/models"
	"github.com/Misakait/hullwatch/services"
)

// TrackStore is the slice of the track service the handlers use.
type TrackStore interface {
	Create(ctx context.Context, in models.TrackInput) (primitive.ObjectID, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.ShipTrack, error)
	Update(ctx context.Context, id primitive.ObjectID, in models.TrackInput) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetLatest(ctx context.Context) (*models.ShipTrack, error)
	AppendAndFetch(ctx context.Context, id primitive.ObjectID, coords [][2]float64) (*models.ShipTrack, error)
}

type TrackController struct {
	store TrackStore
}

func NewTrackController(store TrackStore) *TrackController {
	return &TrackController{store: store}
}

func (tc *TrackController) HandleCreate(c *fiber.Ctx) error {
	var in models.TrackInput
	if err := c.BodyParser(&in); err != nil {
		return badReq(c, "invalid JSON")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	id, err := tc.store.Create(ctx, in)
	if err != nil {
		return serverErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.CreateResp{OK: true, ID: id.Hex()})
}

func (tc *TrackController) HandleGet(c *fiber.Ctx) error {
	id, ok := objectID(c)
	if !ok {
		return badReq(c, "invalid track id")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	track, err := tc.store.Get(ctx, id)
	if err != nil {
		return serverErr(c, err)
	}
	return c.JSON(track)
}

func (tc *TrackController) HandleUpdate(c *fiber.Ctx) error {
	id, ok := objectID(c)
	if !ok {
		return badReq(c, "invalid track id")
	}
	var in models.TrackInput
	if err := c.BodyParser(&in); err != nil {
		return badReq(c, "invalid JSON")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	if err := tc.store.Update(ctx, id, in); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c)
		}
		return serverErr(c, err)
	}
	return c.JSON(models.OKResp{OK: true})
}

func (tc *TrackController) HandleDelete(c *fiber.Ctx) error {
	id, ok := objectID(c)
	if !ok {
		return badReq(c, "invalid track id")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	if err := tc.store.Delete(ctx, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c)
		}
		return serverErr(c, err)
	}
	return c.JSON(models.OKResp{OK: true})
}

func (tc *TrackController) HandleLatest(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	track, err := tc.store.GetLatest(ctx)
	if err != nil {
		return serverErr(c, err)
	}
	return c.JSON(track)
}

// HandleAppend appends a coordinate batch to a track and responds with the
// post-update document. An unknown id is a 404, not a server error.
func (tc *TrackController) HandleAppend(c *fiber.Ctx) error {
	id, ok := objectID(c)
	if !ok {
		return badReq(c, "invalid track id")
	}
	var in models.AppendPointsInput
	if err := c.BodyParser(&in); err != nil {
		return badReq(c, "invalid JSON")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	track, err := tc.store.AppendAndFetch(ctx, id, in.Coordinates)
	if err != nil {
		return serverErr(c, err)
	}
	if track == nil {
		return notFound(c)
	}
	return c.JSON(track)
}
