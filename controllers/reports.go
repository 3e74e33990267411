package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Misakait/hullwatch/models"
	"github.com/Misakait/hullwatch/services"
)

// ReportStore is the slice of the report service the handlers use.
type ReportStore interface {
	Insert(ctx context.Context, in models.ReportInput, photoPaths []string) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error)
	GetLatest(ctx context.Context) (*models.Report, error)
	GetAll(ctx context.Context) ([]models.Report, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAll(ctx context.Context) (int64, error)
}

// Scheduler hands a freshly created report to the background enricher.
type Scheduler interface {
	Enqueue(reportID primitive.ObjectID, rust, covering, damage float64)
}

// BlobSaver persists uploaded images and returns their stored paths.
type BlobSaver interface {
	Save(originalName string, src io.Reader) (string, error)
}

type ReportController struct {
	store  ReportStore
	enrich Scheduler
	blobs  BlobSaver
}

func NewReportController(store ReportStore, enrich Scheduler, blobs BlobSaver) *ReportController {
	return &ReportController{store: store, enrich: enrich, blobs: blobs}
}

// HandleCreate accepts either a JSON body or a multipart form with photo
// attachments. All images are stored before the document is written, so a
// failed upload never leaves a report pointing at missing files. The response
// goes out as soon as the insert lands; enrichment runs behind it.
func (rc *ReportController) HandleCreate(c *fiber.Ctx) error {
	ct := c.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		return rc.createJSON(c)
	}
	if strings.HasPrefix(ct, "multipart/form-data") {
		return rc.createMultipart(c)
	}
	return c.Status(fiber.StatusUnsupportedMediaType).
		JSON(ErrorResp{OK: false, Error: "unsupported content type"})
}

func (rc *ReportController) createJSON(c *fiber.Ctx) error {
	var in models.ReportInput
	if err := c.BodyParser(&in); err != nil {
		return badReq(c, "invalid JSON")
	}
	return rc.create(c, in, nil)
}

func (rc *ReportController) createMultipart(c *fiber.Ctx) error {
	in := models.ReportInput{
		Detail: strings.TrimSpace(c.FormValue("detail")),
		Title:  strings.TrimSpace(c.FormValue("title")),
	}
	for field, dst := range map[string]*float64{
		"rust":     &in.Rust,
		"covering": &in.Covering,
		"damage":   &in.Damage,
	} {
		v, err := strconv.ParseFloat(c.FormValue(field), 64)
		if err != nil {
			return badReq(c, "invalid "+field)
		}
		*dst = v
	}
	if err := validateReportInput(in); err != nil {
		return badReq(c, err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badReq(c, "invalid multipart form")
	}
	// stored path order follows photo1, photo2, ... field order
	photoKeys := make([]string, 0, len(form.File))
	for key := range form.File {
		if strings.HasPrefix(key, "photo") {
			photoKeys = append(photoKeys, key)
		}
	}
	sort.Strings(photoKeys)

	var photoPaths []string
	for _, key := range photoKeys {
		for _, fh := range form.File[key] {
			if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
				return badReq(c, "only image files are allowed")
			}
			src, err := fh.Open()
			if err != nil {
				return serverErr(c, err)
			}
			path, err := rc.blobs.Save(fh.Filename, src)
			_ = src.Close()
			if err != nil {
				return serverErr(c, err)
			}
			photoPaths = append(photoPaths, path)
		}
	}

	return rc.create(c, in, photoPaths)
}

func (rc *ReportController) create(c *fiber.Ctx, in models.ReportInput, photoPaths []string) error {
	if err := validateReportInput(in); err != nil {
		return badReq(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	id, err := rc.store.Insert(ctx, in, photoPaths)
	if err != nil {
		return serverErr(c, err)
	}

	// metrics captured here, not re-read: a concurrent delete cannot race this
	rc.enrich.Enqueue(id, in.Rust, in.Covering, in.Damage)

	return c.Status(fiber.StatusOK).JSON(models.CreateResp{OK: true, ID: id.Hex(), UploadedImages: photoPaths})
}

func (rc *ReportController) HandleLatest(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	report, err := rc.store.GetLatest(ctx)
	if err != nil {
		return serverErr(c, err)
	}
	return c.JSON(report)
}

func (rc *ReportController) HandleGet(c *fiber.Ctx) error {
	id, ok := objectID(c)
	if !ok {
		return badReq(c, "invalid report id")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	report, err := rc.store.GetByID(ctx, id)
	if err != nil {
		return serverErr(c, err)
	}
	return c.JSON(report)
}

func (rc *ReportController) HandleList(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	reports, err := rc.store.GetAll(ctx)
	if err != nil {
		return serverErr(c, err)
	}
	return c.JSON(reports)
}

func (rc *ReportController) HandleDelete(c *fiber.Ctx) error {
	id, ok := objectID(c)
	if !ok {
		return badReq(c, "invalid report id")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	if err := rc.store.Delete(ctx, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c)
		}
		return serverErr(c, err)
	}
	return c.JSON(models.OKResp{OK: true})
}

func (rc *ReportController) HandleDeleteAll(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()
	n, err := rc.store.DeleteAll(ctx)
	if err != nil {
		return serverErr(c, err)
	}
	return c.JSON(models.DeleteAllResp{OK: true, Deleted: n})
}

func validateReportInput(in models.ReportInput) error {
	if in.Title == "" {
		return errors.New("missing title")
	}
	if in.Detail == "" {
		return errors.New("missing detail")
	}
	for name, v := range map[string]float64{
		"rust":     in.Rust,
		"covering": in.Covering,
		"damage":   in.Damage,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1]", name)
		}
	}
	return nil
}
