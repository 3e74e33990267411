package controllers_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Misakait/hullwatch/controllers"
	"github.com/Misakait/hullwatch/models"
	"github.com/Misakait/hullwatch/routes"
)

type insertCall struct {
	in    models.ReportInput
	paths []string
}

type stubReportStore struct {
	mu        sync.Mutex
	inserts   []insertCall
	insertID  primitive.ObjectID
	insertErr error
	latest    *models.Report
	byID      *models.Report
	all       []models.Report
	deleteErr error
	deleted   int64
}

func (s *stubReportStore) Insert(ctx context.Context, in models.ReportInput, photoPaths []string) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return primitive.NilObjectID, s.insertErr
	}
	s.inserts = append(s.inserts, insertCall{in: in, paths: photoPaths})
	return s.insertID, nil
}

func (s *stubReportStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	return s.byID, nil
}

func (s *stubReportStore) GetLatest(ctx context.Context) (*models.Report, error) {
	return s.latest, nil
}

func (s *stubReportStore) GetAll(ctx context.Context) ([]models.Report, error) {
	return s.all, nil
}

func (s *stubReportStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteErr
}

func (s *stubReportStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.deleted, nil
}

type enqueueCall struct {
	id                     primitive.ObjectID
	rust, covering, damage float64
}

type stubScheduler struct {
	mu    sync.Mutex
	calls []enqueueCall
}

func (s *stubScheduler) Enqueue(reportID primitive.ObjectID, rust, covering, damage float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, enqueueCall{id: reportID, rust: rust, covering: covering, damage: damage})
}

type stubBlobs struct {
	mu    sync.Mutex
	paths []string
	err   error
	saved int
	names []string
}

func (s *stubBlobs) Save(originalName string, src io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	_, _ = io.Copy(io.Discard, src)
	s.names = append(s.names, originalName)
	path := fmt.Sprintf("/20260830/photo-%d.jpg", s.saved)
	if s.saved < len(s.paths) {
		path = s.paths[s.saved]
	}
	s.saved++
	return path, nil
}

type stubTrackStore struct {
	createID  primitive.ObjectID
	track     *models.ShipTrack
	latest    *models.ShipTrack
	updateErr error
	deleteErr error

	appendResult *models.ShipTrack
	appendCalls  [][][2]float64
}

func (s *stubTrackStore) Create(ctx context.Context, in models.TrackInput) (primitive.ObjectID, error) {
	return s.createID, nil
}

func (s *stubTrackStore) Get(ctx context.Context, id primitive.ObjectID) (*models.ShipTrack, error) {
	return s.track, nil
}

func (s *stubTrackStore) Update(ctx context.Context, id primitive.ObjectID, in models.TrackInput) error {
	return s.updateErr
}

func (s *stubTrackStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteErr
}

func (s *stubTrackStore) GetLatest(ctx context.Context) (*models.ShipTrack, error) {
	return s.latest, nil
}

func (s *stubTrackStore) AppendAndFetch(ctx context.Context, id primitive.ObjectID, coords [][2]float64) (*models.ShipTrack, error) {
	s.appendCalls = append(s.appendCalls, coords)
	return s.appendResult, nil
}

type testDeps struct {
	reports *stubReportStore
	enrich  *stubScheduler
	blobs   *stubBlobs
	tracks  *stubTrackStore
}

func newTestApp(deps *testDeps) *fiber.App {
	app := fiber.New()
	routes.Register(app,
		controllers.NewReportController(deps.reports, deps.enrich, deps.blobs),
		controllers.NewTrackController(deps.tracks),
	)
	return app
}

// multipartBody assembles a create-report form with one attached file.
func multipartBody(fields map[string]string, fileField, filename, contentType string, data []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if fileField != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
