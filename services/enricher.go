package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Analyzer produces summary text from the three inspection metrics.
type Analyzer interface {
	Analyze(ctx context.Context, rust, covering, damage float64) (string, error)
}

// ReportUpdater is the slice of the report store the enricher writes through.
type ReportUpdater interface {
	SetAIReport(ctx context.Context, id primitive.ObjectID, text string) error
}

type enrichJob struct {
	reportID primitive.ObjectID
	rust     float64
	covering float64
	damage   float64
}

// Enricher generates AI summaries for freshly created reports on its own
// worker pool, detached from the request lifecycle. No outcome here can reach
// the request that created the report: every failure is logged and the job
// dropped, leaving that report permanently un-enriched.
type Enricher struct {
	ai      Analyzer
	reports ReportUpdater
	timeout time.Duration
	jobs    chan enrichJob
	wg      sync.WaitGroup
}

// NewEnricher starts the worker pool. timeout bounds each upstream call so a
// hung endpoint cannot pin a worker forever.
func NewEnricher(ai Analyzer, reports ReportUpdater, workers int, timeout time.Duration) *Enricher {
	if workers < 1 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	e := &Enricher{
		ai:      ai,
		reports: reports,
		timeout: timeout,
		jobs:    make(chan enrichJob, 64),
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	return e
}

// Enqueue schedules one enrichment run for a report that was just inserted.
// The metrics are the values captured at creation time, not re-read from
// storage, so a concurrent delete cannot race the read. Each insert enqueues
// exactly once, which is what keeps enrichment at-most-once per report.
//
// Enqueue never blocks the caller: with every worker busy and the queue full,
// the job is logged and dropped, the same terminal outcome a failed upstream
// call gets.
func (e *Enricher) Enqueue(reportID primitive.ObjectID, rust, covering, damage float64) {
	select {
	case e.jobs <- enrichJob{reportID: reportID, rust: rust, covering: covering, damage: damage}:
	default:
		log.Printf("enrich: queue full, dropping job for report %s", reportID.Hex())
	}
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (e *Enricher) Close() {
	close(e.jobs)
	e.wg.Wait()
}

func (e *Enricher) worker() {
	defer e.wg.Done()
	for job := range e.jobs {
		e.run(job)
	}
}

func (e *Enricher) run(job enrichJob) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	text, err := e.ai.Analyze(ctx, job.rust, job.covering, job.damage)
	if err != nil {
		log.Printf("enrich: analysis failed for report %s: %v", job.reportID.Hex(), err)
		return
	}

	if err := e.reports.SetAIReport(ctx, job.reportID, text); err != nil {
		if errors.Is(err, ErrNotFound) {
			// report deleted while the summary was in flight
			log.Printf("enrich: report %s gone, dropping summary", job.reportID.Hex())
			return
		}
		log.Printf("enrich: saving summary for report %s failed: %v", job.reportID.Hex(), err)
	}
}
