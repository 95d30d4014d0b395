package service

import (
	"context"
	"testing"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/google/uuid"
)

// fakeFetcher stands in for the content fetch stage. failCall maps 1-based
// call ordinals to the error that call should return.
type fakeFetcher struct {
	calls    []string
	failCall map[int]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageID string) (*FetchResult, error) {
	f.calls = append(f.calls, pageID)
	if err, ok := f.failCall[len(f.calls)]; ok {
		return nil, err
	}
	return &FetchResult{PageID: pageID, ContentHash: "deadbeef", Changed: true}, nil
}

// fakeGenerator stands in for the schema generation stage.
type fakeGenerator struct {
	calls    []string
	failCall map[int]error
}

func (g *fakeGenerator) Generate(ctx context.Context, pageID string) error {
	g.calls = append(g.calls, pageID)
	if err, ok := g.failCall[len(g.calls)]; ok {
		return err
	}
	return nil
}

type runnerFixture struct {
	svc       *RunService
	runs      *repository.RunRepository
	pages     *repository.PageRepository
	fetcher   *fakeFetcher
	generator *fakeGenerator
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()
	db := newTestDB(t)
	pages := repository.NewPageRepository(db)
	runs := repository.NewRunRepository(db)
	reconciler := NewReconcileService(pages, logger.GetDefault())
	fetcher := &fakeFetcher{failCall: map[int]error{}}
	generator := &fakeGenerator{failCall: map[int]error{}}
	svc := NewRunService(runs, reconciler, fetcher, generator, logger.GetDefault())
	return &runnerFixture{svc: svc, runs: runs, pages: pages, fetcher: fetcher, generator: generator}
}

// seedRun creates a pending run whose items carry the given rows in order.
func (f *runnerFixture) seedRun(t *testing.T, rows []domain.RunItem) string {
	t.Helper()
	run := &domain.Run{
		ID:     uuid.New().String(),
		Status: domain.RunStatusPending,
	}
	for i := range rows {
		rows[i].ID = uuid.New().String()
		rows[i].RunID = run.ID
		rows[i].RowNumber = i + 1
	}
	run.Items = rows
	if err := f.runs.CreateWithItems(context.Background(), run); err != nil {
		t.Fatalf("failed to seed run: %v", err)
	}
	return run.ID
}

func beerRow(path string) domain.RunItem {
	return domain.RunItem{
		Domain:   domain.DomainBeer,
		Path:     path,
		PageType: "beers",
		Category: "Drink Brands",
	}
}

func TestProcessSingleRowEndToEnd(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	runID := f.seedRun(t, []domain.RunItem{{
		Domain:   domain.DomainBeer,
		Path:     "IPA",
		PageType: "beers",
		Category: "Drink Brands",
	}})

	stats, err := f.svc.Process(ctx, runID)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if stats.TotalItems != 1 || stats.Created != 1 || stats.Errored != 0 {
		t.Errorf("stats = %+v, want 1 total, 1 created", stats)
	}

	run, err := f.runs.GetWithItems(ctx, runID)
	if err != nil {
		t.Fatalf("failed to reload run: %v", err)
	}
	if run.Status != domain.RunStatusCompleted {
		t.Errorf("run status = %q, want %q", run.Status, domain.RunStatusCompleted)
	}

	item := run.Items[0]
	if item.Result != domain.ItemResultCreated {
		t.Errorf("item result = %q, want %q", item.Result, domain.ItemResultCreated)
	}
	if item.HTMLStatus != domain.StepStatusSuccess {
		t.Errorf("html_status = %q, want success", item.HTMLStatus)
	}
	if item.SchemaStatus != domain.StepStatusSuccess {
		t.Errorf("schema_status = %q, want success", item.SchemaStatus)
	}
	if item.PageID == "" {
		t.Fatal("item page_id was not recorded")
	}

	page, err := f.pages.GetByID(ctx, item.PageID)
	if err != nil {
		t.Fatalf("failed to load resolved page: %v", err)
	}
	if page.Path != "/ipa" {
		t.Errorf("page path = %q, want %q", page.Path, "/ipa")
	}
}

func TestProcessInvalidRowSkipsAllStages(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	runID := f.seedRun(t, []domain.RunItem{{
		Domain:   domain.DomainBeer,
		Path:     "/ipa",
		PageType: "beers",
		Category: "", // absent
	}})

	stats, err := f.svc.Process(ctx, runID)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if stats.Errored != 1 {
		t.Errorf("errored = %d, want 1", stats.Errored)
	}

	run, _ := f.runs.GetWithItems(ctx, runID)
	item := run.Items[0]
	if item.Result != domain.ItemResultError {
		t.Errorf("item result = %q, want error", item.Result)
	}
	if item.ErrorMessage == "" {
		t.Error("expected a descriptive error message")
	}
	if item.HTMLStatus != "" || item.SchemaStatus != "" {
		t.Errorf("stage statuses should stay unset, got html=%q schema=%q", item.HTMLStatus, item.SchemaStatus)
	}

	// Neither downstream stage may be attempted for an invalid row.
	if len(f.fetcher.calls) != 0 {
		t.Errorf("fetcher called %d times, want 0", len(f.fetcher.calls))
	}
	if len(f.generator.calls) != 0 {
		t.Errorf("generator called %d times, want 0", len(f.generator.calls))
	}

	if run.Status != domain.RunStatusCompleted {
		t.Errorf("run status = %q, want completed", run.Status)
	}
}

func TestProcessFetchFailureIsIsolated(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	rows := []domain.RunItem{
		beerRow("/beers/one"),
		beerRow("/beers/two"),
		beerRow("/beers/three"),
		beerRow("/beers/four"),
		beerRow("/beers/five"),
	}
	runID := f.seedRun(t, rows)

	// Item 3's fetch blows up with an upstream error.
	f.fetcher.failCall[3] = domain.NewUpstreamFetchError("http://x/beers/three", 502)

	stats, err := f.svc.Process(ctx, runID)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if stats.HTMLFailed != 1 {
		t.Errorf("html_failed = %d, want 1", stats.HTMLFailed)
	}

	run, _ := f.runs.GetWithItems(ctx, runID)
	if run.Status != domain.RunStatusCompleted {
		t.Errorf("run status = %q, want completed", run.Status)
	}

	for i, item := range run.Items {
		if item.Result != domain.ItemResultCreated {
			t.Errorf("item %d result = %q, want created", i+1, item.Result)
		}
		wantHTML := domain.StepStatusSuccess
		if i == 2 {
			wantHTML = domain.StepStatusFailed
		}
		if item.HTMLStatus != wantHTML {
			t.Errorf("item %d html_status = %q, want %q", i+1, item.HTMLStatus, wantHTML)
		}
		// A fetch failure never blocks the generation attempt.
		if item.SchemaStatus != domain.StepStatusSuccess {
			t.Errorf("item %d schema_status = %q, want success", i+1, item.SchemaStatus)
		}
	}

	if len(f.generator.calls) != 5 {
		t.Errorf("generator called %d times, want 5", len(f.generator.calls))
	}
}

func TestProcessGenerationFailureIsIsolated(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	runID := f.seedRun(t, []domain.RunItem{
		beerRow("/beers/one"),
		beerRow("/beers/two"),
	})

	f.generator.failCall[2] = domain.NewGenerationError(context.DeadlineExceeded)

	stats, err := f.svc.Process(ctx, runID)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if stats.SchemaFailed != 1 {
		t.Errorf("schema_failed = %d, want 1", stats.SchemaFailed)
	}

	run, _ := f.runs.GetWithItems(ctx, runID)
	if run.Items[1].SchemaStatus != domain.StepStatusFailed {
		t.Errorf("item 2 schema_status = %q, want failed", run.Items[1].SchemaStatus)
	}
	if run.Items[1].HTMLStatus != domain.StepStatusSuccess {
		t.Errorf("item 2 html_status = %q, want success", run.Items[1].HTMLStatus)
	}
	if run.Items[1].Result != domain.ItemResultCreated {
		t.Errorf("item 2 result = %q, want created", run.Items[1].Result)
	}
}

func TestProcessDuplicatePathWithinBatch(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	runID := f.seedRun(t, []domain.RunItem{
		beerRow("IPA"),
		beerRow("/ipa"),
	})

	stats, err := f.svc.Process(ctx, runID)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if stats.Created != 1 || stats.Updated != 1 {
		t.Errorf("stats = %+v, want 1 created and 1 updated", stats)
	}

	run, _ := f.runs.GetWithItems(ctx, runID)
	if run.Items[0].Result != domain.ItemResultCreated {
		t.Errorf("item 1 result = %q, want created", run.Items[0].Result)
	}
	if run.Items[1].Result != domain.ItemResultUpdated {
		t.Errorf("item 2 result = %q, want updated", run.Items[1].Result)
	}
	if run.Items[0].PageID != run.Items[1].PageID {
		t.Errorf("items resolved different pages: %q vs %q", run.Items[0].PageID, run.Items[1].PageID)
	}
}

func TestProcessItemsInRowNumberOrder(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	runID := f.seedRun(t, []domain.RunItem{
		beerRow("/beers/first"),
		beerRow("/beers/second"),
		beerRow("/beers/third"),
	})

	if _, err := f.svc.Process(ctx, runID); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if len(f.fetcher.calls) != 3 {
		t.Fatalf("fetcher called %d times, want 3", len(f.fetcher.calls))
	}

	// Fetch call order must follow row numbers: resolve each page's path.
	wantPaths := []string{"/beers/first", "/beers/second", "/beers/third"}
	for i, pageID := range f.fetcher.calls {
		page, err := f.pages.GetByID(ctx, pageID)
		if err != nil {
			t.Fatalf("failed to load page %q: %v", pageID, err)
		}
		if page.Path != wantPaths[i] {
			t.Errorf("call %d fetched %q, want %q", i+1, page.Path, wantPaths[i])
		}
	}
}

func TestProcessUnknownRun(t *testing.T) {
	f := newRunnerFixture(t)

	if _, err := f.svc.Process(context.Background(), "no-such-run"); err == nil {
		t.Error("expected an error for an unknown run")
	}
}

func TestProcessRerunIsSafe(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	runID := f.seedRun(t, []domain.RunItem{beerRow("IPA")})

	if _, err := f.svc.Process(ctx, runID); err != nil {
		t.Fatalf("first process failed: %v", err)
	}

	// Re-running a completed run re-attempts the same stages against the
	// same resolved page; reconciliation reuse keeps the catalog stable.
	stats, err := f.svc.Process(ctx, runID)
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}
	if stats.Updated != 1 || stats.Created != 0 {
		t.Errorf("re-run stats = %+v, want 1 updated", stats)
	}

	pages, err := f.pages.List(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("failed to list pages: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("catalog has %d pages after re-run, want 1", len(pages))
	}

	run, _ := f.runs.GetByID(ctx, runID)
	if run.Status != domain.RunStatusCompleted {
		t.Errorf("run status = %q, want completed", run.Status)
	}
}
