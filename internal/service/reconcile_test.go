package service

import (
	"context"
	"testing"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/brewops/schemasync/internal/repository"
)

func newReconcileFixture(t *testing.T) (*ReconcileService, *repository.PageRepository) {
	t.Helper()
	db := newTestDB(t)
	pages := repository.NewPageRepository(db)
	return NewReconcileService(pages, logger.GetDefault()), pages
}

func TestReconcileCreateThenFind(t *testing.T) {
	svc, pages := newReconcileFixture(t)
	ctx := context.Background()

	firstID, isNew, err := svc.Reconcile(ctx, domain.DomainBeer, "IPA", "beers", "Drink Brands")
	if err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}
	if !isNew {
		t.Error("first reconcile: expected isNew=true")
	}

	page, err := pages.GetByID(ctx, firstID)
	if err != nil {
		t.Fatalf("failed to load created page: %v", err)
	}
	if page.Path != "/ipa" {
		t.Errorf("created page path = %q, want %q", page.Path, "/ipa")
	}
	if page.Status != domain.PageStatusNotStarted {
		t.Errorf("created page status = %q, want %q", page.Status, domain.PageStatusNotStarted)
	}

	secondID, isNew, err := svc.Reconcile(ctx, domain.DomainBeer, "IPA", "beers", "Drink Brands")
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if isNew {
		t.Error("second reconcile: expected isNew=false")
	}
	if secondID != firstID {
		t.Errorf("second reconcile resolved %q, want %q", secondID, firstID)
	}
}

func TestReconcileEquivalentPathsResolveSamePage(t *testing.T) {
	svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	firstID, _, err := svc.Reconcile(ctx, domain.DomainBeer, "https://brewery.example/Beers/IPA/", "beers", "Drink Brands")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	secondID, isNew, err := svc.Reconcile(ctx, domain.DomainBeer, "/beers/ipa", "beers", "Drink Brands")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if isNew || secondID != firstID {
		t.Errorf("equivalent path created a second page: isNew=%v, ids %q vs %q", isNew, firstID, secondID)
	}
}

func TestReconcileValidation(t *testing.T) {
	svc, pages := newReconcileFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name       string
		siteDomain domain.SiteDomain
		path       string
		pageType   string
		category   string
	}{
		{"empty domain", "", "/ipa", "beers", "Drink Brands"},
		{"empty path", domain.DomainBeer, "", "beers", "Drink Brands"},
		{"empty page type", domain.DomainBeer, "/ipa", "", "Drink Brands"},
		{"empty category", domain.DomainBeer, "/ipa", "beers", ""},
		{"whitespace category", domain.DomainBeer, "/ipa", "beers", "   "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Reconcile(ctx, tc.siteDomain, tc.path, tc.pageType, tc.category)
			if !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	// Validation failures must not create pages.
	list, err := pages.List(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("failed to list pages: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty catalog after validation failures, found %d pages", len(list))
	}
}

func TestReconcileExistingPageNotMutated(t *testing.T) {
	svc, pages := newReconcileFixture(t)
	ctx := context.Background()

	id, _, err := svc.Reconcile(ctx, domain.DomainBeer, "/ipa", "beers", "Drink Brands")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	// Re-running with different row attributes is a refresh, not an update.
	_, isNew, err := svc.Reconcile(ctx, domain.DomainPub, "/ipa", "pubs", "Locations")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if isNew {
		t.Error("expected isNew=false for existing path")
	}

	page, err := pages.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("failed to load page: %v", err)
	}
	if page.Domain != domain.DomainBeer || page.PageType != "beers" || page.Category != "Drink Brands" {
		t.Errorf("existing page was mutated: %+v", page)
	}
}
