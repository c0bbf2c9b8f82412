package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	"bookineo/internal/repos"
	"bookineo/internal/services"
)

func testdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func rentalSvc(db *sqlx.DB) *services.RentalService {
	return services.NewRentalService(db, repos.NewBookRepo(db), repos.NewRentalRepo(db))
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("want app error with status %d, got %v", status, err)
	}
	if ae.Status != status {
		t.Fatalf("want status %d, got %d (%s)", status, ae.Status, ae.Code)
	}
}

func TestRentalCreate_DurationBounds(t *testing.T) {
	db := testdb(t)
	svc := rentalSvc(db)

	// 0 and 366 rejected
	_, err := svc.Create("u-alice", services.RentalInput{BookID: "b-dune", Duration: 0})
	wantStatus(t, err, 400)
	_, err = svc.Create("u-alice", services.RentalInput{BookID: "b-dune", Duration: 366})
	wantStatus(t, err, 400)

	// 1 accepted
	rent, err := svc.Create("u-alice", services.RentalInput{BookID: "b-dune", Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	if rent.Status != domain.RentalActive || rent.Duration != 1 {
		t.Fatalf("bad rental: %+v", rent)
	}

	// 365 accepted on another book
	if _, err := svc.Create("u-alice", services.RentalInput{BookID: "b-1984", Duration: 365}); err != nil {
		t.Fatal(err)
	}
}

func TestRentalCreate_ClaimsBook(t *testing.T) {
	db := testdb(t)
	svc := rentalSvc(db)
	books := repos.NewBookRepo(db)

	rent, err := svc.Create("u-alice", services.RentalInput{BookID: "b-dune", Duration: 7})
	if err != nil {
		t.Fatal(err)
	}

	b, err := books.Get("b-dune")
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != domain.BookRented {
		t.Fatalf("want RENTED, got %s", b.Status)
	}

	// endDate = startDate + 7 days
	start, _ := time.Parse(time.RFC3339, rent.StartDate)
	end, _ := time.Parse(time.RFC3339, rent.EndDate)
	if end.Sub(start) != 7*24*time.Hour {
		t.Fatalf("want 7 day span, got %v", end.Sub(start))
	}

	// book RENTED iff exactly one ACTIVE rental references it
	if n, _ := books.ActiveRentalCount("b-dune"); n != 1 {
		t.Fatalf("want 1 active rental, got %d", n)
	}

	// a second create for the same book conflicts
	_, err = svc.Create("u-bob", services.RentalInput{BookID: "b-dune", Duration: 3})
	wantStatus(t, err, 409)
}

func TestRentalReturn_Lifecycle(t *testing.T) {
	db := testdb(t)
	svc := rentalSvc(db)
	books := repos.NewBookRepo(db)
	users := repos.NewUserRepo(db)

	alice, err := users.ByID("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	bob, err := users.ByID("u-bob")
	if err != nil {
		t.Fatal(err)
	}

	rent, err := svc.Create(alice.ID, services.RentalInput{BookID: "b-dune", Duration: 14})
	if err != nil {
		t.Fatal(err)
	}

	// a stranger may not return it
	_, err = svc.Return(bob, rent.ID)
	wantStatus(t, err, 403)

	done, err := svc.Return(alice, rent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != domain.RentalCompleted || done.ReturnDate == nil {
		t.Fatalf("bad returned rental: %+v", done)
	}

	// book freed, invariant restored
	b, _ := books.Get("b-dune")
	if b.Status != domain.BookAvailable {
		t.Fatalf("want AVAILABLE after return, got %s", b.Status)
	}
	if n, _ := books.ActiveRentalCount("b-dune"); n != 0 {
		t.Fatalf("want 0 active rentals, got %d", n)
	}

	// COMPLETED is terminal: no second return, no cancel
	_, err = svc.Return(alice, rent.ID)
	wantStatus(t, err, 409)
	_, err = svc.Cancel(alice, rent.ID)
	wantStatus(t, err, 409)
}

func TestRentalCancel_FreesBookWithoutReturnDate(t *testing.T) {
	db := testdb(t)
	svc := rentalSvc(db)
	books := repos.NewBookRepo(db)
	users := repos.NewUserRepo(db)

	alice, _ := users.ByID("u-alice")
	rent, err := svc.Create(alice.ID, services.RentalInput{BookID: "b-1984", Duration: 30})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Cancel(alice, rent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.RentalCancelled || got.ReturnDate != nil {
		t.Fatalf("bad cancelled rental: %+v", got)
	}
	b, _ := books.Get("b-1984")
	if b.Status != domain.BookAvailable {
		t.Fatalf("want AVAILABLE after cancel, got %s", b.Status)
	}
}

func TestRentalOverdue_DerivedRead(t *testing.T) {
	db := testdb(t)
	svc := rentalSvc(db)

	rent, err := svc.Create("u-alice", services.RentalInput{BookID: "b-dune", Duration: 5})
	if err != nil {
		t.Fatal(err)
	}

	// not overdue yet
	rows, err := svc.Overdue()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("want no overdue rentals, got %d", len(rows))
	}

	// push the end date into the past; the rental stays ACTIVE
	past := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	if _, err := db.Exec(`UPDATE rentals SET end_date=? WHERE id=?`, past, rent.ID); err != nil {
		t.Fatal(err)
	}

	rows, err = svc.Overdue()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != rent.ID || rows[0].Status != domain.RentalActive {
		t.Fatalf("bad overdue rows: %+v", rows)
	}

	stats, err := svc.Stats("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Active != 1 || stats.Overdue != 1 {
		t.Fatalf("bad stats: %+v", stats)
	}
}
