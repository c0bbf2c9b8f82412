package services_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/jmoiron/sqlx"

	"bookineo/internal/repos"
	"bookineo/internal/services"
)

func bookSvc(db *sqlx.DB) *services.BookService {
	return services.NewBookService(db, repos.NewBookRepo(db), repos.NewRentalRepo(db), repos.NewUserRepo(db))
}

func TestBookCreateUpdate_Ownership(t *testing.T) {
	db := testdb(t)
	svc := bookSvc(db)
	users := repos.NewUserRepo(db)
	alice, _ := users.ByID("u-alice")
	bob, _ := users.ByID("u-bob")

	b, err := svc.Create(alice.ID, services.BookInput{Title: "Le Petit Prince", Author: "Saint-Exupery", Price: 4.5, CategoryName: "Jeunesse"})
	if err != nil {
		t.Fatal(err)
	}
	if b.OwnerID == nil || *b.OwnerID != alice.ID {
		t.Fatalf("owner not set: %+v", b)
	}

	// another user may not edit it
	_, err = svc.Update(bob, b.ID, services.BookInput{Title: "X", Author: "Y", Price: 1})
	wantStatus(t, err, 403)

	// the owner may
	upd, err := svc.Update(alice, b.ID, services.BookInput{Title: "Le Petit Prince", Author: "Saint-Exupery", Price: 5, CategoryName: "Jeunesse"})
	if err != nil {
		t.Fatal(err)
	}
	if upd.Price != 5 {
		t.Fatalf("price not updated: %+v", upd)
	}

	// validation: negative price, missing title
	_, err = svc.Create(alice.ID, services.BookInput{Title: "", Author: "A", Price: -1})
	wantStatus(t, err, 400)
}

func TestBookDelete_ConflictWithActiveRental(t *testing.T) {
	db := testdb(t)
	svc := bookSvc(db)
	users := repos.NewUserRepo(db)
	alice, _ := users.ByID("u-alice")
	admin, _ := users.ByID("u-admin")

	if _, err := rentalSvc(db).Create(alice.ID, services.RentalInput{BookID: "b-dune", Duration: 7}); err != nil {
		t.Fatal(err)
	}

	// b-dune is ownerless catalog stock: admin-managed, but blocked while rented
	err := svc.Delete(admin, "b-dune")
	wantStatus(t, err, 409)

	// a plain user cannot delete catalog stock at all
	err = svc.Delete(alice, "b-1984")
	wantStatus(t, err, 403)

	if err := svc.Delete(admin, "b-1984"); err != nil {
		t.Fatal(err)
	}
	_, err = svc.Get("b-1984")
	wantStatus(t, err, 404)
}

func TestBookDelete_SucceedsAfterReturn(t *testing.T) {
	db := testdb(t)
	svc := bookSvc(db)
	users := repos.NewUserRepo(db)
	alice, _ := users.ByID("u-alice")
	admin, _ := users.ByID("u-admin")

	rent, err := rentalSvc(db).Create(alice.ID, services.RentalInput{BookID: "b-dune", Duration: 7})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rentalSvc(db).Return(alice, rent.ID); err != nil {
		t.Fatal(err)
	}

	// only COMPLETED history left: the delete goes through and takes it along
	if err := svc.Delete(admin, "b-dune"); err != nil {
		t.Fatalf("delete after return failed: %v", err)
	}
	_, err = svc.Get("b-dune")
	wantStatus(t, err, 404)

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM rentals WHERE book_id='b-dune'`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("deleted book left %d rental rows behind", n)
	}
}

func TestBookList_FiltersAndPaging(t *testing.T) {
	db := testdb(t)
	svc := bookSvc(db)

	page, err := svc.List(repos.BookFilter{Category: "Fiction"}, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].Title != "1984" {
		t.Fatalf("bad category filter result: %+v", page)
	}

	page, err = svc.List(repos.BookFilter{Q: "zola"}, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].Title != "Germinal" {
		t.Fatalf("bad q filter result: %+v", page)
	}

	// page beyond the data is empty but keeps the total
	page, err = svc.List(repos.BookFilter{}, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 4 || len(page.Items) != 0 {
		t.Fatalf("bad paging: total=%d items=%d", page.Total, len(page.Items))
	}
}

func TestBookExportCSV_FilteredWithHeader(t *testing.T) {
	db := testdb(t)
	svc := bookSvc(db)

	var buf bytes.Buffer
	if err := svc.ExportCSV(&buf, repos.BookFilter{Category: "Fiction"}); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("want header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "id" || rows[0][1] != "title" || rows[0][4] != "categoryName" {
		t.Fatalf("bad header: %v", rows[0])
	}
	if rows[1][4] != "Fiction" {
		t.Fatalf("row outside filter: %v", rows[1])
	}
}

func TestBookStatsAndAutocomplete(t *testing.T) {
	db := testdb(t)
	svc := bookSvc(db)
	users := repos.NewUserRepo(db)
	alice, _ := users.ByID("u-alice")

	if _, err := svc.Create(alice.ID, services.BookInput{Title: "Mine", Author: "Georges Perec", Price: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := rentalSvc(db).Create("u-bob", services.RentalInput{BookID: "b-dune", Duration: 7}); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.Stats(alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 5 || stats.Rented != 1 || stats.Available != 4 || stats.Owned != 1 {
		t.Fatalf("bad stats: %+v", stats)
	}

	authors, err := svc.SearchAuthors("geor")
	if err != nil {
		t.Fatal(err)
	}
	if len(authors) != 2 { // George Orwell, Georges Perec
		t.Fatalf("bad autocomplete: %v", authors)
	}

	cats, err := svc.Categories()
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) == 0 {
		t.Fatal("no categories")
	}
}

func TestBookImport(t *testing.T) {
	db := testdb(t)
	svc := bookSvc(db)

	n, err := svc.Import([]services.ImportBook{
		{Title: "L'Etranger", Author: "Albert Camus", Price: 6, CategoryName: "Classique"},
		{Title: "La Peste", Author: "Albert Camus", Price: 7, CategoryName: "Classique"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("want 2 imported, got %d", n)
	}

	// imported books are ownerless
	page, _ := svc.List(repos.BookFilter{Author: "Albert Camus"}, 1, 10)
	if page.Total != 2 {
		t.Fatalf("import not listed: %+v", page)
	}
	for _, b := range page.Items {
		if b.OwnerID != nil {
			t.Fatalf("imported book has an owner: %+v", b)
		}
	}

	// a bad row aborts with a validation error
	_, err = svc.Import([]services.ImportBook{{Title: "", Author: "X", Price: 1}})
	wantStatus(t, err, 400)
}
