package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"bookineo/internal/repos"
	"bookineo/internal/services"
)

func userSvc(db *sqlx.DB) *services.UserService {
	return services.NewUserService(db, repos.NewUserRepo(db), repos.NewRentalRepo(db))
}

func TestUserDelete_Rules(t *testing.T) {
	db := testdb(t)
	svc := userSvc(db)
	users := repos.NewUserRepo(db)
	admin, _ := users.ByID("u-admin")

	// unknown user
	err := svc.Delete(admin, "u-nope")
	wantStatus(t, err, 404)

	// nobody deletes their own account
	err = svc.Delete(admin, admin.ID)
	wantStatus(t, err, 409)

	// an active rental blocks the deletion
	rent, err := rentalSvc(db).Create("u-bob", services.RentalInput{BookID: "b-dune", Duration: 7})
	if err != nil {
		t.Fatal(err)
	}
	err = svc.Delete(admin, "u-bob")
	wantStatus(t, err, 409)

	// once returned, the account goes, rental history with it
	bob, _ := users.ByID("u-bob")
	if _, err := rentalSvc(db).Return(bob, rent.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(admin, "u-bob"); err != nil {
		t.Fatalf("delete after return failed: %v", err)
	}
	if _, err := users.ByID("u-bob"); err == nil {
		t.Fatal("user row still present after delete")
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM rentals WHERE renter_id='u-bob'`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("deleted user left %d rental rows behind", n)
	}
}

func TestUserDelete_OwnedBooksBecomeOwnerless(t *testing.T) {
	db := testdb(t)
	svc := userSvc(db)
	users := repos.NewUserRepo(db)
	books := repos.NewBookRepo(db)
	admin, _ := users.ByID("u-admin")

	b, err := bookSvc(db).Create("u-bob", services.BookInput{Title: "Bel-Ami", Author: "Maupassant", Price: 5, CategoryName: "Classique"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(admin, "u-bob"); err != nil {
		t.Fatal(err)
	}
	got, err := books.Get(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.OwnerID != nil {
		t.Fatalf("book kept a dangling owner: %+v", got)
	}
}
