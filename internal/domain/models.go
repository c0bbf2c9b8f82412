package domain

type BookStatus string

const (
	BookAvailable BookStatus = "AVAILABLE"
	BookRented    BookStatus = "RENTED"
)

type Book struct {
	ID           string     `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Author       string     `db:"author" json:"author"`
	Price        float64    `db:"price" json:"price"`
	CategoryName string     `db:"category_name" json:"categoryName"`
	ImgURL       string     `db:"img_url" json:"imgUrl,omitempty"`
	Status       BookStatus `db:"status" json:"status"`
	OwnerID      *string    `db:"owner_id" json:"ownerId,omitempty"`
	CreatedAt    string     `db:"created_at" json:"createdAt"`
	UpdatedAt    string     `db:"updated_at" json:"updatedAt,omitempty"`
}

type RentalStatus string

const (
	RentalActive    RentalStatus = "ACTIVE"
	RentalCompleted RentalStatus = "COMPLETED"
	RentalCancelled RentalStatus = "CANCELLED"
)

// MaxRentalDays bounds the accepted rental duration.
const (
	MinRentalDays = 1
	MaxRentalDays = 365
)

type Rental struct {
	ID         string       `db:"id" json:"id"`
	BookID     string       `db:"book_id" json:"bookId"`
	RenterID   string       `db:"renter_id" json:"renterId"`
	StartDate  string       `db:"start_date" json:"startDate"`
	EndDate    string       `db:"end_date" json:"endDate"`
	ReturnDate *string      `db:"return_date" json:"returnDate,omitempty"`
	Duration   int          `db:"duration" json:"duration"`
	Status     RentalStatus `db:"status" json:"status"`
	Comment    string       `db:"comment" json:"comment,omitempty"`
	CreatedAt  string       `db:"created_at" json:"createdAt"`
}

type Message struct {
	ID         string `db:"id" json:"id"`
	SenderID   string `db:"sender_id" json:"senderId"`
	ReceiverID string `db:"receiver_id" json:"receiverId"`
	Content    string `db:"content" json:"content"`
	IsRead     bool   `db:"is_read" json:"isRead"`
	CreatedAt  string `db:"created_at" json:"createdAt"`
}
