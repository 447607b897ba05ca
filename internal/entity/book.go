package entity

import "time"

type Publisher struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type Book struct {
	ID            int64      `json:"id"`
	BookNo        string     `json:"book_no"`
	CatalogNo     string     `json:"catalog_no"`
	BillNo        string     `json:"bill_no"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Vol           string     `json:"vol"`
	Quantity      int        `json:"quantity"`
	Price         *float64   `json:"price"`
	PublisherID   *int64     `json:"publisher_id"`
	DateOfIssue   *time.Time `json:"date_of_issue"`
	PublishedYear *int       `json:"published_year"`
	Remarks       string     `json:"remarks"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AvailableCopies is quantity minus the number of open issues. It is not
// clamped at zero: a negative value means the ledger holds more open issues
// than copies owned, which operators need to see, not have hidden.
func (b Book) AvailableCopies(openIssues int) int {
	return b.Quantity - openIssues
}
