package schema

// CatalogBookRatingTable represents the 'catalog.bookrating' table
type CatalogBookRatingTable struct {
	Table     string
	BookID    string
	UserID    string
	Grade     string
	Position  string
	CreatedAt string
}

// CatalogBookRating is the schema definition for catalog.bookrating
var CatalogBookRating = CatalogBookRatingTable{
	Table:     "catalog.bookrating",
	BookID:    "bookid",
	UserID:    "userid",
	Grade:     "grade",
	Position:  "position",
	CreatedAt: "createdat",
}

func (t CatalogBookRatingTable) Columns() []string {
	return []string{t.BookID, t.UserID, t.Grade, t.Position, t.CreatedAt}
}
