package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table         string
	ID            string
	UserID        string
	Title         string
	Author        string
	Year          string
	Genre         string
	ImageURL      string
	AverageRating string
	CreatedAt     string
	UpdatedAt     string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:         "catalog.book",
	ID:            "id",
	UserID:        "userid",
	Title:         "title",
	Author:        "author",
	Year:          "year",
	Genre:         "genre",
	ImageURL:      "imageurl",
	AverageRating: "averagerating",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// Columns returns all standard column names
func (t CatalogBookTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.Title, t.Author, t.Year, t.Genre,
		t.ImageURL, t.AverageRating, t.CreatedAt, t.UpdatedAt,
	}
}
