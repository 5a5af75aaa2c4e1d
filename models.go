package wanderlust

import "time"

// User is a registered account. Referenced by Review.Author.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // don’t expose hash
	CreatedAt    time.Time `json:"created_at"`
}

// Image is an uploaded picture stored outside the database.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Geometry is a GeoJSON-style point. Coordinates are [lon, lat].
type Geometry struct {
	Type        string     `json:"type"` // always "Point"
	Coordinates [2]float64 `json:"coordinates"`
}

// Listing is a rentable property record. Geometry is nil when the
// location string could not be geocoded.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	Country     string    `json:"country"`
	Image       Image     `json:"image"`
	Geometry    *Geometry `json:"geometry,omitempty"`
	Reviews     []Review  `json:"reviews,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Review is a user-authored comment attached to exactly one listing.
// Author is populated on reads that join the users table.
type Review struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	AuthorID  int64     `json:"author_id"`
	Author    *User     `json:"author,omitempty"`
	Body      string    `json:"body"`
	Rating    int       `json:"rating"` // 1..5
	CreatedAt time.Time `json:"created_at"`
}

// Session is server-side session state keyed by the cookie token.
// UserID is 0 for anonymous sessions. Flash holds one-shot messages
// cleared when the next page renders.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id,omitempty"`
	Flash     Flash     `json:"flash"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Flash carries one-shot messages for the next rendered page.
type Flash struct {
	Success []string `json:"success,omitempty"`
	Error   []string `json:"error,omitempty"`
}

// Empty reports whether there is nothing to show.
func (f Flash) Empty() bool {
	return len(f.Success) == 0 && len(f.Error) == 0
}
