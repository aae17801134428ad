package domain

// MPAA ratings accepted for films.
const (
	RatingG    = "G"
	RatingPG   = "PG"
	RatingPG13 = "PG-13"
	RatingR    = "R"
	RatingNC17 = "NC-17"
)

// Ratings lists every valid film rating in display order.
var Ratings = []string{RatingG, RatingPG, RatingPG13, RatingR, RatingNC17}

// Film rental defaults applied when a value is left at zero.
const (
	DefaultRentalDuration  = 3
	DefaultRentalRate      = 4.99
	DefaultReplacementCost = 19.99
)

// Actor is a performer that can appear in many films.
type Actor struct {
	ID         int64  `db:"actor_id" json:"id"`
	FirstName  string `db:"first_name" json:"firstName" validate:"required,max=45"`
	LastName   string `db:"last_name" json:"lastName" validate:"required,max=45"`
	LastUpdate string `db:"last_update" json:"lastUpdate"`

	Films []FilmSummary `db:"-" json:"films,omitempty"`
}

// Film is a catalog title. Language is resolved for responses and not stored on the row.
type Film struct {
	ID                 int64   `db:"film_id" json:"id"`
	Title              string  `db:"title" json:"title" validate:"required,max=128"`
	Description        *string `db:"description" json:"description,omitempty"`
	ReleaseYear        *int    `db:"release_year" json:"releaseYear,omitempty" validate:"omitempty,min=1901,max=2155"`
	LanguageID         int64   `db:"language_id" json:"languageId" validate:"required,gt=0"`
	OriginalLanguageID *int64  `db:"original_language_id" json:"originalLanguageId,omitempty" validate:"omitempty,gt=0"`
	RentalDuration     int     `db:"rental_duration" json:"rentalDuration" validate:"gte=0,lte=255"`
	RentalRate         float64 `db:"rental_rate" json:"rentalRate" validate:"gte=0"`
	Length             *int    `db:"length" json:"length,omitempty" validate:"omitempty,gt=0"`
	ReplacementCost    float64 `db:"replacement_cost" json:"replacementCost" validate:"gte=0"`
	Rating             string  `db:"rating" json:"rating" validate:"omitempty,oneof=G PG PG-13 R NC-17"`
	LastUpdate         string  `db:"last_update" json:"lastUpdate"`
	Language           string  `db:"-" json:"language,omitempty"`
	Actors             []Actor `db:"-" json:"actors,omitempty"`
}

// FilmSummary is the short form of a film embedded in actor responses.
type FilmSummary struct {
	ID          int64  `db:"film_id" json:"id"`
	Title       string `db:"title" json:"title"`
	ReleaseYear *int   `db:"release_year" json:"releaseYear,omitempty"`
	Rating      string `db:"rating" json:"rating"`
}

// Category groups films by genre.
type Category struct {
	ID         int64  `db:"category_id" json:"id"`
	Name       string `db:"name" json:"name" validate:"required,max=25"`
	LastUpdate string `db:"last_update" json:"lastUpdate"`
}

// Country owns cities.
type Country struct {
	ID         int64  `db:"country_id" json:"id"`
	Name       string `db:"country" json:"name" validate:"required,max=50"`
	LastUpdate string `db:"last_update" json:"lastUpdate"`
}

// City belongs to exactly one country.
type City struct {
	ID         int64  `db:"city_id" json:"id"`
	Name       string `db:"city" json:"name" validate:"required,max=50"`
	CountryID  int64  `db:"country_id" json:"countryId" validate:"required,gt=0"`
	LastUpdate string `db:"last_update" json:"lastUpdate"`
}

// Language is the spoken language of a film.
type Language struct {
	ID         int64  `db:"language_id" json:"id"`
	Name       string `db:"name" json:"name" validate:"required,max=20"`
	LastUpdate string `db:"last_update" json:"lastUpdate"`
}
