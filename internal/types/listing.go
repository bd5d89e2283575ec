package types

// Kind identifies which wishlist a record comes from.
type Kind string

const (
	KindMovie Kind = "movie"
	KindBook  Kind = "book"
)

// Movie is one entry of a "wish to watch" listing.
// Every string defaults to "" when the page does not carry it.
type Movie struct {
	ID         string `json:"id"`
	Link       string `json:"link"`
	Title      string `json:"title"`
	TitleAlias string `json:"titleAlias"`
	Pic        string `json:"pic"`
	Year       string `json:"year"`
	Duration   string `json:"duration"`
	Playable   bool   `json:"playable"`
	Rating     string `json:"rating"`
	AddedAt    string `json:"addedAt"`
}

// Book is one entry of a "wish to read" listing.
type Book struct {
	ID        string `json:"id"`
	Link      string `json:"link"`
	Title     string `json:"title"`
	Pic       string `json:"pic"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Year      string `json:"year"`
	AddedAt   string `json:"addedAt"`
}
