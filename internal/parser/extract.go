package parser

import (
	"strings"

	"github.com/IshaanNene/wishpick/internal/types"
)

// Item containers on the grid-mode wishlist pages.
const (
	MovieItemSelector = ".item.comment-item"
	BookItemSelector  = ".subject-item"
)

// ExtractMovies converts every movie container on a listing page into a Movie.
// Missing pieces leave the corresponding field empty.
func ExtractMovies(page Query) []types.Movie {
	var movies []types.Movie
	page.Find(MovieItemSelector).Each(func(item Query) {
		movies = append(movies, extractMovie(item))
	})
	return movies
}

func extractMovie(item Query) types.Movie {
	var m types.Movie

	title := item.Find(".title")
	anchor := title.Find("a")

	if link, ok := anchor.Attr("href"); ok {
		m.Link = strings.TrimSpace(link)
		m.ID, _ = FirstDigits(m.Link)
	}
	m.Title = strings.TrimSpace(title.Find("em").Text())
	m.TitleAlias, _ = AliasTitle(anchor.OwnText())
	m.Pic = imageSource(item)

	intro := item.Find(".intro").Text()
	m.Year, _ = Year(intro)
	m.Duration, _ = Duration(intro)

	m.Playable = title.Find("span").HasClass("playable")

	item.Find("span").Each(func(s Query) {
		if m.Rating != "" {
			return
		}
		m.Rating, _ = Rating(s.Classes())
	})

	m.AddedAt, _ = FirstToken(item.Find(".date").Text())
	return m
}

// ExtractBooks converts every book container on a listing page into a Book.
func ExtractBooks(page Query) []types.Book {
	var books []types.Book
	page.Find(BookItemSelector).Each(func(item Query) {
		books = append(books, extractBook(item))
	})
	return books
}

func extractBook(item Query) types.Book {
	var b types.Book

	anchor := item.Find("h2 a")
	if link, ok := anchor.Attr("href"); ok {
		b.Link = strings.TrimSpace(link)
		b.ID, _ = FirstDigits(b.Link)
	}
	if title, ok := anchor.Attr("title"); ok && strings.TrimSpace(title) != "" {
		b.Title = strings.TrimSpace(title)
	} else {
		b.Title = strings.Join(strings.Fields(anchor.Text()), " ")
	}
	b.Pic = imageSource(item)

	intro := strings.TrimSpace(item.Find(".pub").Text())
	b.Publisher, _ = Publisher(intro)
	b.Author, _ = Author(intro)
	b.Year, _ = Year(intro)

	b.AddedAt, _ = FirstToken(item.Find(".date").Text())
	return b
}

func imageSource(item Query) string {
	src, ok := item.Find(".pic img").Attr("src")
	if !ok {
		return ""
	}
	return strings.TrimSpace(src)
}
