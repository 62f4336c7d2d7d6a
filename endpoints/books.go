// Package endpoints holds the endpoint families of the demo API.
package endpoints

import "github.com/smolnetwork/smolnet"

// Book is a book resource.
type Book struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Author string `json:"author"`
}

// BooksIndex lists all the books.
type BooksIndex struct{ dataCall }

// BookGet fetches the book with the given identifier.
type BookGet struct {
	dataCall
	ID string
}

// BookCreate creates a book with the given parameters.
type BookCreate struct {
	dataCall
	Params smolnet.Param
}

func (BooksIndex) Path() string { return "/books" }
func (e BookGet) Path() string  { return smolnet.PathJoin("/books", e.ID) }
func (BookCreate) Path() string { return "/books" }

func (BookCreate) Method() smolnet.Method { return smolnet.POST }

func (e BookCreate) Parameters() smolnet.Param { return e.Params }
