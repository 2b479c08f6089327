package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// ListOptions carries pagination and sorting parsed from query params.
type ListOptions struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir int
}

func (o ListOptions) PageOrDefault() int {
	if o.Page < 1 {
		return 1
	}
	return o.Page
}

func (o ListOptions) LimitOrDefault() int {
	if o.Limit < 1 || o.Limit > 100 {
		return 20
	}
	return o.Limit
}

func (o ListOptions) Sort() (string, int) {
	field := o.SortBy
	if field == "" {
		field = "created_at"
	}
	dir := o.SortDir
	if dir != 1 && dir != -1 {
		dir = -1
	}
	return field, dir
}

func mapFindErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
