package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLink = errors.New("invalid link")
	ErrEmptyResult = errors.New("no data available based on the current filter settings")
)

// FetchError reports that reviews for an app could not be retrieved or understood.
type FetchError struct {
	Source Source
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s reviews: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Messages shown to end users.
const (
	MsgInvalidLink = "Invalid link, please check the link"
	MsgEmptyResult = "No data available based on the current filter settings!"
)

// Message is the user-facing text for the failed store.
func (e *FetchError) Message() string {
	store := "Appstore"
	if e.Source == SourcePlayStore {
		store = "Playstore"
	}
	return "Please check the link. An error occurred while fetching " + store + " reviews."
}
