package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Subject identifies the tool under evaluation for one pipeline run.
// Supplied by the caller; immutable for the duration of a run.
type Subject struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Slug         string             `bson:"slug" json:"slug"`
	SearchPhrase string             `bson:"search_phrase,omitempty" json:"search_phrase,omitempty"`
}

// Query returns the phrase collectors should search with: the custom
// search phrase when present, otherwise the subject name.
func (s Subject) Query() string {
	if s.SearchPhrase != "" {
		return s.SearchPhrase
	}
	return s.Name
}
