// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package api

// personalizedRequest carries the validated query parameters of the
// personalized recommendations endpoint.
type personalizedRequest struct {
	UserID      string `validate:"required,uuid4"`
	Limit       int    `validate:"min=1,max=100"`
	IncludeRead bool
	Age         *int `validate:"omitempty,min=0,max=150"`
}

// similarBooksRequest carries the validated parameters of the
// similar-books endpoint.
type similarBooksRequest struct {
	BookID string `validate:"required,uuid4"`
	Limit  int    `validate:"min=1,max=100"`
	Age    *int   `validate:"omitempty,min=0,max=150"`
}

// entityRequest carries the validated parameters of the by-genre and
// by-author endpoints.
type entityRequest struct {
	EntityID string `validate:"required,uuid4"`
	Limit    int    `validate:"min=1,max=100"`
	Age      *int   `validate:"omitempty,min=0,max=150"`
}

// feedbackRequest is the POST body of the feedback endpoint.
type feedbackRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	BookID string `json:"book_id" validate:"required,uuid4"`
	Liked  *bool  `json:"liked" validate:"required"`
}
