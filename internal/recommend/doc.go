// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

// Package recommend implements the book recommendation engine.
//
// The engine assembles named recommendation groups (for-you, trending,
// by-genre, by-author, new-releases, continue-reading) and a similar-books
// mode from a user's interaction history. Scoring is additive: up to six
// independent passes each contribute a partial score to a per-request
// accumulation map and tag the signal that produced it. No model is
// trained and nothing is persisted; every request recomputes from live
// interaction data and the scoring state is discarded with the response.
//
// The engine reaches the catalog only through the DataProvider interface,
// keeping this package free of storage dependencies. The database package
// provides the production implementation.
//
// Phases within a request are strictly sequential
// (history -> preferences -> scoring -> enrichment -> age filtering),
// while lookups within a phase fan out concurrently.
package recommend
