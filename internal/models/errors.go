// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package models

import "errors"

// ErrNotFound is returned by storage lookups when the requested row does
// not exist. Callers distinguish it from transport or query failures with
// errors.Is.
var ErrNotFound = errors.New("not found")
