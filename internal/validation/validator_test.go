// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	UserID string `validate:"required,uuid4"`
	Limit  int    `validate:"min=1,max=100"`
}

func TestValidateStructPasses(t *testing.T) {
	req := sampleRequest{
		UserID: "2f5b12c8-7e1a-4b0f-9f45-2b7c9a81d3e6",
		Limit:  20,
	}
	assert.Nil(t, ValidateStruct(&req))
}

func TestValidateStructRequired(t *testing.T) {
	req := sampleRequest{Limit: 20}
	err := ValidateStruct(&req)
	require.NotNil(t, err)

	apiErr := err.ToAPIError()
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Message, "userid is required")
}

func TestValidateStructRange(t *testing.T) {
	req := sampleRequest{
		UserID: "2f5b12c8-7e1a-4b0f-9f45-2b7c9a81d3e6",
		Limit:  500,
	}
	err := ValidateStruct(&req)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "at most 100")
}

func TestMultipleErrorsProduceDetails(t *testing.T) {
	req := sampleRequest{UserID: "not-a-uuid", Limit: 0}
	err := ValidateStruct(&req)
	require.NotNil(t, err)
	require.Len(t, err.Errors(), 2)

	apiErr := err.ToAPIError()
	assert.Len(t, apiErr.Details, 2)
}
