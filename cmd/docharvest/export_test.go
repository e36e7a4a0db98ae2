package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docharvest/internal/types"
)

func TestBuildExportFilter_Defaults(t *testing.T) {
	filter, err := buildExportFilter("", "", "", false, 0)
	require.NoError(t, err)

	assert.True(t, filter.NotExported)
	assert.Empty(t, filter.DocType)
	assert.Nil(t, filter.Since)
	assert.Nil(t, filter.Until)
	assert.Zero(t, filter.Limit)
}

func TestBuildExportFilter_AllFlags(t *testing.T) {
	filter, err := buildExportFilter("resume", "2024-01-01T00:00:00Z", "2024-06-30T23:59:59Z", true, 100)
	require.NoError(t, err)

	assert.Equal(t, types.DocTypeResume, filter.DocType)
	assert.False(t, filter.NotExported)
	assert.Equal(t, 100, filter.Limit)
	require.NotNil(t, filter.Since)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), filter.Since.UTC())
	require.NotNil(t, filter.Until)
}

func TestBuildExportFilter_UnknownType(t *testing.T) {
	_, err := buildExportFilter("invoice", "", "", false, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
}

func TestBuildExportFilter_BadTimestamps(t *testing.T) {
	_, err := buildExportFilter("", "yesterday", "", false, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--since")

	_, err = buildExportFilter("", "", "2024-13-01", false, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--until")
}
