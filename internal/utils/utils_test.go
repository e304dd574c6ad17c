package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamelToSnake(t *testing.T) {
	assert.Equal(t, "release_year_min", CamelToSnake("ReleaseYearMin"))
	assert.Equal(t, "imb_id", CamelToSnake("ImbID"))
	assert.Equal(t, "title", CamelToSnake("title"))
}
