package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUsernameFromName(t *testing.T) {
	username := GenerateUsernameFromName("Jürgen Schäfer")
	assert.Regexp(t, regexp.MustCompile(`^jschaefer[0-9]{1,3}$`), username)
}

func TestGenerateRandomDispatchItem_IsValid(t *testing.T) {
	for i := 0; i < 200; i++ {
		item := GenerateRandomDispatchItem("2025-06-10", 1)
		require.NoError(t, ValidateDispatchItem(item), "%+v", item.TimeWindow)
	}
}
