package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateTexts(t *testing.T) {
	// 2025-10-26 is a Sunday.
	day := time.Date(2025, 10, 26, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{
		"October 26, 2025",
		"Sun 26",
		"Sunday 26",
		"26",
	}, DateTexts(day))
}

func TestDateTextsSingleDigitDay(t *testing.T) {
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	texts := DateTexts(day)
	assert.Contains(t, texts, "November 3, 2025")
	assert.Contains(t, texts, "3", "day number is not zero padded")
}
