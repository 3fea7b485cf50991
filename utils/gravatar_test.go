package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwellhq/inkwell/utils"
)

func TestGravatarURL(t *testing.T) {
	// md5("test@example.com")
	want := "https://www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0?s=100&d=retro&r=g"
	assert.Equal(t, want, utils.GravatarURL("test@example.com", 100))
}

func TestGravatarURLNormalizesEmail(t *testing.T) {
	base := utils.GravatarURL("test@example.com", 100)
	assert.Equal(t, base, utils.GravatarURL("  Test@Example.COM  ", 100))
}
