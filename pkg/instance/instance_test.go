package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDPrefersExplicitValue(t *testing.T) {
	t.Setenv("THERMOLAQ_INSTANCE_ID", "api-7")
	t.Setenv("DYNO", "web.1")
	assert.Equal(t, "api-7", ID())

	t.Setenv("THERMOLAQ_INSTANCE_ID", " ")
	assert.Equal(t, "web.1", ID())
}

func TestIDFallsBack(t *testing.T) {
	t.Setenv("THERMOLAQ_INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	assert.NotEmpty(t, ID())
}
