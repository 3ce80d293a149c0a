package osit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrail(t *testing.T) {
	tr := New("Projects", "/projects").
		Add("Kita Sonnenschein", "/projects/3").
		Add("Summary", "")

	items := tr.Items()
	assert.Len(t, items, 3)
	assert.False(t, items[0].Active)
	assert.False(t, items[1].Active)
	assert.True(t, items[2].Active)
	assert.Equal(t, "/projects/3", items[1].URL)
	assert.Equal(t, "Summary", tr.Title())

	// Items must not leak the active flag into the trail itself
	tr.Add("PDF", "")
	assert.False(t, tr.Items()[2].Active)
}

func TestTrail_Nil(t *testing.T) {
	var tr *Trail
	assert.Nil(t, tr.Items())
	assert.Equal(t, "", tr.Title())
}
