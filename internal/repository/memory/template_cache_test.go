package memory

import (
	"testing"
	"time"

	"summarizer-session-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTemplateCache(t *testing.T) {
	c := NewTemplateCache(time.Minute)
	templates := []*entity.AssignmentTemplate{{Id: uuid.New(), Topic: "D31"}}

	_, ok := c.Get("D31")
	assert.False(t, ok)

	c.Save("D31", templates)
	got, ok := c.Get("D31")
	assert.True(t, ok)
	assert.Equal(t, templates, got)

	c.Delete("D31")
	_, ok = c.Get("D31")
	assert.False(t, ok)
}

func TestTemplateCache_Expires(t *testing.T) {
	c := NewTemplateCache(20 * time.Millisecond)
	c.Save("D31", []*entity.AssignmentTemplate{{Id: uuid.New()}})

	time.Sleep(50 * time.Millisecond)
	_, ok := c.Get("D31")
	assert.False(t, ok)
}
