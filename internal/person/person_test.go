package person

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFields_MergeNonEmpty(t *testing.T) {
	t.Parallel()

	headshot := uuid.New()
	newHeadshot := uuid.New()

	tests := []struct {
		name string
		dst  Fields
		src  Fields
		want Fields
	}{
		{
			name: "empty source keeps existing values",
			dst: Fields{
				Email:       "jane@x.com",
				Phone:       "555-1",
				Specialties: []string{"FHA"},
				HeadshotID:  &headshot,
			},
			src: Fields{Email: "jane@x.com"},
			want: Fields{
				Email:       "jane@x.com",
				Phone:       "555-1",
				Specialties: []string{"FHA"},
				HeadshotID:  &headshot,
			},
		},
		{
			name: "non-empty source overwrites",
			dst:  Fields{Phone: "555-1", JobTitle: "LO", Languages: []string{"English"}},
			src:  Fields{Phone: "555-2", Languages: []string{"Spanish"}, HeadshotID: &newHeadshot},
			want: Fields{Phone: "555-2", JobTitle: "LO", Languages: []string{"Spanish"}, HeadshotID: &newHeadshot},
		},
		{
			name: "all string fields",
			src: Fields{
				Email: "a@b.c", Phone: "1", JobTitle: "2", NMLS: "3", LicenseNumber: "4", Biography: "5",
			},
			want: Fields{
				Email: "a@b.c", Phone: "1", JobTitle: "2", NMLS: "3", LicenseNumber: "4", Biography: "5",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.dst
			got.MergeNonEmpty(tt.src)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPerson_CloneIsDeep(t *testing.T) {
	t.Parallel()

	headshot := uuid.New()
	deleted := time.Now()
	p := &Person{
		Fields:    Fields{Specialties: []string{"FHA"}, HeadshotID: &headshot},
		DeletedAt: &deleted,
	}

	c := p.Clone()
	c.Fields.Specialties[0] = "VA"
	*c.Fields.HeadshotID = uuid.New()
	*c.DeletedAt = deleted.Add(time.Hour)

	assert.Equal(t, "FHA", p.Fields.Specialties[0])
	assert.Equal(t, headshot, *p.Fields.HeadshotID)
	assert.Equal(t, deleted, *p.DeletedAt)
	assert.Nil(t, (*Person)(nil).Clone())
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "case and whitespace", email: "  Jane@Example.COM ", want: "jane@example.com"},
		{name: "decomposed accent", email: "Jose\u0301@example.com", want: "jos\u00e9@example.com"},
		{name: "composed accent", email: "JOS\u00c9@example.com", want: "jos\u00e9@example.com"},
		{name: "blank", email: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeEmail(tt.email))
		})
	}
}
