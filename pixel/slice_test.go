package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlicer(t *testing.T) {
	t.Parallel()

	yields := 0
	s := NewSlicer(3, func() { yields++ })
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	assert.Equal(t, 3, yields)
	assert.Equal(t, 3, s.Slices())

	tests := []struct {
		name  string
		s     *Slicer
		width int
		want  int
	}{
		{name: "nil", s: nil, width: 10, want: 0},
		{name: "不切片", s: NewSlicer(0, nil), width: 10, want: 0},
		{name: "不足一行", s: NewSlicer(3, nil), width: 10, want: 1},
		{name: "多行", s: NewSlicer(25, nil), width: 10, want: 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.s.Rows(tt.width))
		})
	}

	var none *Slicer
	none.Tick()
	assert.Equal(t, 0, none.Slices())
}
