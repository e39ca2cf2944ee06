package buffers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doubled(t *testing.T, times int) *Metadata {
	t.Helper()
	m := Seed()
	for range times {
		var ok bool
		m, ok = m.Double()
		require.True(t, ok)
	}
	return m
}

func TestSeed(t *testing.T) {
	s := Seed()
	assert.Equal(t, uint16(1), s.Size())
	assert.True(t, s.IsBinary())
	assert.Zero(t, s.ComponentCount())
	assert.Empty(t, s.Components())
	assert.Equal(t, "1", s.String())
	assert.Equal(t, uint16(1), s.MaxValue())
}

func TestMetadata_Additivity(t *testing.T) {
	shapes := []*Metadata{Seed(), doubled(t, 1), doubled(t, 2), doubled(t, 5), doubled(t, 10)}
	three, ok := shapes[1].Compose(shapes[0])
	require.True(t, ok)
	shapes = append(shapes, three)

	for _, a := range shapes {
		for _, b := range shapes {
			c, ok := a.Compose(b)
			require.True(t, ok)
			assert.Equal(t, a.Size()+b.Size(), c.Size(), "%s + %s", a, b)
			assert.Equal(t, 2, c.ComponentCount())
			assert.Equal(t, a.IsBinary() && b.IsBinary() && a.Size() == b.Size(), c.IsBinary(), "%s + %s", a, b)
		}
		d, ok := a.Double()
		require.True(t, ok)
		assert.Equal(t, 2*a.Size(), d.Size())
	}
}

func TestMetadata_Overflow(t *testing.T) {
	top := doubled(t, 15)
	require.Equal(t, uint16(32768), top.Size())
	assert.Equal(t, uint16(65535), top.MaxValue())

	_, ok := top.Double()
	assert.False(t, ok)

	half := doubled(t, 14)
	m, ok := top.Compose(half)
	require.True(t, ok)
	assert.Equal(t, uint16(49152), m.Size())
	assert.False(t, m.IsBinary())
}

func TestMetadata_MaxValue(t *testing.T) {
	assert.Equal(t, uint16(15), doubled(t, 3).MaxValue())
	assert.Equal(t, uint16(2047), doubled(t, 10).MaxValue())
}

func TestMetadata_StringAndTree(t *testing.T) {
	four := doubled(t, 2)
	two := doubled(t, 1)
	six, _ := four.Compose(two)
	seven, _ := six.Compose(Seed())

	assert.Equal(t, "4=(2+2)", four.String())
	assert.Equal(t, "6=(4+2)", six.String())
	assert.Equal(t, "4=(2b+2b)", four.Tree())
	assert.Equal(t, "7=(6=(4b+2b)+1b)", seven.Tree())
}

func TestMetadata_Equal(t *testing.T) {
	assert.True(t, doubled(t, 3).Equal(doubled(t, 3)))
	assert.False(t, doubled(t, 3).Equal(doubled(t, 2)))

	a, _ := doubled(t, 1).Compose(Seed())
	b, _ := Seed().Compose(doubled(t, 1))
	assert.False(t, a.Equal(b), "layout order matters")
}

func TestMetadata_ComponentsIsCopy(t *testing.T) {
	m := doubled(t, 1)
	comps := m.Components()
	comps[0] = nil
	assert.NotNil(t, m.Components()[0])
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		size uint16
		want []uint16
	}{
		{0, []uint16{}},
		{1, []uint16{1}},
		{5, []uint16{4, 1}},
		{7, []uint16{4, 2, 1}},
		{96, []uint16{64, 32}},
		{65535, []uint16{32768, 16384, 8192, 4096, 2048, 1024, 512, 256, 128, 64, 32, 16, 8, 4, 2, 1}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Decompose(tt.size)); diff != "" {
			t.Errorf("Decompose(%d) mismatch (-want +got):\n%s", tt.size, diff)
		}
	}
}
