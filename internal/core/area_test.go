package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquaredAreaGeometry(t *testing.T) {
	g := NewGrid(10, 10, 1.0)
	a := Area{ID: 1, Kind: AreaSquared, Origin: TileIndex{X: 2, Y: 3}, Width: 3, Height: 2}

	assert.True(t, a.Contains(TileIndex{X: 2, Y: 3}))
	assert.True(t, a.Contains(TileIndex{X: 4, Y: 4}))
	assert.False(t, a.Contains(TileIndex{X: 5, Y: 3}))
	assert.False(t, a.Contains(TileIndex{X: 2, Y: 5}))

	assert.Len(t, a.Tiles(g), 6)
	assert.True(t, a.FitsWithin(g))
	assert.Equal(t, TileSquaredBlocked, a.TileType())
}

func TestCircledAreaGeometry(t *testing.T) {
	g := NewGrid(10, 10, 1.0)
	a := Area{ID: 2, Kind: AreaCircled, Origin: TileIndex{X: 5, Y: 5}, Radius: 2}

	assert.True(t, a.Contains(TileIndex{X: 5, Y: 5}))
	assert.True(t, a.Contains(TileIndex{X: 7, Y: 5}), "radius tiles are included")
	assert.False(t, a.Contains(TileIndex{X: 7, Y: 7}), "corner outside the disc")

	// r=2 disc covers 13 tiles: the 5-tile cross plus the 8 inner ring tiles.
	assert.Len(t, a.Tiles(g), 13)
	assert.Equal(t, TileCircledBlocked, a.TileType())
}

func TestFitsWithin(t *testing.T) {
	g := NewGrid(10, 10, 1.0)

	tests := []struct {
		name string
		area Area
		fits bool
	}{
		{"square inside", Area{Kind: AreaSquared, Origin: TileIndex{X: 7, Y: 7}, Width: 3, Height: 3}, true},
		{"square over right edge", Area{Kind: AreaSquared, Origin: TileIndex{X: 8, Y: 0}, Width: 3, Height: 1}, false},
		{"square negative origin", Area{Kind: AreaSquared, Origin: TileIndex{X: -1, Y: 0}, Width: 2, Height: 2}, false},
		{"circle inside", Area{Kind: AreaCircled, Origin: TileIndex{X: 5, Y: 5}, Radius: 4}, true},
		{"circle clipped", Area{Kind: AreaCircled, Origin: TileIndex{X: 1, Y: 5}, Radius: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fits, tt.area.FitsWithin(g))
		})
	}
}

func TestBoundary(t *testing.T) {
	g := NewGrid(10, 10, 1.0)

	a := Area{ID: 3, Kind: AreaIsolated, Origin: TileIndex{X: 2, Y: 2}, Width: 3, Height: 3}
	boundary := a.Boundary(g)
	require.Len(t, boundary, 8, "3x3 boundary is everything but the center")
	for _, b := range boundary {
		assert.NotEqual(t, TileIndex{X: 3, Y: 3}, b)
	}

	// A 2x2 area is all boundary.
	small := Area{ID: 4, Kind: AreaIsolated, Origin: TileIndex{X: 6, Y: 6}, Width: 2, Height: 2}
	assert.Len(t, small.Boundary(g), 4)
}

func TestParseModes(t *testing.T) {
	b, err := ParseBounceMode("ping-pong")
	require.NoError(t, err)
	assert.Equal(t, BouncePingPong, b)

	b, err = ParseBounceMode("random")
	require.NoError(t, err)
	assert.Equal(t, BounceRandom, b)

	_, err = ParseBounceMode("zigzag")
	assert.Error(t, err)

	c, err := ParseCutMode("random-sweep")
	require.NoError(t, err)
	assert.Equal(t, CutRandomSweep, c)

	_, err = ParseCutMode("")
	assert.Error(t, err)

	p, err := ParseAutonomyPolicy("distance")
	require.NoError(t, err)
	assert.Equal(t, AutonomyPerDistance, p)

	_, err = ParseAutonomyPolicy("solar")
	assert.Error(t, err)
}
