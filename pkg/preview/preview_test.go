package preview

import (
	"image"
	"testing"
)

func TestComputeSizeClampsToMaxBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4096, 4096))
	size := computeSize(img)
	if size.Cols > 80 || size.Rows > 40 {
		t.Fatalf("computeSize did not clamp: %+v", size)
	}
}

func TestComputeSizeClampsToMinBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	size := computeSize(img)
	if size.Cols < 6 || size.Rows < 3 {
		t.Fatalf("computeSize did not enforce minimums: %+v", size)
	}
}

func TestPostImageNewlinesScalesWithRows(t *testing.T) {
	cases := []struct {
		rows, want int
	}{
		{0, 1},
		{2, 1},
		{6, 2},
		{20, 3},
		{40, 4},
	}
	for _, c := range cases {
		if got := postImageNewlines(c.rows); got != c.want {
			t.Errorf("postImageNewlines(%d) = %d, want %d", c.rows, got, c.want)
		}
	}
}

func TestImageRejectsNil(t *testing.T) {
	if err := Image(nil); err == nil {
		t.Fatal("Image(nil) should return an error")
	}
}
