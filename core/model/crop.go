package model

import (
	"fmt"
	"image"
	"math"
)

// CropData is the fractional inset of one image. Each value is in [0,1).
type CropData struct {
	ID     string
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Validate checks that the insets leave a non-empty region.
func (c CropData) Validate() error {
	for _, v := range []float64{c.Left, c.Right, c.Top, c.Bottom} {
		if v < 0 || v >= 1 || math.IsNaN(v) {
			return fmt.Errorf("crop value %v out of range [0,1)", v)
		}
	}
	if c.Left+c.Right >= 1 {
		return fmt.Errorf("horizontal insets %v+%v leave no image", c.Left, c.Right)
	}
	if c.Top+c.Bottom >= 1 {
		return fmt.Errorf("vertical insets %v+%v leave no image", c.Top, c.Bottom)
	}
	return nil
}

// Rect returns the pixel rectangle kept by the crop for an image of the
// given dimensions.
func (c CropData) Rect(width, height int) image.Rectangle {
	x0 := int(math.Round(c.Left * float64(width)))
	y0 := int(math.Round(c.Top * float64(height)))
	x1 := width - int(math.Round(c.Right*float64(width)))
	y1 := height - int(math.Round(c.Bottom*float64(height)))
	return image.Rect(x0, y0, x1, y1)
}

// CropInfo holds the crop data of a book, in file order.
type CropInfo struct {
	Entries []CropData
}

// Find returns the crop data for an image id.
func (c *CropInfo) Find(id string) (CropData, bool) {
	if c == nil {
		return CropData{}, false
	}
	for _, e := range c.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return CropData{}, false
}
