package vision

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/kbinani/screenshot"
	"gocv.io/x/gocv"
)

// Capturer grabs the configured screen region and tracks frame-to-frame
// change so the scan loop can skip identical frames.
type Capturer struct {
	region        image.Rectangle
	diffThreshold float64
	lastFrame     *gocv.Mat
	mu            sync.Mutex
}

// NewCapturer creates a capturer for the given board region.
func NewCapturer(region CaptureRegion, diffThreshold float64) (*Capturer, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, errors.New("capture region has no area")
	}
	return &Capturer{
		region:        region.ToRectangle(),
		diffThreshold: diffThreshold,
	}, nil
}

// CaptureFrame captures the current screen region as a BGRA mat. The
// caller owns the returned mat and must Close it.
func (c *Capturer) CaptureFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, err := screenshot.CaptureRect(c.region)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}

	mat, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}

	return mat, nil
}

// DetectChange reports whether the frame differs enough from the previous
// one to be worth a full recognition pass, along with the mean pixel
// difference. The first frame always reads as changed.
func (c *Capturer) DetectChange(frame *gocv.Mat) (bool, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if frame.Empty() {
		return false, 0, errors.New("empty frame")
	}

	if c.lastFrame == nil {
		c.lastFrame = &gocv.Mat{}
		frame.CopyTo(c.lastFrame)
		return true, 255.0, nil
	}

	gray1 := gocv.NewMat()
	defer gray1.Close()
	gray2 := gocv.NewMat()
	defer gray2.Close()

	gocv.CvtColor(*c.lastFrame, &gray1, gocv.ColorBGRAToGray)
	gocv.CvtColor(*frame, &gray2, gocv.ColorBGRAToGray)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray1, gray2, &diff)

	meanVal := diff.Mean().Val1
	changed := meanVal > c.diffThreshold

	if changed {
		frame.CopyTo(c.lastFrame)
	}

	return changed, meanVal, nil
}

// Close releases the retained frame.
func (c *Capturer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastFrame != nil {
		c.lastFrame.Close()
		c.lastFrame = nil
	}
}

// LoadFrame reads a board image from disk in the same BGRA layout
// CaptureFrame produces, for analyzing saved screenshots.
func LoadFrame(path string) (*gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("failed to read image %s", path)
	}
	defer img.Close()

	bgra := gocv.NewMat()
	gocv.CvtColor(img, &bgra, gocv.ColorBGRToBGRA)
	return &bgra, nil
}

// imageToMat converts image.Image to a BGRA gocv.Mat.
func imageToMat(img image.Image) (*gocv.Mat, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.New("empty image")
	}

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*4+0, uint8(b>>8))
			mat.SetUCharAt(y, x*4+1, uint8(g>>8))
			mat.SetUCharAt(y, x*4+2, uint8(r>>8))
			mat.SetUCharAt(y, x*4+3, uint8(a>>8))
		}
	}

	return &mat, nil
}
