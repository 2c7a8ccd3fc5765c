package vision

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/golang/geo/r2"
	"gocv.io/x/gocv"
)

// Config holds tracker settings.
type Config struct {
	// DeviceID selects the capture device.
	DeviceID int

	// Width, Height, and FPS are requested capture properties.
	Width  int
	Height int
	FPS    int

	// LowerHSV and UpperHSV bound the marker color. Defaults cover
	// green hues with enough saturation and brightness to reject the
	// background.
	LowerHSV gocv.Scalar
	UpperHSV gocv.Scalar

	// MinArea rejects contours smaller than this many pixels.
	MinArea float64

	// Calibration converts detections to workspace coordinates.
	Calibration Calibration
}

// DefaultConfig returns production defaults for a 640x480 webcam
// tracking a green marker.
func DefaultConfig() Config {
	return Config{
		DeviceID:    0,
		Width:       640,
		Height:      480,
		FPS:         30,
		LowerHSV:    gocv.NewScalar(35, 100, 100, 0),
		UpperHSV:    gocv.NewScalar(85, 255, 255, 0),
		MinArea:     50,
		Calibration: DefaultCalibration(),
	}
}

// Tracker owns a camera capture and the scratch Mats for detection.
type Tracker struct {
	cap    *gocv.VideoCapture
	config Config
	mu     sync.Mutex
	hsv    gocv.Mat
	mask   gocv.Mat
	kernel gocv.Mat
}

// NewTracker opens the capture device and applies the requested
// properties.
func NewTracker(cfg Config) (*Tracker, error) {
	if err := cfg.Calibration.Validate(); err != nil {
		return nil, err
	}

	cap, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("vision: open camera %d: %w", cfg.DeviceID, err)
	}
	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))

	return &Tracker{
		cap:    cap,
		config: cfg,
		hsv:    gocv.NewMat(),
		mask:   gocv.NewMat(),
		kernel: gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(5, 5)),
	}, nil
}

// Config returns the tracker's settings.
func (t *Tracker) Config() Config {
	return t.config
}

// Read grabs one frame and runs detection on it.
func (t *Tracker) Read() (Detection, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	img := gocv.NewMat()
	defer img.Close()
	if ok := t.cap.Read(&img); !ok || img.Empty() {
		return Detection{}, false, fmt.Errorf("vision: read frame from camera %d", t.config.DeviceID)
	}
	d, ok := t.detect(img)
	return d, ok, nil
}

// ReadFrame grabs one frame, runs detection, and returns the frame as
// JPEG for streaming alongside the detection.
func (t *Tracker) ReadFrame() ([]byte, Detection, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	img := gocv.NewMat()
	defer img.Close()
	if ok := t.cap.Read(&img); !ok || img.Empty() {
		return nil, Detection{}, false, fmt.Errorf("vision: read frame from camera %d", t.config.DeviceID)
	}

	d, ok := t.detect(img)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, Detection{}, false, fmt.Errorf("vision: encode frame: %w", err)
	}
	defer buf.Close()
	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())

	return jpeg, d, ok, nil
}

// Detect runs marker detection on a caller-supplied frame.
func (t *Tracker) Detect(frame gocv.Mat) (Detection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detect(frame)
}

// detect thresholds the frame in HSV, cleans the mask with an open and
// a close, and returns the centroid of the largest contour. Callers
// hold t.mu.
func (t *Tracker) detect(frame gocv.Mat) (Detection, bool) {
	gocv.CvtColor(frame, &t.hsv, gocv.ColorBGRToHSV)
	gocv.InRangeWithScalar(t.hsv, t.config.LowerHSV, t.config.UpperHSV, &t.mask)
	gocv.MorphologyEx(t.mask, &t.mask, gocv.MorphOpen, t.kernel)
	gocv.MorphologyEx(t.mask, &t.mask, gocv.MorphClose, t.kernel)

	contours := gocv.FindContours(t.mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 || bestArea < t.config.MinArea {
		return Detection{}, false
	}

	// Moments want a raster, so rasterize just the winning contour.
	single := gocv.Zeros(t.mask.Rows(), t.mask.Cols(), gocv.MatTypeCV8U)
	defer single.Close()
	gocv.DrawContours(&single, contours, best, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	m := gocv.Moments(single, true)
	m00 := m["m00"]
	if m00 == 0 {
		return Detection{}, false
	}

	return Detection{
		Pixel: r2.Point{
			X: math.Trunc(m["m10"] / m00),
			Y: math.Trunc(m["m01"] / m00),
		},
		Area: bestArea,
	}, true
}

// Close releases the capture and scratch Mats.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.hsv.Close()
	t.mask.Close()
	t.kernel.Close()
	if err := t.cap.Close(); err != nil {
		return fmt.Errorf("vision: close camera: %w", err)
	}
	return nil
}
