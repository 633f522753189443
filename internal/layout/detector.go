package layout

import (
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"pdf-translator/internal/logger"
)

// Classifier classifies one rendered page into regions. Implementations
// must be pure with respect to the input image: no side effects beyond
// their own state. The concrete model is injected so tests can substitute
// fixture-backed doubles.
type Classifier interface {
	Classify(img image.Image, page int) ([]Region, error)
}

// EnvSharedLibraryPath overrides the onnxruntime shared library location.
const EnvSharedLibraryPath = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// DefaultInputSize is the square raster size the DocLayout-YOLO model expects.
const DefaultInputSize = 1024

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime() error {
	ortInitOnce.Do(func() {
		if p := os.Getenv(EnvSharedLibraryPath); p != "" {
			ort.SetSharedLibraryPath(p)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Detector runs DocLayout-YOLO inference over page rasters.
type Detector struct {
	modelPath     string
	inputSize     int
	confThreshold float32
	iouThreshold  float32

	// onnxruntime sessions are not safe for concurrent Run calls
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// DetectorConfig holds construction options for a Detector.
type DetectorConfig struct {
	ModelPath     string
	InputSize     int     // defaults to DefaultInputSize
	ConfThreshold float32 // defaults to 0.25
	IoUThreshold  float32 // defaults to 0.45
}

// NewDetector loads the ONNX model and prepares an inference session.
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("layout model path not specified")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("layout model not found: %w", err)
	}
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}

	inputSize := cfg.InputSize
	if inputSize <= 0 {
		inputSize = DefaultInputSize
	}
	confThreshold := cfg.ConfThreshold
	if confThreshold <= 0 {
		confThreshold = 0.25
	}
	iouThreshold := cfg.IoUThreshold
	if iouThreshold <= 0 {
		iouThreshold = 0.45
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"images"}, []string{"output0"}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference session: %w", err)
	}

	logger.Info("layout model loaded",
		logger.String("path", cfg.ModelPath),
		logger.Int("inputSize", inputSize))

	return &Detector{
		modelPath:     cfg.ModelPath,
		inputSize:     inputSize,
		confThreshold: confThreshold,
		iouThreshold:  iouThreshold,
		session:       session,
	}, nil
}

// Close releases the inference session.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		err := d.session.Destroy()
		d.session = nil
		return err
	}
	return nil
}

// Classify runs inference over one rendered page and returns the detected
// regions in image pixel coordinates (origin top-left). Use ScaleToPage to
// convert to page coordinates.
func (d *Detector) Classify(img image.Image, page int) ([]Region, error) {
	data, lb := letterbox(img, d.inputSize)

	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(d.inputSize), int64(d.inputSize)), data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	d.mu.Lock()
	if d.session == nil {
		d.mu.Unlock()
		return nil, fmt.Errorf("detector is closed")
	}
	outputs := []ort.Value{nil}
	err = d.session.Run([]ort.Value{input}, outputs)
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}
	defer out.Destroy()

	dets := decodeDetections(out.GetData(), out.GetShape(), d.confThreshold)
	dets = nonMaxSuppression(dets, d.iouThreshold)

	regions := make([]Region, 0, len(dets))
	for _, det := range dets {
		box, ok := lb.toImage(det.box)
		if !ok {
			continue
		}
		regions = append(regions, Region{
			Kind:       classKind(det.class),
			Box:        box,
			Page:       page,
			Confidence: float64(det.score),
		})
	}

	logger.Debug("page classified",
		logger.Int("page", page),
		logger.Int("regions", len(regions)))

	return regions, nil
}

// ScaleToPage converts regions from image pixel coordinates (origin
// top-left) to page coordinates (origin bottom-left, PDF points).
func ScaleToPage(regions []Region, imgW, imgH int, pageW, pageH float64) []Region {
	if imgW <= 0 || imgH <= 0 {
		return regions
	}
	sx := pageW / float64(imgW)
	sy := pageH / float64(imgH)

	out := make([]Region, len(regions))
	for i, r := range regions {
		w := r.Box.Width * sx
		h := r.Box.Height * sy
		x := r.Box.X * sx
		// flip the vertical axis
		y := pageH - (r.Box.Y+r.Box.Height)*sy
		out[i] = Region{Kind: r.Kind, Box: Rect{X: x, Y: y, Width: w, Height: h},
			Page: r.Page, Confidence: r.Confidence}
	}
	return out
}

// DocLayout-YOLO DocStructBench class indices.
var classKinds = map[int]Kind{
	0: KindTitle,
	1: KindText,
	2: KindPageHeader, // "abandon": running headers, footers, page numbers
	3: KindFigure,
	4: KindCaption,
	5: KindTable,
	6: KindCaption,
	7: KindFootnote,
	8: KindFormula,
	9: KindCaption,
}

func classKind(class int) Kind {
	if k, ok := classKinds[class]; ok {
		return k
	}
	return KindText
}
