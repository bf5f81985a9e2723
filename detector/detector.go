package detector

import (
	"fmt"
	"image"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"detection_api/datastructures"
)

type Options struct {
	InputSize     int
	ConfThreshold float32
	IOUThreshold  float32
	Sessions      int
}

func DefaultOptions() Options {
	return Options{
		InputSize:     640,
		ConfThreshold: 0.25,
		IOUThreshold:  0.7,
		Sessions:      2,
	}
}

type modelSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// ONNXDetector runs a YOLO-style ONNX model. The underlying sessions have
// their input/output tensors bound at creation time and therefore must not
// be used by two requests at once; they are kept in a buffered channel and
// concurrent callers block until a session is free.
type ONNXDetector struct {
	labels    []string
	modelInfo datastructures.ModelInfo
	opts      Options
	anchors   int
	sessions  chan *modelSession
}

// New loads labels.txt, model_info.json and model.onnx from modelDir and
// preallocates opts.Sessions inference sessions. The ONNX runtime
// environment has to be initialized before calling this.
func New(modelDir string, opts Options) (*ONNXDetector, error) {
	if opts.Sessions < 1 {
		opts.Sessions = 1
	}

	labels, err := loadLabels(filepath.Join(modelDir, "labels.txt"))
	if err != nil {
		log.Debug("[Model] Couldn't get labels: ", err.Error())
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file is empty")
	}

	// model_info.json is metadata only, a missing file is not fatal
	modelInfo, err := loadModelInfo(filepath.Join(modelDir, "model_info.json"))
	if err != nil {
		log.Debug("[Model] Couldn't read model info: ", err.Error())
	}

	d := &ONNXDetector{
		labels:    labels,
		modelInfo: modelInfo,
		opts:      opts,
		anchors:   anchorCount(opts.InputSize),
		sessions:  make(chan *modelSession, opts.Sessions),
	}

	modelPath := filepath.Join(modelDir, "model.onnx")
	for i := 0; i < opts.Sessions; i++ {
		ms, err := newModelSession(modelPath, opts.InputSize, len(labels), d.anchors)
		if err != nil {
			d.Close()
			log.Debug("[Model] Couldn't create session: ", err.Error())
			return nil, err
		}
		d.sessions <- ms
	}

	return d, nil
}

// anchorCount is the number of candidate boxes a YOLO head emits for a
// square input: one per cell at strides 8, 16 and 32.
func anchorCount(inputSize int) int {
	s8 := inputSize / 8
	s16 := inputSize / 16
	s32 := inputSize / 32
	return s8*s8 + s16*s16 + s32*s32
}

func newModelSession(modelPath string, inputSize, numClasses, anchors int) (*modelSession, error) {
	size := int64(inputSize)
	inputShape := ort.NewShape(1, 3, size, size)
	inputTensor, err := ort.NewTensor(inputShape, make([]float32, 3*inputSize*inputSize))
	if err != nil {
		return nil, err
	}

	outputShape := ort.NewShape(1, int64(4+numClasses), int64(anchors))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}
	defer options.Destroy()

	// one request per session, keep the per-session thread usage down
	options.SetIntraOpNumThreads(1)
	options.SetInterOpNumThreads(1)

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}

	return &modelSession{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

// Detect runs the model on one decoded image and returns the detections in
// the model's output order (highest confidence first), with coordinates in
// the pixel space of img.
func (d *ONNXDetector) Detect(img image.Image) ([]datastructures.Detection, error) {
	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	if origWidth <= 0 || origHeight <= 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	input := prepareInput(img, d.opts.InputSize)

	ms := <-d.sessions
	copy(ms.input.GetData(), input)
	err := ms.session.Run()
	var raw []float32
	if err == nil {
		// copy the output before the session goes back into the pool
		data := ms.output.GetData()
		raw = make([]float32, len(data))
		copy(raw, data)
	}
	d.sessions <- ms

	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return decodeOutput(raw, d.labels, d.opts, d.anchors, origWidth, origHeight), nil
}

func (d *ONNXDetector) ModelInfo() datastructures.ModelInfo {
	return d.modelInfo
}

func (d *ONNXDetector) Close() {
	for {
		select {
		case ms := <-d.sessions:
			ms.session.Destroy()
			ms.input.Destroy()
			ms.output.Destroy()
		default:
			return
		}
	}
}
