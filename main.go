package main

import (
	"flag"
	"fmt"

	"github.com/getsentry/raven-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"detection_api/detector"
	"detection_api/handlers"
	"detection_api/middlewares"
)

func main() {
	log.SetLevel(log.DebugLevel)

	releaseMode := flag.Bool("release", false, "Run in release mode")
	listenAddress := flag.String("listen-address", ":8080", "Address the API listens on")
	modelDir := flag.String("model-dir", "./models/yolov8n/", "Directory containing model.onnx, labels.txt and model_info.json")
	onnxruntimeLib := flag.String("onnxruntime-lib", "./third_party/onnxruntime.so", "Path to the onnxruntime shared library")
	confThreshold := flag.Float64("conf-threshold", 0.25, "Minimum confidence for a detection to be reported")
	iouThreshold := flag.Float64("iou-threshold", 0.7, "IoU threshold used for non-maximum suppression")
	numSessions := flag.Int("sessions", 2, "Number of model sessions to preallocate")
	sentryDsn := flag.String("sentry-dsn", "", "Sentry DSN for internal error reporting")

	flag.Parse()
	if *releaseMode {
		fmt.Printf("[Main] Starting gin in release mode!\n")
		gin.SetMode(gin.ReleaseMode)
	}

	if *sentryDsn != "" {
		if err := raven.SetDSN(*sentryDsn); err != nil {
			log.Debug("[Main] Couldn't set sentry DSN: ", err.Error())
		}
	}

	log.Debug("[Main] Initializing ONNX runtime...")
	ort.SetSharedLibraryPath(*onnxruntimeLib)
	if err := ort.InitializeEnvironment(); err != nil {
		log.Fatal("[Main] Couldn't initialize ONNX runtime: ", err.Error())
	}
	defer ort.DestroyEnvironment()

	opts := detector.DefaultOptions()
	opts.ConfThreshold = float32(*confThreshold)
	opts.IOUThreshold = float32(*iouThreshold)
	opts.Sessions = *numSessions

	log.Debug("[Main] Loading model...")
	det, err := detector.New(*modelDir, opts)
	if err != nil {
		log.Fatal("[Main] Couldn't load model: ", err.Error())
	}
	defer det.Close()

	router := gin.Default()
	router.Use(middlewares.Cors())

	router.POST("/detect", handlers.DetectHandler(det))
	router.GET("/health", handlers.HealthHandler(det.ModelInfo()))

	log.Debug("[Main] Listening on ", *listenAddress)
	router.Run(*listenAddress)
}
