package handlers

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/getsentry/raven-go"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"detection_api/datastructures"
	"detection_api/detector"
)

// Detector is the injected model dependency. The handler never constructs
// one itself; the process owns a single instance for its lifetime.
type Detector interface {
	Detect(img image.Image) ([]datastructures.Detection, error)
}

func DetectHandler(det Detector) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := uuid.Must(uuid.NewV4()).String()

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(400, gin.H{"error": "Image is missing"})
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			c.JSON(400, gin.H{"error": "File must be an image"})
			return
		}

		raw, err := io.ReadAll(file)
		if err != nil {
			log.Debug("[Detect] ", requestId, " couldn't read upload: ", err.Error())
			raven.CaptureError(err, map[string]string{"request": requestId})
			c.JSON(500, gin.H{"error": "Couldn't process request - please try again later"})
			return
		}

		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid image file"})
			return
		}

		//normalize camera orientation before the model sees the pixels;
		//the reported image_info and all boxes are in the oriented space
		img = detector.Orient(raw, img)

		bounds := img.Bounds()
		if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
			c.JSON(400, gin.H{"error": "Invalid image file"})
			return
		}

		detections, err := det.Detect(img)
		if err != nil {
			log.Debug("[Detect] ", requestId, " couldn't run detection: ", err.Error())
			raven.CaptureError(err, map[string]string{"request": requestId})
			c.JSON(500, gin.H{"error": "Couldn't process request - please try again later"})
			return
		}

		if detections == nil {
			detections = []datastructures.Detection{}
		}

		c.JSON(http.StatusOK, datastructures.DetectionResponse{
			ImageInfo: datastructures.ImageInfo{
				Width:  bounds.Dx(),
				Height: bounds.Dy(),
			},
			Detections:     detections,
			DetectionCount: len(detections),
		})
	}
}

func HealthHandler(modelInfo datastructures.ModelInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "model_info": modelInfo})
	}
}
