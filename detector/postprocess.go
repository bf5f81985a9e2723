package detector

import (
	"math"
	"sort"

	"detection_api/datastructures"
)

type candidate struct {
	x1, y1, x2, y2 float32
	conf           float32
	class          int
}

// decodeOutput turns the raw [1, 4+C, A] output tensor into detections in
// the original image's pixel space. Per anchor the layout is 4 box values
// (center x, center y, width, height in input-size coordinates) followed by
// C class scores; the anchor's confidence is its best class score.
func decodeOutput(output []float32, labels []string, opts Options, anchors, origWidth, origHeight int) []datastructures.Detection {
	numClasses := len(labels)
	scaleX := float32(origWidth) / float32(opts.InputSize)
	scaleY := float32(origHeight) / float32(opts.InputSize)

	var candidates []candidate
	for i := 0; i < anchors; i++ {
		classID, conf := 0, float32(0.0)
		for j := 0; j < numClasses; j++ {
			if s := output[(4+j)*anchors+i]; s > conf {
				conf = s
				classID = j
			}
		}
		if conf < opts.ConfThreshold {
			continue
		}

		xc := output[i]
		yc := output[anchors+i]
		w := output[2*anchors+i]
		h := output[3*anchors+i]

		candidates = append(candidates, candidate{
			x1:    clamp((xc-w/2)*scaleX, 0, float32(origWidth)),
			y1:    clamp((yc-h/2)*scaleY, 0, float32(origHeight)),
			x2:    clamp((xc+w/2)*scaleX, 0, float32(origWidth)),
			y2:    clamp((yc+h/2)*scaleY, 0, float32(origHeight)),
			conf:  conf,
			class: classID,
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].conf > candidates[b].conf
	})

	kept := nonMaxSuppression(candidates, opts.IOUThreshold)

	detections := make([]datastructures.Detection, 0, len(kept))
	for _, c := range kept {
		detections = append(detections, datastructures.Detection{
			Class:      labels[c.class],
			Confidence: round(float64(c.conf), 4),
			BBox: datastructures.BoundingBox{
				X1: round(float64(c.x1), 2),
				Y1: round(float64(c.y1), 2),
				X2: round(float64(c.x2), 2),
				Y2: round(float64(c.y2), 2),
			},
		})
	}
	return detections
}

// nonMaxSuppression expects the candidates sorted by confidence descending
// and drops every box that overlaps an already kept box of the same class.
func nonMaxSuppression(sorted []candidate, iouThreshold float32) []candidate {
	var kept []candidate
	for _, c := range sorted {
		keep := true
		for _, k := range kept {
			if k.class == c.class && iou(k, c) > iouThreshold {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, c)
		}
	}
	return kept
}

func iou(a, b candidate) float32 {
	interX1 := max32(a.x1, b.x1)
	interY1 := max32(a.y1, b.y1)
	interX2 := min32(a.x2, b.x2)
	interY2 := min32(a.y2, b.y2)

	interW := interX2 - interX1
	interH := interY2 - interY1
	if interW <= 0 || interH <= 0 {
		return 0
	}

	interArea := interW * interH
	areaA := (a.x2 - a.x1) * (a.y2 - a.y1)
	areaB := (b.x2 - b.x1) * (b.y2 - b.y1)
	union := areaA + areaB - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
