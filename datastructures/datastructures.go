package datastructures

type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type Detection struct {
	Class      string      `json:"class"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
}

type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type DetectionResponse struct {
	ImageInfo      ImageInfo   `json:"image_info"`
	Detections     []Detection `json:"detections"`
	DetectionCount int         `json:"detection_count"`
}

type ModelInfo struct {
	Name    string `json:"name"`
	Created string `json:"created"`
	BasedOn string `json:"based_on"`
}
