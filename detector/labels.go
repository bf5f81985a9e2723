package detector

import (
	"bufio"
	"encoding/json"
	"os"

	log "github.com/sirupsen/logrus"

	"detection_api/datastructures"
)

// loadLabels reads the class label table, one label per line. The line
// number is the class index the model emits.
func loadLabels(path string) ([]string, error) {
	var labels []string
	file, err := os.Open(path)
	if err != nil {
		log.Debug("[Loading Labels] Couldn't open file: ", err)
		return labels, err
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		labels = append(labels, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Debug("[Loading Labels] Failed to read labels file: ", err.Error())
		return labels, err
	}

	return labels, nil
}

func loadModelInfo(path string) (datastructures.ModelInfo, error) {
	var modelInfo datastructures.ModelInfo

	data, err := os.ReadFile(path)
	if err != nil {
		return modelInfo, err
	}

	err = json.Unmarshal(data, &modelInfo)
	if err != nil {
		return modelInfo, err
	}

	return modelInfo, nil
}
