package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/adtzlr/pacopy/internal/branch"
)

type ExportData struct {
	Problem    string             `json:"problem"`
	Mode       string             `json:"mode"`
	Steps      int                `json:"steps"`
	Status     string             `json:"status"`
	Lambdas    []float64          `json:"lambdas"`
	ArcLengths []float64          `json:"arc_lengths"`
	States     [][]float64        `json:"states"`
	Folds      []FoldRecord       `json:"folds,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

func ExportJSON(out io.Writer, problem, mode string, result *branch.Result) error {
	data := ExportData{
		Problem:    problem,
		Mode:       mode,
		Steps:      result.Steps,
		Status:     result.Status.String(),
		Lambdas:    result.Lambdas(),
		ArcLengths: result.ArcLengths(),
		States:     make([][]float64, len(result.Points)),
		Folds:      foldRecords(result),
		Metrics:    result.Metrics,
	}
	for i, p := range result.Points {
		data.States[i] = p.U
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path, problem, mode string, result *branch.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, problem, mode, result)
}
