package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adtzlr/pacopy/internal/branch"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Problem   string             `json:"problem"`
	Mode      string             `json:"mode"`
	Timestamp time.Time          `json:"timestamp"`
	Step0     float64            `json:"step0"`
	Steps     int                `json:"steps"`
	Rejects   int                `json:"rejects"`
	Status    string             `json:"status"`
	Params    map[string]float64 `json:"params,omitempty"`
	Folds     []FoldRecord       `json:"folds,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

type FoldRecord struct {
	Lambda  float64 `json:"lambda"`
	Refined bool    `json:"refined"`
}

// Save writes one traced branch as a run directory holding metadata.json
// and branch.csv. It returns the generated run id.
func (s *Store) Save(problem, mode string, step0 float64, params map[string]float64, result *branch.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", problem, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Problem:   problem,
		Mode:      mode,
		Timestamp: time.Now(),
		Step0:     step0,
		Steps:     result.Steps,
		Rejects:   result.Rejects,
		Status:    result.Status.String(),
		Params:    params,
		Folds:     foldRecords(result),
		Metrics:   result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "branch.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteBranchCSV(csvFile, result.Points); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteBranchCSV writes accepted points as index,lambda,s,u0..un rows.
// Values keep full float64 precision so a stored point can restart a trace.
func WriteBranchCSV(out io.Writer, points []branch.Point) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if len(points) == 0 {
		return nil
	}

	header := []string{"index", "lambda", "s"}
	for i := range points[0].U {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range points {
		row := []string{
			strconv.Itoa(p.Index),
			strconv.FormatFloat(p.Lambda, 'g', -1, 64),
			strconv.FormatFloat(p.S, 'g', -1, 64),
		}
		for _, val := range p.U {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadBranch reads the stored points of a run back into memory. Rows that
// fail to parse are skipped.
func (s *Store) LoadBranch(runID string) ([]branch.Point, error) {
	csvPath := filepath.Join(s.baseDir, runID, "branch.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []branch.Point{}, nil
	}

	points := make([]branch.Point, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 3 {
			continue
		}

		index, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		lambda, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		arc, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}

		u := make(branch.State, 0, len(record)-3)
		for j := 3; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			u = append(u, val)
		}
		points = append(points, branch.Point{U: u, Lambda: lambda, S: arc, Index: index})
	}

	return points, nil
}

func foldRecords(result *branch.Result) []FoldRecord {
	if len(result.Folds) == 0 {
		return nil
	}
	records := make([]FoldRecord, len(result.Folds))
	for i, ev := range result.Folds {
		records[i] = FoldRecord{Lambda: ev.Lambda, Refined: ev.Refined}
	}
	return records
}
