package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/macrocam/macrocam/internal/models"
)

// Record is one exported analysis row.
type Record struct {
	ID          string `parquet:"id" json:"id"`
	Filename    string `parquet:"filename" json:"filename"`
	Size        int64  `parquet:"size" json:"size"`
	ImageFormat string `parquet:"image_format" json:"image_format"`
	ImageWidth  int64  `parquet:"image_width" json:"image_width"`
	ImageHeight int64  `parquet:"image_height" json:"image_height"`
	Status      string `parquet:"status" json:"status"`
	Macros      string `parquet:"macros" json:"macros"`
	Error       string `parquet:"error" json:"error"`
	DurationMS  int64  `parquet:"duration_ms" json:"duration_ms"`
	// CreatedAt is Unix milliseconds.
	CreatedAt int64 `parquet:"created_at" json:"created_at"`
}

func NewRecord(a models.Analysis) Record {
	return Record{
		ID:          a.ID,
		Filename:    a.Filename,
		Size:        a.Size,
		ImageFormat: a.ImageFormat,
		ImageWidth:  int64(a.ImageWidth),
		ImageHeight: int64(a.ImageHeight),
		Status:      a.Status,
		Macros:      a.Macros,
		Error:       a.Error,
		DurationMS:  a.DurationMS,
		CreatedAt:   a.CreatedAt.UnixMilli(),
	}
}

// Time returns CreatedAt as a time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.CreatedAt)
}

// Write stores analyses at path as Parquet or JSONL, chosen by extension.
func Write(path string, analyses []models.Analysis) error {
	records := make([]Record, 0, len(analyses))
	for _, a := range analyses {
		records = append(records, NewRecord(a))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return writeFile(path, records, writeParquet)
	case ".jsonl", ".json":
		return writeFile(path, records, writeJSONL)
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func writeFile(path string, records []Record, encode func(io.Writer, []Record) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := encode(file, records); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	slog.Debug("Exported analyses", "path", path, "records", len(records))
	return nil
}

func writeParquet(w io.Writer, records []Record) error {
	writer := parquet.NewGenericWriter[Record](w)
	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

func writeJSONL(w io.Writer, records []Record) error {
	buf := bufio.NewWriter(w)
	encoder := json.NewEncoder(buf)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", record.ID, err)
		}
	}
	return buf.Flush()
}

// Load reads records previously written by Write.
func Load(path string) ([]Record, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return loadParquet(path)
	case ".jsonl", ".json":
		return loadJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func loadJSONL(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading export file: %w", err)
	}

	return records, nil
}

func loadParquet(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	var records []Record
	rows := make([]Record, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return records, nil
}
