package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

// headerRowOffset converts a data row index into the row number a user sees
// in their spreadsheet: rows are 1-indexed and the header occupies row 1.
const headerRowOffset = 2

type importStudentRepository interface {
	ExistsByAdmissionNumber(ctx context.Context, admissionNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type importClassRepository interface {
	FindByName(ctx context.Context, schoolID, name string) (*models.ClassDetail, error)
}

type importMetrics interface {
	ObserveImportRow(created bool)
}

// ImportService ingests bulk student uploads. Rows fail independently: a bad
// row is reported with its spreadsheet row number and never aborts the rest
// of the file.
type ImportService struct {
	students importStudentRepository
	classes  importClassRepository
	metrics  importMetrics
	logger   *zap.Logger
}

// NewImportService constructs an ImportService instance. metrics may be nil.
func NewImportService(students importStudentRepository, classes importClassRepository, metrics importMetrics, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{students: students, classes: classes, metrics: metrics, logger: logger}
}

func (s *ImportService) observeRow(created bool) {
	if s.metrics != nil {
		s.metrics.ObserveImportRow(created)
	}
}

// ImportStudents reads a CSV of students and creates one record per valid
// row. Expected columns: admission_number, full_name, gender, class_name.
// The class column is optional and resolved by name within the school.
func (s *ImportService) ImportStudents(ctx context.Context, schoolID string, r io.Reader) (*models.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read header row")
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	summary := &models.ImportSummary{Errors: []string{}}
	seen := make(map[string]int)

	for i := 0; ; i++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum := i + headerRowOffset
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: malformed row", rowNum))
			s.observeRow(false)
			continue
		}

		rowErr, err := s.importRow(ctx, schoolID, columns, row, rowNum, seen)
		if err != nil {
			return nil, err
		}
		if rowErr != "" {
			summary.Errors = append(summary.Errors, rowErr)
			s.observeRow(false)
			continue
		}
		summary.Created++
		s.observeRow(true)
	}

	return summary, nil
}

// importRow processes one data row. A bad row comes back as a non-empty
// message; only infrastructure failures return an error and abort the file.
func (s *ImportService) importRow(ctx context.Context, schoolID string, columns columnMap, row []string, rowNum int, seen map[string]int) (string, error) {
	admissionNumber := columns.value(row, "admission_number")
	fullName := columns.value(row, "full_name")
	gender := strings.ToLower(columns.value(row, "gender"))
	className := columns.value(row, "class_name")

	if admissionNumber == "" {
		return fmt.Sprintf("row %d: admission_number is required", rowNum), nil
	}
	if fullName == "" {
		return fmt.Sprintf("row %d: full_name is required", rowNum), nil
	}
	if firstRow, dup := seen[admissionNumber]; dup {
		return fmt.Sprintf("row %d: admission number %q duplicates row %d", rowNum, admissionNumber, firstRow), nil
	}
	seen[admissionNumber] = rowNum

	taken, err := s.students.ExistsByAdmissionNumber(ctx, admissionNumber, "")
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate admission number")
	}
	if taken {
		return fmt.Sprintf("row %d: admission number %q already in use", rowNum, admissionNumber), nil
	}

	var classID *string
	if className != "" {
		class, err := s.classes.FindByName(ctx, schoolID, className)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Sprintf("row %d: class %q not found", rowNum, className), nil
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve class")
		}
		classID = &class.ID
	}

	student := &models.Student{
		SchoolID:        schoolID,
		AdmissionNumber: admissionNumber,
		FullName:        fullName,
		Gender:          gender,
		ClassID:         classID,
	}
	if err := s.students.Create(ctx, student); err != nil {
		s.logger.Warn("failed to import student row",
			zap.Int("row", rowNum),
			zap.Error(err),
		)
		return fmt.Sprintf("row %d: failed to save student", rowNum), nil
	}
	return "", nil
}

type columnMap map[string]int

func mapColumns(header []string) (columnMap, error) {
	columns := columnMap{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"admission_number", "full_name"} {
		if _, ok := columns[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing required column %q", required))
		}
	}
	return columns, nil
}

func (c columnMap) value(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
