package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lostid-api/internal/dto"
	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
	"github.com/noah-isme/lostid-api/pkg/export"
)

const (
	ExportTypeClaims  = "claims"
	ExportTypeLostIDs = "lost_ids"

	exportDateLayout = "2006-01-02"
)

type exportSource interface {
	ClaimsForExport(ctx context.Context, rng models.ExportRange) ([]models.ClaimExportRow, error)
	LostIDsForExport(ctx context.Context, rng models.ExportRange) ([]models.LostIDExportRow, error)
}

// ExportService renders claims or lost IDs into a downloadable CSV or PDF.
type ExportService struct {
	source exportSource
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(source exportSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{source: source, logger: logger, now: time.Now}
}

// Export builds the requested dataset. An empty result is reported as not found.
func (s *ExportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error) {
	format, err := export.ParseFormat(strings.ToLower(strings.TrimSpace(req.Format)))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	rng, err := parseExportRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	var dataset export.Dataset
	switch req.Type {
	case ExportTypeClaims:
		dataset, err = s.claimsDataset(ctx, rng)
	case ExportTypeLostIDs:
		dataset, err = s.lostIDsDataset(ctx, rng)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be claims or lost_ids")
	}
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load export data")
	}
	if len(dataset.Rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no data found for export")
	}

	renderer, err := export.For(format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("render export", zap.String("type", req.Type), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("%s_export_%s.%s", req.Type, s.now().UTC().Format(exportDateLayout), format),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}, nil
}

// parseExportRange accepts YYYY-MM-DD bounds. end is inclusive of the whole day.
func parseExportRange(start, end string) (models.ExportRange, error) {
	var rng models.ExportRange
	if start = strings.TrimSpace(start); start != "" {
		t, err := time.Parse(exportDateLayout, start)
		if err != nil {
			return rng, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
		}
		rng.Start = &t
	}
	if end = strings.TrimSpace(end); end != "" {
		t, err := time.Parse(exportDateLayout, end)
		if err != nil {
			return rng, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
		}
		t = t.Add(24 * time.Hour)
		rng.End = &t
	}
	if rng.Start != nil && rng.End != nil && !rng.Start.Before(*rng.End) {
		return rng, appErrors.Clone(appErrors.ErrValidation, "start_date must not be after end_date")
	}
	return rng, nil
}

func (s *ExportService) claimsDataset(ctx context.Context, rng models.ExportRange) (export.Dataset, error) {
	rows, err := s.source.ClaimsForExport(ctx, rng)
	if err != nil {
		return export.Dataset{}, err
	}
	data := export.Dataset{
		Title: "Claims Export",
		Headers: []string{
			"Claim ID", "Status", "Claim Date", "Processed At", "Collected At", "Admin Notes",
			"Verification Details", "Lost Student Name", "Lost Student ID", "ID Type",
			"Claimant", "Claimant Email", "Processed By",
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, []string{
			r.ID,
			string(r.Status),
			formatExportTime(&r.ClaimDate),
			formatExportTime(r.ProcessedAt),
			formatExportTime(r.CollectionDate),
			derefString(r.AdminNotes),
			r.VerificationDetails,
			r.LostStudentName,
			r.LostStudentID,
			string(r.IDType),
			r.ClaimantName,
			r.ClaimantEmail,
			derefString(r.ProcessedByName),
		})
	}
	return data, nil
}

func (s *ExportService) lostIDsDataset(ctx context.Context, rng models.ExportRange) (export.Dataset, error) {
	rows, err := s.source.LostIDsForExport(ctx, rng)
	if err != nil {
		return export.Dataset{}, err
	}
	data := export.Dataset{
		Title: "Lost IDs Export",
		Headers: []string{
			"ID", "Student ID", "Student Name", "ID Type", "Found Date", "Found Location",
			"Description", "Status", "Added By", "Created At", "Claims",
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, []string{
			r.ID,
			r.StudentID,
			r.StudentName,
			string(r.IDType),
			r.FoundDate.Format(exportDateLayout),
			r.FoundLocation,
			derefString(r.Description),
			string(r.Status),
			derefString(r.AddedByName),
			formatExportTime(&r.CreatedAt),
			strconv.Itoa(r.ClaimCount),
		})
	}
	return data, nil
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatExportTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
