package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/staff"
)

var ErrPatientNotFound = errors.New("patient not found")

// Service stores an uploaded report file and appends its metadata to the
// patient's record and to every appointment held by that patient.
type Service struct {
	files FileStore
	repo  Repository
	appts booking.Store
	dir   staff.Directory
	log   *zap.Logger
}

func NewService(files FileStore, repo Repository, appts booking.Store, dir staff.Directory, log *zap.Logger) *Service {
	return &Service{
		files: files,
		repo:  repo,
		appts: appts,
		dir:   dir,
		log:   log,
	}
}

func (s *Service) Upload(ctx context.Context, patientEmail, fileName, contentType, uploadedBy string, file io.Reader, size int64) (*Report, error) {
	if _, err := s.dir.FindByEmail(ctx, patientEmail); err != nil {
		if errors.Is(err, staff.ErrMemberNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	// Prefix with a fresh id so identical filenames never collide.
	id := uuid.New()
	objectName := fmt.Sprintf("%s/%s-%s", patientEmail, id, fileName)

	fileURL, err := s.files.Put(ctx, objectName, file, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store report file: %w", err)
	}

	appts, err := s.appts.ListByPatientEmail(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}

	apptIDs := make([]uuid.UUID, 0, len(appts))
	for _, a := range appts {
		apptIDs = append(apptIDs, a.ID)
	}

	created, err := s.repo.Append(ctx, &Report{
		ID:           id,
		PatientEmail: patientEmail,
		FileURL:      fileURL,
		FileName:     fileName,
		FileSize:     size,
		UploadedBy:   uploadedBy,
		UploadedAt:   time.Now(),
	}, apptIDs)
	if err != nil {
		return nil, fmt.Errorf("append report: %w", err)
	}

	s.log.Info("report uploaded",
		zap.String("patient", patientEmail),
		zap.String("file", fileName),
		zap.Int("linked_appointments", len(apptIDs)))

	return created, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientEmail string) ([]Report, error) {
	return s.repo.ListByPatient(ctx, patientEmail)
}
