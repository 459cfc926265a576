package attendanceService

import (
	"PresensiGolang/internal/api/attendance"
	attendanceRepository "PresensiGolang/internal/api/attendance/repository"
	"PresensiGolang/internal/api/enrollment"
	enrollmentRepository "PresensiGolang/internal/api/enrollment/repository"
	"PresensiGolang/internal/entity"
	"PresensiGolang/pkg/faceengine"
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"time"
)

// fakeAttendanceStore mirrors the conditional-update semantics of the SQL
// layer in memory so the service can be exercised without a database.
type fakeAttendanceStore struct {
	mu             sync.Mutex
	records        map[string]entity.AttendanceRecord
	assessed       chan string
	failAssessment bool
	// hideOpen makes GetOpenByUser miss, the way a read racing another
	// clock-in would, while Create still enforces one open session per user.
	hideOpen bool
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{
		records:  make(map[string]entity.AttendanceRecord),
		assessed: make(chan string, 8),
	}
}

func (f *fakeAttendanceStore) put(record entity.AttendanceRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ID] = record
}

func (f *fakeAttendanceStore) get(id string) (entity.AttendanceRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	return record, ok
}

func (f *fakeAttendanceStore) Create(_ context.Context, record entity.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.records {
		if existing.UserID == record.UserID && existing.ClockOutTime == nil && !existing.Status.IsTerminal() {
			return attendance.ErrActiveSessionExists
		}
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	f.records[record.ID] = record
	return nil
}

func (f *fakeAttendanceStore) GetByID(_ context.Context, id string) (entity.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return entity.AttendanceRecord{}, attendance.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeAttendanceStore) GetOpenByUser(_ context.Context, userID string) (entity.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideOpen {
		return entity.AttendanceRecord{}, attendance.ErrRecordNotFound
	}
	for _, record := range f.records {
		if record.UserID == userID && record.ClockOutTime == nil && !record.Status.IsTerminal() {
			return record, nil
		}
	}
	return entity.AttendanceRecord{}, attendance.ErrRecordNotFound
}

func (f *fakeAttendanceStore) UpdateClockOut(_ context.Context, update entity.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[update.ID]
	if !ok || record.ClockOutTime != nil {
		return attendance.ErrAlreadyClockedOut
	}
	record.ClockOutTime = update.ClockOutTime
	record.ClockOutSimilarity = update.ClockOutSimilarity
	record.ClockOutMatch = update.ClockOutMatch
	if record.Status == entity.StatusActive {
		record.Status = entity.StatusCompleted
	}
	record.UpdatedAt = time.Now()
	f.records[record.ID] = record
	return nil
}

func (f *fakeAttendanceStore) UpdateFraudAssessment(_ context.Context, id string, assessment entity.FraudAssessment, flagged bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	defer func() {
		select {
		case f.assessed <- id:
		default:
		}
	}()

	if f.failAssessment {
		return errors.New("assessment write failed")
	}

	record, ok := f.records[id]
	if !ok || record.Status.IsTerminal() {
		return attendance.ErrRecordNotFound
	}

	score := assessment.RiskScore
	record.RiskScore = &score
	record.FraudAssessment = &assessment
	if flagged && (record.Status == entity.StatusActive || record.Status == entity.StatusCompleted) {
		record.Status = entity.StatusFlagged
	}
	record.UpdatedAt = time.Now()
	f.records[id] = record
	return nil
}

func (f *fakeAttendanceStore) UpdateClockInPhoto(_ context.Context, id string, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return attendance.ErrRecordNotFound
	}
	record.ClockInPhotoURL = photoURL
	f.records[id] = record
	return nil
}

func (f *fakeAttendanceStore) UpdateClockOutPhoto(_ context.Context, id string, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return attendance.ErrRecordNotFound
	}
	record.ClockOutPhotoURL = photoURL
	f.records[id] = record
	return nil
}

func (f *fakeAttendanceStore) UpdateReview(_ context.Context, id string, status entity.AttendanceStatus, reviewerID string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok || record.Status.IsTerminal() {
		return attendance.ErrRecordAlreadyReviewed
	}
	now := time.Now()
	record.Status = status
	record.ReviewedBy = &reviewerID
	record.ReviewedAt = &now
	if reason != "" {
		record.RejectionReason = &reason
	}
	f.records[id] = record
	return nil
}

func (f *fakeAttendanceStore) ListByUser(_ context.Context, userID string, _ int) ([]entity.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entity.AttendanceRecord
	for _, record := range f.records {
		if record.UserID == userID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (f *fakeAttendanceStore) ListFlaggedByCompany(_ context.Context, companyID string) ([]entity.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entity.AttendanceRecord
	for _, record := range f.records {
		if record.CompanyID == companyID && record.Status == entity.StatusFlagged {
			result = append(result, record)
		}
	}
	return result, nil
}

type fakeAttendanceRepo struct {
	store *fakeAttendanceStore
}

func (f *fakeAttendanceRepo) NewClient(bool) (attendanceRepository.Client, error) {
	return attendanceRepository.Client{
		Attendance: f.store,
		Commit:     func() error { return nil },
		Rollback:   func() error { return nil },
	}, nil
}

type fakeFaceIdentityStore struct {
	mu         sync.Mutex
	identities map[string]entity.FaceIdentity
}

func newFakeFaceIdentityStore() *fakeFaceIdentityStore {
	return &fakeFaceIdentityStore{identities: make(map[string]entity.FaceIdentity)}
}

func (f *fakeFaceIdentityStore) Create(_ context.Context, identity entity.FaceIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities[identity.UserID] = identity
	return nil
}

func (f *fakeFaceIdentityStore) GetByUserID(_ context.Context, userID string) (entity.FaceIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.identities[userID]
	if !ok {
		return entity.FaceIdentity{}, enrollment.ErrNotEnrolled
	}
	return identity, nil
}

type fakeEnrollmentRepo struct {
	store *fakeFaceIdentityStore
}

func (f *fakeEnrollmentRepo) NewClient(bool) (enrollmentRepository.Client, error) {
	return enrollmentRepository.Client{
		FaceIdentity: f.store,
		Commit:       func() error { return nil },
		Rollback:     func() error { return nil },
	}, nil
}

type fakeFaceEngine struct {
	embedding entity.FaceEmbedding
	err       error
}

func (f *fakeFaceEngine) ExtractEmbedding([]byte, string) (entity.FaceEmbedding, error) {
	if f.err != nil {
		return entity.FaceEmbedding{}, f.err
	}
	return f.embedding, nil
}

func (f *fakeFaceEngine) CompareRemote([]float64, []float64, string) (entity.VerificationOutcome, error) {
	return entity.VerificationOutcome{}, nil
}

func (f *fakeFaceEngine) IsConnected(faceengine.ServiceType) bool { return true }

func (f *fakeFaceEngine) Reconnect(faceengine.ServiceType) error { return nil }

func (f *fakeFaceEngine) CloseConnections() {}

type fakeRedis struct {
	mu       sync.Mutex
	fail     bool
	devices  map[string][]string
	location map[string]entity.Location
	recent   map[string][]time.Time
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		devices:  make(map[string][]string),
		location: make(map[string]entity.Location),
		recent:   make(map[string][]time.Time),
	}
}

var errRedisDown = errors.New("redis unavailable")

func (f *fakeRedis) AddKnownDevice(_ context.Context, userID string, deviceID string) error {
	if f.fail {
		return errRedisDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices[userID] = append(f.devices[userID], deviceID)
	return nil
}

func (f *fakeRedis) GetKnownDevices(_ context.Context, userID string) ([]string, error) {
	if f.fail {
		return nil, errRedisDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices[userID], nil
}

func (f *fakeRedis) SetLastLocation(_ context.Context, userID string, loc entity.Location) error {
	if f.fail {
		return errRedisDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.location[userID] = loc
	return nil
}

func (f *fakeRedis) GetLastLocation(_ context.Context, userID string) (*entity.Location, error) {
	if f.fail {
		return nil, errRedisDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	loc, ok := f.location[userID]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

func (f *fakeRedis) PushClockIn(_ context.Context, userID string, ts time.Time) error {
	if f.fail {
		return errRedisDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recent[userID] = append(f.recent[userID], ts)
	return nil
}

func (f *fakeRedis) GetRecentClockIns(_ context.Context, userID string) ([]time.Time, error) {
	if f.fail {
		return nil, errRedisDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recent[userID], nil
}

type fakeS3 struct {
	mu      sync.Mutex
	fail    bool
	uploads int
}

var errS3Down = errors.New("s3 unavailable")

func (f *fakeS3) UploadFile(file *multipart.FileHeader) (string, error) {
	return f.UploadBytes(nil, file.Filename)
}

func (f *fakeS3) UploadBytes(_ []byte, fileName string) (string, error) {
	if f.fail {
		return "", errS3Down
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return "https://bucket.s3.amazonaws.com/attendance/" + fileName, nil
}

func (f *fakeS3) PresignUrl(fileName string) (string, error) {
	if f.fail {
		return "", errS3Down
	}
	return fileName + "?signed", nil
}

func (f *fakeS3) DeleteFile(string) error { return nil }

type fakeUtils struct {
	frame []byte
}

func (f *fakeUtils) NewULIDFromTimestamp(time.Time) (string, error) {
	return "01HTESTULID", nil
}

func (f *fakeUtils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}
	return nil
}

func (f *fakeUtils) ReadFileBytes(*multipart.FileHeader) ([]byte, error) {
	return f.frame, nil
}
