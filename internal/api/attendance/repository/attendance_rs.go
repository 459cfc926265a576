package attendanceRepository

import (
	"PresensiGolang/internal/api/attendance"
	"PresensiGolang/internal/entity"
	contextPkg "PresensiGolang/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type AttendanceRecordDB struct {
	ID                 sql.NullString  `db:"id"`
	UserID             sql.NullString  `db:"user_id"`
	CompanyID          sql.NullString  `db:"company_id"`
	WorkMode           sql.NullString  `db:"work_mode"`
	ClockInTime        time.Time       `db:"clock_in_time"`
	ClockOutTime       sql.NullTime    `db:"clock_out_time"`
	ClockInSimilarity  sql.NullFloat64 `db:"clock_in_similarity"`
	ClockOutSimilarity sql.NullFloat64 `db:"clock_out_similarity"`
	ClockOutMatch      sql.NullBool    `db:"clock_out_match"`
	RiskScore          sql.NullFloat64 `db:"risk_score"`
	FraudAssessment    []byte          `db:"fraud_assessment"`
	Status             sql.NullString  `db:"status"`
	DeviceID           sql.NullString  `db:"device_id"`
	ClockInPhotoURL    sql.NullString  `db:"clock_in_photo_url"`
	ClockOutPhotoURL   sql.NullString  `db:"clock_out_photo_url"`
	ReviewedBy         sql.NullString  `db:"reviewed_by"`
	ReviewedAt         sql.NullTime    `db:"reviewed_at"`
	RejectionReason    sql.NullString  `db:"rejection_reason"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (r *attendanceRepository) Create(c context.Context, record entity.AttendanceRecord) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":                  record.ID,
		"user_id":             record.UserID,
		"company_id":          record.CompanyID,
		"work_mode":           string(record.WorkMode),
		"clock_in_time":       record.ClockInTime,
		"clock_in_similarity": record.ClockInSimilarity,
		"status":              string(record.Status),
		"device_id":           record.DeviceID,
		"created_at":          time.Now(),
		"updated_at":          time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateAttendance, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Create attendance named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    record.UserID,
			}).Warn("Create attendance lost the open-session race")
			return attendance.ErrActiveSessionExists
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating attendance record")
		return err
	}

	return nil
}

func (r *attendanceRepository) GetByID(c context.Context, id string) (entity.AttendanceRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var record AttendanceRecordDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetAttendanceByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")
		return entity.AttendanceRecord{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("GetByID no attendance record found")
			return entity.AttendanceRecord{}, attendance.ErrRecordNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID execution err")
		return entity.AttendanceRecord{}, err
	}

	return r.makeAttendanceRecord(record), nil
}

func (r *attendanceRepository) GetOpenByUser(c context.Context, userID string) (entity.AttendanceRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var record AttendanceRecordDB

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryGetOpenAttendanceByUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetOpenByUser named query preparation err")
		return entity.AttendanceRecord{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.AttendanceRecord{}, attendance.ErrRecordNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetOpenByUser execution err")
		return entity.AttendanceRecord{}, err
	}

	return r.makeAttendanceRecord(record), nil
}

// UpdateClockOut only touches rows whose clock_out_time is still null, so a
// concurrent clock-out loses the race cleanly instead of overwriting.
func (r *attendanceRepository) UpdateClockOut(c context.Context, record entity.AttendanceRecord) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":                   record.ID,
		"clock_out_time":       record.ClockOutTime,
		"clock_out_similarity": record.ClockOutSimilarity,
		"clock_out_match":      record.ClockOutMatch,
		"updated_at":           time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateClockOut, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateClockOut named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateClockOut execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateClockOut rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  record.ID,
		}).Warn("UpdateClockOut no rows affected")
		return attendance.ErrAlreadyClockedOut
	}

	return nil
}

// UpdateFraudAssessment never touches the clock-out columns, so it cannot
// clobber a clock-out applied while the analysis was running. Terminal
// records are left alone.
func (r *attendanceRepository) UpdateFraudAssessment(c context.Context, id string, assessment entity.FraudAssessment, flagged bool) error {
	requestID := contextPkg.GetRequestID(c)

	payload, err := json.Marshal(assessment)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateFraudAssessment marshal err")
		return err
	}

	argsKV := map[string]interface{}{
		"id":               id,
		"risk_score":       assessment.RiskScore,
		"fraud_assessment": payload,
		"flagged":          flagged,
		"updated_at":       time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateFraudAssessment, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateFraudAssessment named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateFraudAssessment execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  id,
		}).Warn("UpdateFraudAssessment skipped, record reviewed or missing")
		return attendance.ErrRecordNotFound
	}

	return nil
}

func (r *attendanceRepository) UpdateClockInPhoto(c context.Context, id string, photoURL string) error {
	return r.updatePhoto(c, queryUpdateClockInPhoto, id, photoURL)
}

func (r *attendanceRepository) UpdateClockOutPhoto(c context.Context, id string, photoURL string) error {
	return r.updatePhoto(c, queryUpdateClockOutPhoto, id, photoURL)
}

func (r *attendanceRepository) updatePhoto(c context.Context, namedQuery string, id string, photoURL string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         id,
		"photo_url":  photoURL,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("updatePhoto named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("updatePhoto execution err")
		return err
	}

	return nil
}

func (r *attendanceRepository) UpdateReview(c context.Context, id string, status entity.AttendanceStatus, reviewerID string, reason string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":               id,
		"status":           string(status),
		"reviewed_by":      reviewerID,
		"reviewed_at":      time.Now(),
		"rejection_reason": sql.NullString{String: reason, Valid: reason != ""},
		"updated_at":       time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateReview, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateReview named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateReview execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  id,
		}).Warn("UpdateReview no rows affected")
		return attendance.ErrRecordAlreadyReviewed
	}

	return nil
}

func (r *attendanceRepository) ListByUser(c context.Context, userID string, limit int) ([]entity.AttendanceRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var records []AttendanceRecordDB

	if limit <= 0 {
		limit = 50
	}

	argsKV := map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	}

	query, args, err := sqlx.Named(queryListAttendanceByUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &records, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser execution err")
		return nil, err
	}

	result := make([]entity.AttendanceRecord, 0, len(records))
	for _, record := range records {
		result = append(result, r.makeAttendanceRecord(record))
	}

	return result, nil
}

func (r *attendanceRepository) ListFlaggedByCompany(c context.Context, companyID string) ([]entity.AttendanceRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var records []AttendanceRecordDB

	argsKV := map[string]interface{}{
		"company_id": companyID,
	}

	query, args, err := sqlx.Named(queryListFlaggedByCompany, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListFlaggedByCompany named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &records, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListFlaggedByCompany execution err")
		return nil, err
	}

	result := make([]entity.AttendanceRecord, 0, len(records))
	for _, record := range records {
		result = append(result, r.makeAttendanceRecord(record))
	}

	return result, nil
}

func (r *attendanceRepository) makeAttendanceRecord(record AttendanceRecordDB) entity.AttendanceRecord {
	result := entity.AttendanceRecord{
		ID:                record.ID.String,
		UserID:            record.UserID.String,
		CompanyID:         record.CompanyID.String,
		WorkMode:          entity.WorkMode(record.WorkMode.String),
		ClockInTime:       record.ClockInTime,
		ClockInSimilarity: record.ClockInSimilarity.Float64,
		Status:            entity.AttendanceStatus(record.Status.String),
		DeviceID:          record.DeviceID.String,
		ClockInPhotoURL:   record.ClockInPhotoURL.String,
		ClockOutPhotoURL:  record.ClockOutPhotoURL.String,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}

	if record.ClockOutTime.Valid {
		t := record.ClockOutTime.Time
		result.ClockOutTime = &t
	}
	if record.ClockOutSimilarity.Valid {
		v := record.ClockOutSimilarity.Float64
		result.ClockOutSimilarity = &v
	}
	if record.ClockOutMatch.Valid {
		v := record.ClockOutMatch.Bool
		result.ClockOutMatch = &v
	}
	if record.RiskScore.Valid {
		v := record.RiskScore.Float64
		result.RiskScore = &v
	}
	if record.ReviewedBy.Valid {
		v := record.ReviewedBy.String
		result.ReviewedBy = &v
	}
	if record.ReviewedAt.Valid {
		t := record.ReviewedAt.Time
		result.ReviewedAt = &t
	}
	if record.RejectionReason.Valid {
		v := record.RejectionReason.String
		result.RejectionReason = &v
	}

	if len(record.FraudAssessment) > 0 {
		var assessment entity.FraudAssessment
		if err := json.Unmarshal(record.FraudAssessment, &assessment); err == nil {
			result.FraudAssessment = &assessment
		}
	}

	return result
}
