package attendanceRepository

import (
	"PresensiGolang/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Attendance: &attendanceRepository{q: sqlExecutor, log: r.log},
		Commit:     commitFunc,
		Rollback:   rollbackFunc,
	}, nil
}

type Client struct {
	Attendance interface {
		Create(c context.Context, record entity.AttendanceRecord) error
		GetByID(c context.Context, id string) (entity.AttendanceRecord, error)
		GetOpenByUser(c context.Context, userID string) (entity.AttendanceRecord, error)
		UpdateClockOut(c context.Context, record entity.AttendanceRecord) error
		UpdateFraudAssessment(c context.Context, id string, assessment entity.FraudAssessment, flagged bool) error
		UpdateClockInPhoto(c context.Context, id string, photoURL string) error
		UpdateClockOutPhoto(c context.Context, id string, photoURL string) error
		UpdateReview(c context.Context, id string, status entity.AttendanceStatus, reviewerID string, reason string) error
		ListByUser(c context.Context, userID string, limit int) ([]entity.AttendanceRecord, error)
		ListFlaggedByCompany(c context.Context, companyID string) ([]entity.AttendanceRecord, error)
	}

	Commit   func() error
	Rollback func() error
}

type attendanceRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
