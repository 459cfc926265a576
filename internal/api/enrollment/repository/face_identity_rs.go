package enrollmentRepository

import (
	"PresensiGolang/internal/api/enrollment"
	"PresensiGolang/internal/entity"
	contextPkg "PresensiGolang/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type FaceIdentityDB struct {
	UserID     sql.NullString  `db:"user_id"`
	CompanyID  sql.NullString  `db:"company_id"`
	Embedding  []byte          `db:"embedding"`
	Quality    sql.NullFloat64 `db:"quality"`
	PhotoURL   sql.NullString  `db:"photo_url"`
	EnrolledAt time.Time       `db:"enrolled_at"`
}

func (r *faceIdentityRepository) Create(c context.Context, identity entity.FaceIdentity) error {
	requestID := contextPkg.GetRequestID(c)

	embedding, err := json.Marshal(identity.Embedding)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Create face identity marshal err")
		return err
	}

	argsKV := map[string]interface{}{
		"user_id":     identity.UserID,
		"company_id":  identity.CompanyID,
		"embedding":   embedding,
		"quality":     identity.Quality,
		"photo_url":   identity.PhotoURL,
		"enrolled_at": identity.EnrolledAt,
	}

	query, args, err := sqlx.Named(queryCreateFaceIdentity, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Create face identity named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating face identity")
		return err
	}

	return nil
}

func (r *faceIdentityRepository) GetByUserID(c context.Context, userID string) (entity.FaceIdentity, error) {
	requestID := contextPkg.GetRequestID(c)
	var identity FaceIdentityDB

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryGetFaceIdentityByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByUserID named query preparation err")
		return entity.FaceIdentity{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&identity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.FaceIdentity{}, enrollment.ErrNotEnrolled
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByUserID execution err")
		return entity.FaceIdentity{}, err
	}

	result := entity.FaceIdentity{
		UserID:     identity.UserID.String,
		CompanyID:  identity.CompanyID.String,
		Quality:    identity.Quality.Float64,
		PhotoURL:   identity.PhotoURL.String,
		EnrolledAt: identity.EnrolledAt,
	}

	if len(identity.Embedding) > 0 {
		if err := json.Unmarshal(identity.Embedding, &result.Embedding); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("GetByUserID embedding unmarshal err")
			return entity.FaceIdentity{}, err
		}
	}

	return result, nil
}
