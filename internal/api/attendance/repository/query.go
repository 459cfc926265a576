package attendanceRepository

const (
	// The open-session check in the service is advisory; the partial unique
	// index attendance_records_open_session_key
	// (user_id WHERE clock_out_time IS NULL AND status NOT IN ('approved','rejected'))
	// is what makes it atomic. Its violation surfaces through Create.
	queryCreateAttendance = `
		INSERT INTO attendance_records (
			id,
			user_id,
			company_id,
			work_mode,
			clock_in_time,
			clock_in_similarity,
			status,
			device_id,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:company_id,
			:work_mode,
			:clock_in_time,
			:clock_in_similarity,
			:status,
			:device_id,
			:created_at,
			:updated_at
		)
	`

	attendanceColumns = `
		id,
		user_id,
		company_id,
		work_mode,
		clock_in_time,
		clock_out_time,
		clock_in_similarity,
		clock_out_similarity,
		clock_out_match,
		risk_score,
		fraud_assessment,
		status,
		device_id,
		clock_in_photo_url,
		clock_out_photo_url,
		reviewed_by,
		reviewed_at,
		rejection_reason,
		created_at,
		updated_at
	`

	queryGetAttendanceByID = `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE id = :id
	`

	queryGetOpenAttendanceByUser = `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE
			user_id = :user_id
			AND clock_out_time IS NULL
			AND status NOT IN ('approved', 'rejected')
		ORDER BY clock_in_time DESC
		LIMIT 1
	`

	queryUpdateClockOut = `
		UPDATE attendance_records
		SET
			clock_out_time = :clock_out_time,
			clock_out_similarity = :clock_out_similarity,
			clock_out_match = :clock_out_match,
			status = CASE WHEN status = 'active' THEN 'completed' ELSE status END,
			updated_at = :updated_at
		WHERE
			id = :id
			AND clock_out_time IS NULL
	`

	queryUpdateFraudAssessment = `
		UPDATE attendance_records
		SET
			risk_score = :risk_score,
			fraud_assessment = :fraud_assessment,
			status = CASE
				WHEN :flagged AND status IN ('active', 'completed') THEN 'flagged'
				ELSE status
			END,
			updated_at = :updated_at
		WHERE
			id = :id
			AND status NOT IN ('approved', 'rejected')
	`

	queryUpdateClockInPhoto = `
		UPDATE attendance_records
		SET
			clock_in_photo_url = :photo_url,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryUpdateClockOutPhoto = `
		UPDATE attendance_records
		SET
			clock_out_photo_url = :photo_url,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryUpdateReview = `
		UPDATE attendance_records
		SET
			status = :status,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at,
			rejection_reason = :rejection_reason,
			updated_at = :updated_at
		WHERE
			id = :id
			AND status NOT IN ('approved', 'rejected')
	`

	queryListAttendanceByUser = `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE user_id = :user_id
		ORDER BY clock_in_time DESC
		LIMIT :limit
	`

	queryListFlaggedByCompany = `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE
			company_id = :company_id
			AND status = 'flagged'
		ORDER BY clock_in_time DESC
	`
)
