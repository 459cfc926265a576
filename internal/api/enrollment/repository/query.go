package enrollmentRepository

const (
	queryCreateFaceIdentity = `
		INSERT INTO face_identities (
			user_id,
			company_id,
			embedding,
			quality,
			photo_url,
			enrolled_at
		) VALUES (
			:user_id,
			:company_id,
			:embedding,
			:quality,
			:photo_url,
			:enrolled_at
		)
	`

	queryGetFaceIdentityByUserID = `
		SELECT
			user_id,
			company_id,
			embedding,
			quality,
			photo_url,
			enrolled_at
		FROM face_identities
		WHERE user_id = :user_id
	`
)
