package faceengine

type embeddingRequest struct {
	Image     string                 `json:"image"`
	SubjectID string                 `json:"subjectId"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type embeddingResponse struct {
	Success      bool      `json:"success"`
	Encoding     []float64 `json:"encoding"`
	QualityScore float64   `json:"qualityScore"`
	Metadata     struct {
		FaceDetected bool    `json:"faceDetected"`
		Confidence   float64 `json:"confidence"`
	} `json:"metadata"`
}

type compareRequest struct {
	Encoding1 []float64 `json:"encoding1"`
	Encoding2 []float64 `json:"encoding2"`
	SubjectID string    `json:"subjectId"`
}

type compareResponse struct {
	Success    bool    `json:"success"`
	Similarity float64 `json:"similarity"`
	IsMatch    bool    `json:"isMatch"`
	Metadata   struct {
		Threshold float64 `json:"threshold"`
	} `json:"metadata"`
}
