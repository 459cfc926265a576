package faceengine

import (
	"PresensiGolang/internal/entity"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

var upgrader = websocket.Upgrader{}

// embeddingStub answers embedding requests on a single connection. Replies
// are keyed off the subject id: "slow" is answered late with a distinct
// quality, "blurry" below the quality floor, "nobody" with no face.
func embeddingStub(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req struct {
			SubjectID string `json:"subjectId"`
		}
		if err := json.Unmarshal(msg, &req); err != nil {
			return
		}

		quality := 0.95
		faceDetected := true

		switch req.SubjectID {
		case "slow":
			quality = 0.81
			time.Sleep(150 * time.Millisecond)
		case "blurry":
			quality = 0.4
		case "nobody":
			faceDetected = false
		}

		encoding := []float64{1, 0, 0, 0}
		if !faceDetected {
			encoding = nil
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"success":      true,
			"encoding":     encoding,
			"qualityScore": quality,
			"metadata": map[string]interface{}{
				"faceDetected": faceDetected,
				"confidence":   quality,
			},
		})

		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

type EngineSuite struct {
	suite.Suite
	server *httptest.Server
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	logrus.SetLevel(logrus.PanicLevel)

	s.server = httptest.NewServer(http.HandlerFunc(embeddingStub))
	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http")
	s.T().Setenv("AI_FACE_EMBEDDING_URL", wsURL)
	s.T().Setenv("AI_FACE_COMPARE_URL", wsURL)
}

func (s *EngineSuite) TearDownTest() {
	s.server.Close()
}

type extractResult struct {
	subject   string
	embedding entity.FaceEmbedding
	err       error
}

func (s *EngineSuite) TestExtractEmbedding() {
	frame := []byte("jpeg-bytes")

	s.Run("concurrent callers each receive their own reply", func() {
		engine := New()
		defer engine.CloseConnections()

		// "slow" is answered 150ms late; if the round trip were not held
		// as one unit, "fast" would consume the delayed reply meant for
		// "slow" and receive its quality.
		results := make(chan extractResult, 2)
		for _, subject := range []string{"slow", "fast"} {
			subject := subject
			go func() {
				embedding, err := engine.ExtractEmbedding(frame, subject)
				results <- extractResult{subject: subject, embedding: embedding, err: err}
			}()
		}

		for i := 0; i < 2; i++ {
			res := <-results
			s.Require().NoError(res.err, res.subject)

			expected := 0.95
			if res.subject == "slow" {
				expected = 0.81
			}
			s.InDelta(expected, res.embedding.Quality, 1e-9, res.subject)
		}
	})

	s.Run("returned embedding is unit normalized", func() {
		engine := New()
		defer engine.CloseConnections()

		embedding, err := engine.ExtractEmbedding(frame, "user-1")

		s.Require().NoError(err)
		s.Equal([]float64{1, 0, 0, 0}, embedding.Vector)
		s.InDelta(0.95, embedding.Confidence, 1e-9)
	})

	s.Run("low quality capture is rejected", func() {
		engine := New()
		defer engine.CloseConnections()

		_, err := engine.ExtractEmbedding(frame, "blurry")

		s.ErrorIs(err, ErrLowQualityImage)
	})

	s.Run("missing face is rejected", func() {
		engine := New()
		defer engine.CloseConnections()

		_, err := engine.ExtractEmbedding(frame, "nobody")

		s.ErrorIs(err, ErrNoFaceDetected)
	})
}
