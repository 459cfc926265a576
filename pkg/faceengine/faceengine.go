package faceengine

import (
	"PresensiGolang/internal/entity"
	"PresensiGolang/pkg/facematch"
	"PresensiGolang/pkg/response"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoFaceDetected  = response.NewError(422, "no face detected in image")
	ErrLowQualityImage = response.NewError(422, "image quality below minimum")
	ErrServiceDown     = response.NewError(503, "face service unavailable")
)

type ServiceType int

const (
	EmbeddingService ServiceType = iota
	CompareService
)

type IFaceEngine interface {
	ExtractEmbedding(frame []byte, subjectID string) (entity.FaceEmbedding, error)
	CompareRemote(reference, probe []float64, subjectID string) (entity.VerificationOutcome, error)
	IsConnected(serviceType ServiceType) bool
	Reconnect(serviceType ServiceType) error
	CloseConnections()
}

type faceEngineClient struct {
	embeddingConn *websocket.Conn
	compareConn   *websocket.Conn
	embeddingStop chan struct{}
	compareStop   chan struct{}

	// mu guards the connection fields. The per-service request mutexes
	// serialize the whole write-then-read round trip: the services answer
	// in request order on one connection, so a reply read outside the
	// sender's critical section could land in another caller's hands.
	mu             sync.Mutex
	embeddingReqMu sync.Mutex
	compareReqMu   sync.Mutex

	minQuality   float64
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func New() IFaceEngine {
	minQuality := 0.7
	if v := os.Getenv("FACE_MIN_QUALITY"); v != "" {
		if q, err := strconv.ParseFloat(v, 64); err == nil && q > 0 && q <= 1 {
			minQuality = q
		}
	}

	client := &faceEngineClient{
		minQuality:   minQuality,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go client.connectInBackground(EmbeddingService)
	go client.connectInBackground(CompareService)

	return client
}

func (c *faceEngineClient) connectInBackground(serviceType ServiceType) {
	// Taken under the request mutex so an eager first request that already
	// reconnected on demand is not torn down mid round trip.
	reqMu := c.requestMu(serviceType)
	reqMu.Lock()
	defer reqMu.Unlock()

	if c.IsConnected(serviceType) {
		return
	}

	if err := c.Reconnect(serviceType); err != nil {
		logrus.Warnf("Initial connection to %s failed: %v. Will retry on demand.",
			serviceName(serviceType), err)
	} else {
		logrus.Infof("Connected to %s service", serviceName(serviceType))
	}
}

func (c *faceEngineClient) IsConnected(serviceType ServiceType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch serviceType {
	case EmbeddingService:
		return c.embeddingConn != nil
	case CompareService:
		return c.compareConn != nil
	default:
		return false
	}
}

func (c *faceEngineClient) Reconnect(serviceType ServiceType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if serviceType == EmbeddingService && c.embeddingConn != nil {
		c.dropLocked(serviceType, c.embeddingConn)
	} else if serviceType == CompareService && c.compareConn != nil {
		c.dropLocked(serviceType, c.compareConn)
	}

	url := serviceURL(serviceType)
	if url == "" {
		return fmt.Errorf("URL for %s service not configured", serviceName(serviceType))
	}

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			logrus.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	stop := make(chan struct{})
	if serviceType == EmbeddingService {
		c.embeddingConn = conn
		c.embeddingStop = stop
	} else {
		c.compareConn = conn
		c.compareStop = stop
	}

	go c.keepAlive(serviceType, conn, stop)

	return nil
}

func (c *faceEngineClient) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.embeddingConn != nil {
		c.dropLocked(EmbeddingService, c.embeddingConn)
	}

	if c.compareConn != nil {
		c.dropLocked(CompareService, c.compareConn)
	}
}

// keepAlive pings one connection until it dies or is replaced; the stop
// channel is closed whenever the connection is dropped, so a reconnect
// never leaves a stale ticker pinging the replacement.
func (c *faceEngineClient) keepAlive(serviceType ServiceType, conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			err := conn.WriteControl(
				websocket.PingMessage,
				[]byte{},
				time.Now().Add(c.writeTimeout),
			)

			if err != nil {
				logrus.Warnf("Ping failed for %s, marking connection as dead: %v",
					serviceName(serviceType), err)
				c.drop(serviceType, conn)
				return
			}
		}
	}
}

func (c *faceEngineClient) getConnection(serviceType ServiceType) (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var conn *websocket.Conn
	if serviceType == EmbeddingService {
		conn = c.embeddingConn
	} else {
		conn = c.compareConn
	}

	if conn == nil {
		return nil, fmt.Errorf("not connected to %s service", serviceName(serviceType))
	}

	return conn, nil
}

func (c *faceEngineClient) requestMu(serviceType ServiceType) *sync.Mutex {
	if serviceType == EmbeddingService {
		return &c.embeddingReqMu
	}
	return &c.compareReqMu
}

// roundTrip sends one JSON request over the service connection and decodes
// the reply into out. The per-service request mutex is held from the write
// through the read, so the reply a caller receives is always the reply to
// its own request. Dead connections are dropped so the next call reconnects.
func (c *faceEngineClient) roundTrip(serviceType ServiceType, request interface{}, out interface{}) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("error encoding %s request: %w", serviceName(serviceType), err)
	}

	reqMu := c.requestMu(serviceType)
	reqMu.Lock()
	defer reqMu.Unlock()

	conn, err := c.getConnection(serviceType)
	if err != nil {
		if err := c.Reconnect(serviceType); err != nil {
			return fmt.Errorf("%w: %s", ErrServiceDown, err.Error())
		}
		conn, err = c.getConnection(serviceType)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrServiceDown, err.Error())
		}
	}

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.drop(serviceType, conn)
		return fmt.Errorf("error sending %s request: %w", serviceName(serviceType), err)
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(serviceType, conn)
		return fmt.Errorf("error reading %s response: %w", serviceName(serviceType), err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	if err := json.Unmarshal(message, out); err != nil {
		return fmt.Errorf("error unmarshaling %s response: %w", serviceName(serviceType), err)
	}

	return nil
}

func (c *faceEngineClient) drop(serviceType ServiceType, conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(serviceType, conn)
}

// dropLocked discards conn, stopping its keepalive, but only clears the
// service slot when conn is still the live connection; a stale conn being
// dropped must not take a fresh replacement down with it.
func (c *faceEngineClient) dropLocked(serviceType ServiceType, conn *websocket.Conn) {
	switch serviceType {
	case EmbeddingService:
		if c.embeddingConn == conn {
			c.embeddingConn = nil
			if c.embeddingStop != nil {
				close(c.embeddingStop)
				c.embeddingStop = nil
			}
		}
	case CompareService:
		if c.compareConn == conn {
			c.compareConn = nil
			if c.compareStop != nil {
				close(c.compareStop)
				c.compareStop = nil
			}
		}
	}
	conn.Close()
}

func (c *faceEngineClient) ExtractEmbedding(frame []byte, subjectID string) (entity.FaceEmbedding, error) {
	req := embeddingRequest{
		Image:     toDataURL(frame),
		SubjectID: subjectID,
	}

	var resp embeddingResponse
	if err := c.roundTrip(EmbeddingService, req, &resp); err != nil {
		return entity.FaceEmbedding{}, err
	}

	if !resp.Success || !resp.Metadata.FaceDetected || len(resp.Encoding) == 0 {
		return entity.FaceEmbedding{}, ErrNoFaceDetected
	}

	if resp.QualityScore < c.minQuality {
		logrus.WithFields(logrus.Fields{
			"subject_id":  subjectID,
			"quality":     resp.QualityScore,
			"min_quality": c.minQuality,
		}).Warn("Rejecting low quality capture")
		return entity.FaceEmbedding{}, ErrLowQualityImage
	}

	// Downstream cosine similarity relies on unit-norm vectors.
	return entity.FaceEmbedding{
		Vector:     facematch.Normalize(resp.Encoding),
		Quality:    resp.QualityScore,
		Confidence: resp.Metadata.Confidence,
	}, nil
}

func (c *faceEngineClient) CompareRemote(reference, probe []float64, subjectID string) (entity.VerificationOutcome, error) {
	req := compareRequest{
		Encoding1: reference,
		Encoding2: probe,
		SubjectID: subjectID,
	}

	var resp compareResponse
	if err := c.roundTrip(CompareService, req, &resp); err != nil {
		return entity.VerificationOutcome{}, err
	}

	if !resp.Success {
		return entity.VerificationOutcome{}, fmt.Errorf("compare service rejected request for subject %s", subjectID)
	}

	return entity.VerificationOutcome{
		Similarity: resp.Similarity,
		IsMatch:    resp.IsMatch,
		Threshold:  resp.Metadata.Threshold,
	}, nil
}

func toDataURL(frame []byte) string {
	contentType := http.DetectContentType(frame)
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(frame))
}

func serviceURL(serviceType ServiceType) string {
	switch serviceType {
	case EmbeddingService:
		url := os.Getenv("AI_FACE_EMBEDDING_URL")
		if url == "" {
			url = "ws://localhost:8000/api/v1/embedding/ws"
		}
		return url
	case CompareService:
		url := os.Getenv("AI_FACE_COMPARE_URL")
		if url == "" {
			url = "ws://localhost:8000/api/v1/compare/ws"
		}
		return url
	default:
		return ""
	}
}

func serviceName(serviceType ServiceType) string {
	switch serviceType {
	case EmbeddingService:
		return "Face Embedding"
	case CompareService:
		return "Face Compare"
	default:
		return "Unknown"
	}
}
