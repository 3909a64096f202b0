package handlers

import (
	"context"

	"leafscan"
	"leafscan/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser  *leafscan.User
	registerToken string
	registerErr   error
	loginUser     *leafscan.User
	loginToken    string
	loginErr      error
	parseSubject  string
	parseErr      error
	subjectUser   *leafscan.User
	subjectErr    error

	lastRegisterInput   service.RegisterInput
	lastLoginIdentifier string
	lastLoginPassword   string
	lastParseToken      string
	lastSubject         string
}

func (m *mockAuth) Register(ctx context.Context, input service.RegisterInput) (*leafscan.User, string, error) {
	m.lastRegisterInput = input
	return m.registerUser, m.registerToken, m.registerErr
}

func (m *mockAuth) Login(ctx context.Context, identifier, password string) (*leafscan.User, string, error) {
	m.lastLoginIdentifier = identifier
	m.lastLoginPassword = password
	return m.loginUser, m.loginToken, m.loginErr
}

func (m *mockAuth) ParseToken(accessToken string) (string, error) {
	m.lastParseToken = accessToken
	return m.parseSubject, m.parseErr
}

func (m *mockAuth) UserBySubject(ctx context.Context, username string) (*leafscan.User, error) {
	m.lastSubject = username
	return m.subjectUser, m.subjectErr
}

type mockPredictions struct {
	classifyLabel string
	classifyErr   error
	storeRec      *leafscan.Prediction
	storeErr      error
	historyRecs   []leafscan.Prediction
	historyErr    error
	deleteErr     error

	lastStoreOwner    *leafscan.User
	lastStoreFilename string
	lastStoreType     string
	lastStoreImage    []byte
	lastHistoryOwner  string
	lastDeleteID      string
	lastDeleteOwner   string
}

func (m *mockPredictions) Classify(ctx context.Context, image []byte) (string, error) {
	return m.classifyLabel, m.classifyErr
}

func (m *mockPredictions) ClassifyAndStore(ctx context.Context, owner *leafscan.User, filename, contentType string, image []byte) (*leafscan.Prediction, error) {
	m.lastStoreOwner = owner
	m.lastStoreFilename = filename
	m.lastStoreType = contentType
	m.lastStoreImage = image
	return m.storeRec, m.storeErr
}

func (m *mockPredictions) History(ctx context.Context, ownerID string) ([]leafscan.Prediction, error) {
	m.lastHistoryOwner = ownerID
	return m.historyRecs, m.historyErr
}

func (m *mockPredictions) Delete(ctx context.Context, id, ownerID string) error {
	m.lastDeleteID = id
	m.lastDeleteOwner = ownerID
	return m.deleteErr
}

// newTestRouter builds the full route table around mocked services.
func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, "", nil)
	return h.InitRoutes()
}
