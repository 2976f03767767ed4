package httptransport

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gesher/internal/admin"
	"gesher/internal/auth/service"
	"gesher/internal/identity/devprovider"
	"gesher/internal/jwtsession"
	"gesher/internal/legacy"
	"gesher/internal/profile"
	id "gesher/pkg/domain"
	"gesher/pkg/platform/audit/publisher"
	"gesher/pkg/platform/audit/store/memory"
)

type HandlerSuite struct {
	suite.Suite
	server   *httptest.Server
	legacy   *legacy.InMemoryStore
	profiles *profile.InMemoryStore
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.Default()
	provider := devprovider.New()
	s.profiles = profile.NewInMemoryStore()
	s.legacy = legacy.NewInMemoryStore()
	auditPub := publisher.NewPublisher(memory.NewInMemoryStore())
	tokens := jwtsession.NewService("test-signing-key", "gesher", time.Hour)
	checker := admin.NewChecker([]string{"0523985505"})

	svc := service.New(provider, s.profiles, s.legacy, auditPub, logger)
	handler := New(svc, s.profiles, tokens, checker, logger)
	router := NewRouter(handler, tokens, RouterConfig{AllowedOrigins: []string{"*"}}, logger)
	s.server = httptest.NewServer(router)
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) postJSON(path, token string, body any) *http.Response {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)
	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, bytes.NewReader(payload))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *HandlerSuite) get(path, token string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *HandlerSuite) decodeSession(resp *http.Response) sessionResponse {
	defer resp.Body.Close()
	var body sessionResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func (s *HandlerSuite) registerUser(rawPhone string) sessionResponse {
	resp := s.postJSON("/auth/register", "", map[string]string{
		"phone":      rawPhone,
		"first_name": "Dana",
		"last_name":  "Levi",
		"password":   "s3cret",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return s.decodeSession(resp)
}

func (s *HandlerSuite) TestRegisterAndSignIn() {
	created := s.registerUser("050-1234567")
	s.Equal("972501234567", created.Phone)
	s.NotEmpty(created.Token)

	resp := s.postJSON("/auth/signin", "", map[string]string{
		"phone":    "0501234567",
		"password": "s3cret",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := s.decodeSession(resp)
	s.Equal("972501234567", body.Phone)
	s.Equal("050-1234567", body.DisplayPhone)
	s.Equal("Dana Levi", body.FullName)
	s.False(body.IsAdmin)
	s.NotEmpty(body.Token)
}

func (s *HandlerSuite) TestSignInWrongPassword() {
	s.registerUser("0501234567")

	resp := s.postJSON("/auth/signin", "", map[string]string{
		"phone":    "0501234567",
		"password": "wrong",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HandlerSuite) TestRegisterDuplicateConflicts() {
	s.registerUser("0501234567")

	resp := s.postJSON("/auth/register", "", map[string]string{
		"phone":      "+972501234567",
		"first_name": "Other",
		"last_name":  "Person",
		"password":   "x",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *HandlerSuite) TestLegacySignInGrantsAdminSession() {
	phone, err := id.ParsePhone("0523985505")
	s.Require().NoError(err)
	s.legacy.Seed(phone, "112233")

	resp := s.postJSON("/auth/signin", "", map[string]string{
		"phone":    "052-398-5505",
		"password": "112233",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := s.decodeSession(resp)
	s.True(body.IsAdmin)
	s.Empty(body.FullName, "legacy holders have no profile yet")

	adminResp := s.get("/auth/admin", body.Token)
	defer adminResp.Body.Close()
	s.Require().Equal(http.StatusOK, adminResp.StatusCode)
	var check map[string]bool
	s.Require().NoError(json.NewDecoder(adminResp.Body).Decode(&check))
	s.True(check["is_admin"])
}

func (s *HandlerSuite) TestSessionEndpointRequiresToken() {
	resp := s.get("/auth/session", "")
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HandlerSuite) TestSessionEndpointWithToken() {
	created := s.registerUser("0501234567")

	resp := s.get("/auth/session", created.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := s.decodeSession(resp)
	s.Equal("972501234567", body.Phone)
	s.Equal("Dana", body.FirstName)
	s.Empty(body.Token, "session reads never mint new tokens")
}

func (s *HandlerSuite) TestSignOut() {
	created := s.registerUser("0501234567")

	resp := s.postJSON("/auth/signout", created.Token, struct{}{})
	defer resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)
}

func (s *HandlerSuite) TestMalformedBody() {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/auth/signin", bytes.NewReader([]byte("{not json")))
	s.Require().NoError(err)
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestHealthz() {
	resp := s.get("/healthz", "")
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}
