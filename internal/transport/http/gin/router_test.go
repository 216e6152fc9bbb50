package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/auth"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/mail"
	"github.com/kirinyoku/sievent/internal/repository/memory"
	"github.com/kirinyoku/sievent/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	signer *auth.Signer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	signer := auth.NewSigner("session-secret")

	svcs := service.NewServices(service.Deps{
		Store:         store,
		Mailer:        mail.NewLogMailer(logger),
		SessionSigner: signer,
		TicketSigner:  auth.NewSigner("ticket-secret"),
		Logger:        logger,
	}, service.Config{})

	return &testServer{
		router: NewRouter(svcs, logger, Options{SessionTTL: time.Hour}),
		store:  store,
		signer: signer,
	}
}

// user stores an account and returns a bearer token for it.
func (s *testServer) user(t *testing.T, email string, creator, admin bool) (*domain.User, string) {
	t.Helper()

	u := &domain.User{ID: uuid.New(), Name: email, Email: email, IsCreator: creator, IsAdmin: admin}
	require.NoError(t, s.store.Users().Create(context.Background(), u))

	token, _, err := s.signer.SignSession(u.ID, time.Hour)
	require.NoError(t, err)

	return u, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (s *testServer) event(t *testing.T, token string, price int64, capacity int) domain.Event {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/events", token, CreateEventRequest{
		Name:            "Jazz Night",
		Type:            domain.EventOffline,
		Date:            time.Now().Add(72 * time.Hour).UTC(),
		Location:        "Gedung Kesenian",
		Price:           decimal.NewFromInt(price),
		TicketAvailable: capacity,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var e domain.Event
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &e))
	return e
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name:     "Ayu",
		Email:    "ayu@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())

	var u domain.User
	require.NoError(t, json.Unmarshal(decode(t, me).Data, &u))
	assert.Equal(t, "ayu@example.com", u.Email)

	dup := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name:     "Ayu",
		Email:    "ayu@example.com",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/tickets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, kindUnauthenticated, decode(t, w).Kind)

	w = s.do(t, http.MethodGet, "/api/tickets", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatorOnlyRoutes(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "ayu@example.com", false, false)

	w := s.do(t, http.MethodPost, "/api/events", token, CreateEventRequest{
		Name:  "Jazz Night",
		Type:  domain.EventOffline,
		Date:  time.Now().Add(time.Hour),
		Price: decimal.NewFromInt(10),
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, kindUnauthorized, decode(t, w).Kind)

	w = s.do(t, http.MethodPost, "/api/qr/verify", token, VerifyTicketRequest{Token: "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/reports", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTicketErrorMapping(t *testing.T) {
	s := newTestServer(t)
	_, creator := s.user(t, "organizer@example.com", true, false)
	_, buyer := s.user(t, "ayu@example.com", false, false)

	e := s.event(t, creator, 100000, 2)

	tests := []struct {
		name   string
		path   string
		body   CreateTicketRequest
		status int
		kind   string
	}{
		{"zero quantity", "/api/tickets", CreateTicketRequest{EventID: e.ID.String(), Quantity: 0}, http.StatusBadRequest, kindInvalidQuantity},
		{"over capacity", "/api/tickets", CreateTicketRequest{EventID: e.ID.String(), Quantity: 3}, http.StatusConflict, kindInsufficientInventory},
		{"free path on paid event", "/api/tickets/free", CreateTicketRequest{EventID: e.ID.String(), Quantity: 1}, http.StatusBadRequest, kindPaidEventNotAllowed},
		{"unknown event", "/api/tickets", CreateTicketRequest{EventID: uuid.NewString(), Quantity: 1}, http.StatusNotFound, kindNotFound},
		{"malformed event id", "/api/tickets", CreateTicketRequest{EventID: "event-42", Quantity: 1}, http.StatusBadRequest, kindValidation},
		{"malformed event id on free path", "/api/tickets/free", CreateTicketRequest{EventID: "42", Quantity: 1}, http.StatusBadRequest, kindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, buyer, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.kind, decode(t, w).Kind)
		})
	}

	w := s.do(t, http.MethodPost, "/api/tickets", buyer, CreateTicketRequest{EventID: e.ID.String(), Quantity: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tk domain.Ticket
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &tk))
	assert.Equal(t, domain.TicketPending, tk.Status)

	w = s.do(t, http.MethodPost, "/api/tickets/"+tk.ID.String()+"/cancel", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/tickets/"+tk.ID.String()+"/cancel", buyer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, kindInvalidState, decode(t, w).Kind)

	w = s.do(t, http.MethodGet, "/api/tickets/not-a-uuid", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/payments", buyer, CreatePaymentRequest{TicketID: "ticket-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, kindValidation, decode(t, w).Kind)
}

func TestGetEventETag(t *testing.T) {
	s := newTestServer(t)
	_, creator := s.user(t, "organizer@example.com", true, false)
	e := s.event(t, creator, 0, 50)

	w := s.do(t, http.MethodGet, "/api/events/"+e.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)

	w = s.do(t, http.MethodGet, "/api/events/"+e.ID.String(), "", nil, "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = s.do(t, http.MethodGet, "/api/events/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyRejectsBadToken(t *testing.T) {
	s := newTestServer(t)
	_, creator := s.user(t, "organizer@example.com", true, false)

	w := s.do(t, http.MethodGet, "/api/qr/verify?token=garbage", creator, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, kindInvalidToken, decode(t, w).Kind)

	w = s.do(t, http.MethodGet, "/api/qr/verify", creator, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateEventStatus(t *testing.T) {
	s := newTestServer(t)
	_, creator := s.user(t, "organizer@example.com", true, false)
	_, buyer := s.user(t, "ayu@example.com", false, false)
	e := s.event(t, creator, 0, 10)

	path := "/api/events/" + e.ID.String() + "/ratings"

	w := s.do(t, http.MethodPost, path, buyer, RateEventRequest{Stars: 4})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, path, buyer, RateEventRequest{Stars: 5})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []domain.Rating
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Stars)
}
