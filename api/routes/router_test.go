package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/api/controllers"
	"github.com/agriportal/agriportal-backend/internal/certificates"
	"github.com/agriportal/agriportal-backend/internal/mailer"
	"github.com/agriportal/agriportal-backend/internal/notifications"
	"github.com/agriportal/agriportal-backend/internal/registrations"
	pkgAuth "github.com/agriportal/agriportal-backend/pkg/auth"
	"github.com/agriportal/agriportal-backend/pkg/config"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/agriportal/agriportal-backend/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type capturingTransport struct {
	sent []mailer.Message
}

func (c *capturingTransport) Name() string { return "capture" }

func (c *capturingTransport) Send(_ context.Context, _ mailer.Address, msg mailer.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "agriportal-test", ExpirationMinutes: 5},
		Certificate: config.CertificateConfig{
			Country: "Republic of the Philippines", Department: "Department of Agriculture",
			Authority: "Philippine Coconut Authority", Office: "Regional Office",
			Signatory: "Regional Manager", NumberPrefix: "PCA", ValidityYears: 1,
		},
	}
}

func token(t *testing.T, cfg *config.Config, email string, role enums.Role) string {
	t.Helper()
	signed, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{Email: email, Role: role})
	require.NoError(t, err)
	return "Bearer " + signed
}

type registrationHarness struct {
	cfg       *config.Config
	conn      *gorm.DB
	transport *capturingTransport
	handler   http.Handler
}

func newRegistrationHarness(t *testing.T) *registrationHarness {
	t.Helper()
	cfg := testConfig()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	logg := logger.Nop()
	generator := certificates.NewGenerator(cfg.Certificate)
	transport := &capturingTransport{}
	dispatcher, err := mailer.NewDispatcher(transport, mailer.Address{Email: "no-reply@agriportal.test"}, generator, logg, nil)
	require.NoError(t, err)
	notificationSvc, err := notifications.NewService(notifications.NewRepository(conn))
	require.NoError(t, err)
	registrationSvc, err := registrations.NewService(registrations.NewRepository(conn), dispatcher, generator, notificationSvc, logg)
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, Dependencies{
		Health:        map[string]controllers.Pinger{"db": stubPinger{}},
		Registrations: registrationSvc,
		Notifications: notificationSvc,
	})
	return &registrationHarness{cfg: cfg, conn: conn, transport: transport, handler: handler}
}

func (h *registrationHarness) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func submitRegistration(t *testing.T, h *registrationHarness) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/v1/registrations", "", map[string]any{
		"business_name":    "Acme Coconuts",
		"contact_person":   "Jane Doe",
		"email":            "Jane@Example.test",
		"office_address":   "Boac, Marinduque",
		"municipality":     "Boac",
		"application_type": "new",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Data registrations.RegistrationDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, string(enums.ApplicationStatusPending), envelope.Data.Status)
	return envelope.Data.ID.String()
}

func TestHealthLive(t *testing.T) {
	h := newRegistrationHarness(t)
	rec := h.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "live")
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := testConfig()
	handler := NewRouter(cfg, logger.Nop(), Dependencies{
		Health: map[string]controllers.Pinger{
			"db":    stubPinger{},
			"redis": stubPinger{err: fmt.Errorf("connection refused")},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h := newRegistrationHarness(t)

	rec := h.do(t, http.MethodGet, "/api/admin/v1/registrations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/admin/v1/registrations", token(t, h.cfg, "buyer@example.test", enums.RoleBuyer), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/admin/v1/registrations", token(t, h.cfg, "admin@example.test", enums.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotificationsRequireAuth(t *testing.T) {
	h := newRegistrationHarness(t)
	rec := h.do(t, http.MethodGet, "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAcceptRegistrationEmailsCertificate(t *testing.T) {
	h := newRegistrationHarness(t)
	id := submitRegistration(t, h)
	admin := token(t, h.cfg, "admin@example.test", enums.RoleAdmin)

	rec := h.do(t, http.MethodPost, "/api/admin/v1/registrations/"+id+"/status", admin, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			Registration        registrations.RegistrationDTO `json:"registration"`
			Changed             bool                          `json:"changed"`
			EmailSent           bool                          `json:"email_sent"`
			CertificateAttached bool                          `json:"certificate_attached"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Changed)
	assert.True(t, envelope.Data.EmailSent)
	assert.True(t, envelope.Data.CertificateAttached)
	assert.Equal(t, string(enums.ApplicationStatusApproved), envelope.Data.Registration.Status)

	var stored models.Registration
	require.NoError(t, h.conn.First(&stored, "id = ?", id).Error)
	assert.Equal(t, enums.ApplicationStatusApproved, stored.Status)
	require.NotNil(t, stored.CertificateNumber)
	require.NotNil(t, stored.ValidUntil)

	require.Len(t, h.transport.sent, 1)
	msg := h.transport.sent[0]
	assert.Equal(t, []string{"jane@example.test"}, msg.To)
	require.True(t, msg.HasAttachment(mailer.ContentTypePDF))
	assert.True(t, bytes.HasPrefix(msg.Attachments[0].Data, []byte("%PDF-")))

	var notes []models.Notification
	require.NoError(t, h.conn.Where("user_email = ?", "jane@example.test").Find(&notes).Error)
	assert.Len(t, notes, 1)

	rec = h.do(t, http.MethodPost, "/api/admin/v1/registrations/"+id+"/status", admin, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"changed":false`)
	assert.Len(t, h.transport.sent, 1)
}

func TestRejectRegistrationSendsNoAttachment(t *testing.T) {
	h := newRegistrationHarness(t)
	id := submitRegistration(t, h)
	admin := token(t, h.cfg, "admin@example.test", enums.RoleAdmin)

	rec := h.do(t, http.MethodPost, "/api/admin/v1/registrations/"+id+"/status", admin, map[string]string{"status": "rejected"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"certificate_attached":false`)

	require.Len(t, h.transport.sent, 1)
	assert.Empty(t, h.transport.sent[0].Attachments)

	rec = h.do(t, http.MethodGet, "/api/admin/v1/registrations/"+id+"/certificate", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRegistrationStatusRejectsUnknownDecision(t *testing.T) {
	h := newRegistrationHarness(t)
	id := submitRegistration(t, h)
	admin := token(t, h.cfg, "admin@example.test", enums.RoleAdmin)

	rec := h.do(t, http.MethodPost, "/api/admin/v1/registrations/"+id+"/status", admin, map[string]string{"status": "Approved"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.transport.sent)
}

func TestCertificateDownload(t *testing.T) {
	h := newRegistrationHarness(t)
	id := submitRegistration(t, h)
	admin := token(t, h.cfg, "admin@example.test", enums.RoleAdmin)

	rec := h.do(t, http.MethodPost, "/api/admin/v1/registrations/"+id+"/status", admin, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/admin/v1/registrations/"+id+"/certificate?download=true", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mailer.ContentTypePDF, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestUploadsMountServesFilesOnly(t *testing.T) {
	cfg := testConfig()
	dir := t.TempDir()
	cfg.Uploads = config.UploadsConfig{Dir: dir, PublicPath: "/uploads"}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0b7c-identity.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".upload-123"), []byte("partial"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	handler := NewRouter(cfg, logger.Nop(), Dependencies{})
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/uploads/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "0b7c-identity.pdf")

	assert.Equal(t, http.StatusNotFound, get("/uploads/nested/").Code)
	assert.Equal(t, http.StatusNotFound, get("/uploads/.upload-123").Code)

	rec = get("/uploads/0b7c-identity.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
}
