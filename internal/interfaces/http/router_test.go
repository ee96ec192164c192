package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/audit"
	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/mutation"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/metrics"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventory-manager/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventory-manager/pkg/jwt"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New("test")
	p := mutation.New(audit.NewRecorder(store.Audit()), m, logger.Nop(), time.Second)
	products := usecase.NewProductUseCase(store.Products(), p, false)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, true, p),
		ProductUC: products,
		ReportUC:  usecase.NewReportUseCase(products, pdf.NewMarotoReportGenerator("test")),
		UserUC:    usecase.NewUserUseCase(store.Users(), store, p),
		AuditUC:   usecase.NewAuditUseCase(store.Audit()),
		Verifier:  auth.NewJWTVerifier(testJWTSecret),
		Logger:    logger.Nop(),
		Metrics:   m,
	})
	return &apiFixture{app: app, store: store}
}

// tokenFor inserta un usuario con el rol dado y devuelve su header Authorization.
func (f *apiFixture) tokenFor(t *testing.T, role entity.Role) (string, string) {
	t.Helper()
	u := &entity.User{ID: faker.UUIDHyphenated(), Email: strings.ToLower(faker.Email()), PasswordHash: "x", Role: role, CreatedAt: time.Now()}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	tok, err := pkgjwt.Generate(testJWTSecret, u.ID, u.Email, string(role), testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok, u.ID
}

func (f *apiFixture) do(t *testing.T, method, path, authHeader string, body any) *http.Response {
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
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
	return out
}

func TestAPI_RegistroLoginYMe(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"email": "Ana@Example.com", "password": "secreto123", "role": "editor",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	user := decode[dto.UserResponse](t, resp)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "editor", user.Role)

	resp = f.do(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"email": "ana@example.com", "password": "otroSecreto", "role": "viewer",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/auth/login", "", fiber.Map{"email": "ana@example.com", "password": "secreto123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)

	resp = f.do(t, http.MethodGet, "/auth/me", "Bearer "+login.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	me := decode[dto.SessionUser](t, resp)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "editor", me.Role)
}

func TestAPI_LoginFallidoEsIndistinguible(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"email": "bob@example.com", "password": "secreto123", "role": "viewer",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	wrongPass := f.do(t, http.MethodPost, "/auth/login", "", fiber.Map{"email": "bob@example.com", "password": "incorrecta"})
	unknown := f.do(t, http.MethodPost, "/auth/login", "", fiber.Map{"email": "nadie@example.com", "password": "secreto123"})

	assert.Equal(t, fiber.StatusUnauthorized, wrongPass.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, unknown.StatusCode)
	assert.Equal(t, readBody(t, wrongPass), readBody(t, unknown))
}

func TestAPI_RegistroValidaCuerpo(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"email": "no-es-email", "password": "corta", "role": "root",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "email")
	assert.Contains(t, body.Message, "password")
	assert.Contains(t, body.Message, "role")
}

func TestAPI_CicloDeVidaDeProducto(t *testing.T) {
	f := newAPI(t)
	editor, _ := f.tokenFor(t, entity.RoleEditor)
	viewer, _ := f.tokenFor(t, entity.RoleViewer)
	admin, _ := f.tokenFor(t, entity.RoleAdmin)

	resp := f.do(t, http.MethodPost, "/products", editor, fiber.Map{
		"referencia": "REF1", "cor": "red", "x": 1, "y": 2, "rack": "A1", "acab": "matte",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, "REF1", created.Referencia)

	resp = f.do(t, http.MethodGet, "/products", viewer, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.ProductResponse](t, resp), 1)

	resp = f.do(t, http.MethodPost, "/products", viewer, fiber.Map{"referencia": "REF2"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/products/"+created.ID, editor, fiber.Map{"marked": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode[dto.ProductResponse](t, resp)
	assert.True(t, updated.Marked)
	assert.Equal(t, "red", updated.Cor, "los campos ausentes se conservan")

	resp = f.do(t, http.MethodDelete, "/products/"+created.ID, editor, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/products/"+created.ID, admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/products/"+created.ID, viewer, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/audit-logs?entity=product", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	logs := decode[[]dto.AuditLogResponse](t, resp)
	require.Len(t, logs, 3)
	assert.Equal(t, "DELETE", logs[0].Action)
	assert.Equal(t, "UPDATE", logs[1].Action)
	assert.Equal(t, "CREATE", logs[2].Action)
}

func TestAPI_ProductoSinReferenciaEs400(t *testing.T) {
	f := newAPI(t)
	editor, _ := f.tokenFor(t, entity.RoleEditor)

	resp := f.do(t, http.MethodPost, "/products", editor, fiber.Map{"cor": "red"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
	assert.Empty(t, f.store.AuditEntries())
}

func TestAPI_SinTokenEs401(t *testing.T) {
	f := newAPI(t)
	for _, path := range []string{"/products", "/users", "/audit-logs", "/auth/me", "/products/report.pdf"} {
		resp := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAPI_AuditLogsSoloAdmin(t *testing.T) {
	f := newAPI(t)
	editor, _ := f.tokenFor(t, entity.RoleEditor)
	admin, _ := f.tokenFor(t, entity.RoleAdmin)

	resp := f.do(t, http.MethodGet, "/audit-logs", editor, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/audit-logs?day=16-10-2026", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/audit-logs?action=RENAME", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/audit-logs?entity_id=abc", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "entity_id debe ser un uuid")

	resp = f.do(t, http.MethodGet, "/audit-logs?user_id=abc", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "user_id debe ser un uuid")

	resp = f.do(t, http.MethodGet, "/audit-logs", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.AuditLogResponse](t, resp))
}

func TestAPI_AdministracionDeUsuarios(t *testing.T) {
	f := newAPI(t)
	admin, adminID := f.tokenFor(t, entity.RoleAdmin)
	editor, _ := f.tokenFor(t, entity.RoleEditor)

	resp := f.do(t, http.MethodPost, "/users", editor, fiber.Map{"email": "x@example.com", "password": "secreto123", "role": "viewer"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/users", admin, fiber.Map{"email": "carla@example.com", "password": "secreto123", "role": "viewer"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	carla := decode[dto.UserResponse](t, resp)

	resp = f.do(t, http.MethodPut, "/users/"+carla.ID, admin, fiber.Map{"role": "editor"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "editor", decode[dto.UserResponse](t, resp).Role)

	resp = f.do(t, http.MethodPut, "/users/"+adminID, admin, fiber.Map{"role": "viewer"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/users/"+adminID, admin, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/users/"+carla.ID, admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/users", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	for _, u := range decode[[]dto.UserResponse](t, resp) {
		assert.NotEqual(t, carla.ID, u.ID)
	}
}

func TestAPI_ReportePDF(t *testing.T) {
	f := newAPI(t)
	editor, _ := f.tokenFor(t, entity.RoleEditor)
	viewer, _ := f.tokenFor(t, entity.RoleViewer)

	resp := f.do(t, http.MethodPost, "/products", editor, fiber.Map{"referencia": "REF1", "x": 1, "y": 2})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/products/report.pdf?marked=false", viewer, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(readBody(t, resp), []byte("%PDF")))

	resp = f.do(t, http.MethodGet, "/products/report.pdf?marked=quizas", viewer, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_HealthYMetrics(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(readBody(t, resp)))

	resp = f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(readBody(t, resp)), "test_http_requests_total")
}
