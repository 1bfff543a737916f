package admin_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/posthub/internal/app/features/admin"
	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/store/audit"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/auditlog"
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/dalemusser/posthub/internal/app/system/inputval"
	"github.com/dalemusser/posthub/internal/app/system/ratelimit"
	"github.com/dalemusser/posthub/internal/app/system/uploads"
	"github.com/dalemusser/posthub/internal/app/system/xlsxexport"
	"github.com/dalemusser/posthub/internal/domain/models"
	"github.com/dalemusser/posthub/internal/testutil"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type env struct {
	h     *admin.Handler
	fx    *testutil.Fixtures
	audit *audit.Store
	dir   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	am, err := auth.NewManager("test-secret", 0, "", false, userstore.NewFetcher(db))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	dir := t.TempDir()
	store, err := uploads.NewLocal(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	as := audit.New(db)
	al := auditlog.New(as, logger, auditlog.Config{Auth: auditlog.ModeDB, Admin: auditlog.ModeDB})

	h := admin.NewHandler(db, am, store, nil, true, uierrors.NewErrorLogger(logger), al, logger)
	return &env{h: h, fx: testutil.NewFixtures(t, db), audit: as, dir: dir}
}

func (e *env) countEvents(t *testing.T, eventType string) int {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := e.audit.Query(ctx, audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("audit query: %v", err)
	}
	return len(events)
}

func jsonPost(target string, body any) *http.Request {
	return testutil.NewJSONRequest(http.MethodPost, target, nil, body)
}

// multipartRequest builds a multipart body with fields and an optional avatar.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, avatar []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if avatar != nil {
		fw, err := mw.CreateFormFile("avatar", "me.png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(avatar)
	}
	mw.Close()
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRegisterAdmin(t *testing.T) {
	e := newEnv(t)

	rec := testutil.NewRecorder()
	e.h.HandleRegisterAdmin(rec, jsonPost("/register-admin", map[string]string{
		"name": "Root", "email": "Root@Example.com", "password": "Secret1!",
	}))
	rec.AssertStatus(t, http.StatusCreated)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	rec.DecodeJSON(t, &body)
	if !body.Success || body.Message != "Admin registered" || body.Token == "" {
		t.Errorf("body = %+v", body)
	}
	claims, err := e.h.Auth.ParseToken(body.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("role claim = %q", claims.Role)
	}

	rec = testutil.NewRecorder()
	e.h.HandleRegisterAdmin(rec, jsonPost("/register-admin", map[string]string{
		"name": "Again", "email": "root@example.com", "password": "Secret1!",
	}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Admin already exists")

	if n := e.countEvents(t, audit.EventAdminRegistered); n != 1 {
		t.Errorf("admin_registered events = %d, want 1", n)
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	adm := e.fx.CreateAdmin(ctx, "Ada", "ada@example.com", "Secret1!")
	e.fx.CreateUser(ctx, "Plain", "plain@example.com", "US")

	tests := []struct {
		name     string
		email    string
		password string
		want     int
		message  string
	}{
		{"unknown email", "nobody@example.com", "Secret1!", http.StatusNotFound, "Admin not found"},
		{"not an admin", "plain@example.com", "Secret1!", http.StatusNotFound, "Admin not found"},
		{"wrong password", "ada@example.com", "nope", http.StatusBadRequest, "Invalid password"},
		{"success", " ADA@example.com ", "Secret1!", http.StatusOK, "Login successful"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.h.HandleLogin(rec, jsonPost("/login-admin", map[string]string{
				"email": tt.email, "password": tt.password,
			}))
			rec.AssertStatus(t, tt.want)
			rec.AssertContains(t, tt.message)
		})
	}

	rec := testutil.NewRecorder()
	e.h.HandleLogin(rec, jsonPost("/login-admin", map[string]string{
		"email": "ada@example.com", "password": "Secret1!",
	}))
	var body struct {
		Admin struct {
			ID    primitive.ObjectID `json:"_id"`
			Email string             `json:"email"`
		} `json:"admin"`
		Token string `json:"token"`
	}
	rec.DecodeJSON(t, &body)
	if body.Admin.ID != adm.ID || body.Token == "" {
		t.Errorf("body = %+v", body)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not include the password hash")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != auth.DefaultCookieName || cookies[0].Value != body.Token || !cookies[0].HttpOnly {
		t.Errorf("cookies = %+v", cookies)
	}

	if n := e.countEvents(t, audit.EventLoginFailedWrongPassword); n != 1 {
		t.Errorf("wrong password events = %d, want 1", n)
	}
	if n := e.countEvents(t, audit.EventLoginSuccess); n != 2 {
		t.Errorf("login success events = %d, want 2", n)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	e := newEnv(t)
	e.h.Limiter = ratelimit.NewLoginLimiter(1)
	t.Cleanup(e.h.Limiter.Stop)

	for i, want := range []int{http.StatusNotFound, http.StatusTooManyRequests} {
		rec := testutil.NewRecorder()
		e.h.HandleLogin(rec, jsonPost("/login-admin", map[string]string{
			"email": "x@example.com", "password": "whatever",
		}))
		if rec.Code != want {
			t.Errorf("attempt %d: status = %d, want %d", i+1, rec.Code, want)
		}
	}
	if n := e.countEvents(t, audit.EventLoginFailedRateLimit); n != 1 {
		t.Errorf("rate limit events = %d, want 1", n)
	}
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	token, err := e.h.Auth.IssueToken(primitive.NewObjectID(), models.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := testutil.NewRecorder()
	e.h.HandleLogout(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Logged out successfully")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestRegisterUser_Validation(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateUser(ctx, "Taken", "taken@example.com", "")

	tests := []struct {
		name    string
		fields  map[string]string
		message string
	}{
		{"missing password", map[string]string{"name": "A", "email": "a@example.com"}, "All fields are required"},
		{"blank name", map[string]string{"name": "  ", "email": "a@example.com", "password": "Secret1!"}, "All fields are required"},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "Secret1!"}, inputval.MsgInvalidEmail},
		{"weak password", map[string]string{"name": "A", "email": "a@example.com", "password": "secret"}, inputval.MsgWeakPassword},
		{"duplicate", map[string]string{"name": "A", "email": "TAKEN@example.com", "password": "Secret1!"}, "User already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.h.HandleRegisterUser(rec, multipartRequest(t, http.MethodPost, "/register-user", tt.fields, nil))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.message)
		})
	}
}

func TestRegisterUser_WithAvatar(t *testing.T) {
	e := newEnv(t)

	rec := testutil.NewRecorder()
	e.h.HandleRegisterUser(rec, multipartRequest(t, http.MethodPost, "/register-user", map[string]string{
		"name":     "Bea",
		"email":    "bea@example.com",
		"password": "Secret1!",
		"country":  "Canada",
		"language": "en, fr",
	}, pngHeader))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		User models.User `json:"user"`
	}
	rec.DecodeJSON(t, &body)
	u := body.User
	if u.Role != models.RoleUser || u.Status != models.StatusActive {
		t.Errorf("role/status = %q/%q", u.Role, u.Status)
	}
	if u.Country != "Canada" || len(u.Language) != 2 {
		t.Errorf("profile = %+v", u)
	}
	if !strings.HasPrefix(u.Avatar, "/uploads/avatars/") {
		t.Errorf("avatar = %q", u.Avatar)
	}
	if n := e.countEvents(t, audit.EventUserRegistered); n != 1 {
		t.Errorf("user_registered events = %d, want 1", n)
	}
}

func TestCreateUser(t *testing.T) {
	e := newEnv(t)
	adm := testutil.AdminPrincipal()
	fields := map[string]string{"name": "Cal", "email": "cal@example.com", "password": "Secret1!"}

	req := auth.WithTestAdmin(multipartRequest(t, http.MethodPost, "/create-user", fields, nil), adm)
	rec := testutil.NewRecorder()
	e.h.HandleCreateUser(rec, req)
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "User created successfully")

	var body struct {
		User models.User `json:"user"`
	}
	rec.DecodeJSON(t, &body)
	if body.User.Status != models.StatusInactive {
		t.Errorf("status = %q, want inactive", body.User.Status)
	}

	req = auth.WithTestAdmin(multipartRequest(t, http.MethodPost, "/create-user", fields, nil), adm)
	rec = testutil.NewRecorder()
	e.h.HandleCreateUser(rec, req)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "Email already exists")

	fields["password"] = "weak"
	fields["email"] = "other@example.com"
	req = auth.WithTestAdmin(multipartRequest(t, http.MethodPost, "/create-user", fields, nil), adm)
	rec = testutil.NewRecorder()
	e.h.HandleCreateUser(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Weak password")
}

func TestCreateUser_RequiresAdmin(t *testing.T) {
	e := newEnv(t)
	rec := testutil.NewRecorder()
	e.h.HandleCreateUser(rec, multipartRequest(t, http.MethodPost, "/create-user", nil, nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestListAndGet(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := e.fx.CreateUser(ctx, "Alice", "alice@example.com", "US")
	gone := e.fx.CreateUser(ctx, "Gone", "gone@example.com", "US")
	e.fx.SoftDeleteUser(ctx, gone.ID)
	bob := e.fx.CreateUser(ctx, "Bob", "bob@example.com", "US")
	post := e.fx.CreatePost(ctx, alice.ID, "Hello", []string{"news"})
	e.fx.AddComment(ctx, post.ID, bob.ID, "hi")

	rec := testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/allUsers", testutil.AdminPrincipal()))
	rec.AssertStatus(t, http.StatusOK)
	var list struct {
		Message string        `json:"message"`
		Users   []models.User `json:"users"`
	}
	rec.DecodeJSON(t, &list)
	if list.Message != "Fetch all user successfully" || len(list.Users) != 2 {
		t.Errorf("list = %+v", list)
	}

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/getById/x"), "id", alice.ID.Hex())
	rec = testutil.NewRecorder()
	e.h.ServeUser(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	var detail struct {
		User struct {
			Name  string              `json:"name"`
			Posts []models.PostDetail `json:"posts"`
		} `json:"user"`
	}
	rec.DecodeJSON(t, &detail)
	if detail.User.Name != "Alice" || len(detail.User.Posts) != 1 {
		t.Fatalf("detail = %+v", detail)
	}
	c := detail.User.Posts[0].Comments
	if len(c) != 1 || c[0].User == nil || c[0].User.Name != "Bob" {
		t.Errorf("comments = %+v", c)
	}

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-id"} {
		req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/getById/x"), "id", id)
		rec := testutil.NewRecorder()
		e.h.ServeUser(rec, req)
		rec.AssertStatus(t, http.StatusNotFound)
		rec.AssertContains(t, "User not found")
	}
}

func TestUpdate(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := e.fx.CreateUser(ctx, "Dan", "dan@example.com", "US")
	adm := testutil.AdminPrincipal()

	update := func(fields map[string]string, avatar []byte) *testutil.ResponseRecorder {
		req := multipartRequest(t, http.MethodPut, "/update/x", fields, avatar)
		req = testutil.WithChiURLParam(auth.WithTestAdmin(req, adm), "id", u.ID.Hex())
		rec := testutil.NewRecorder()
		e.h.HandleUpdate(rec, req)
		return rec
	}

	rec := update(map[string]string{"state": "Ohio", "status": "pending", "role": "admin"}, pngHeader)
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Message     string      `json:"message"`
		UpdatedUser models.User `json:"updatedUser"`
	}
	rec.DecodeJSON(t, &body)
	got := body.UpdatedUser
	if body.Message != "User updated successfully" || got.State != "Ohio" || got.Status != models.StatusPending {
		t.Errorf("body = %+v", body)
	}
	if got.Role != models.RoleUser {
		t.Errorf("role must not be editable, got %q", got.Role)
	}
	if got.Name != "Dan" || got.Country != "US" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.Avatar == "" {
		t.Error("avatar not stored")
	}

	rec = update(map[string]string{"status": "banned"}, nil)
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = update(map[string]string{"email": "nope"}, nil)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, inputval.MsgInvalidEmail)

	if n := e.countEvents(t, audit.EventUserUpdated); n != 1 {
		t.Errorf("user_updated events = %d, want 1", n)
	}
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := e.fx.CreateUser(ctx, "Eve", "eve@example.com", "US")
	adm := testutil.AdminPrincipal()

	del := func(id string) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/delete/x", adm)
		req = testutil.WithChiURLParam(req, "id", id)
		rec := testutil.NewRecorder()
		e.h.HandleDelete(rec, req)
		return rec
	}

	rec := del(u.ID.Hex())
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "User marked as deleted successfully")

	rec = del(u.ID.Hex())
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "User is already deleted")

	rec = del(primitive.NewObjectID().Hex())
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestExportUsers(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := testutil.NewRecorder()
	e.h.ServeExportUsers(rec, testutil.NewRequest(http.MethodGet, "/exportUser"))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "No users found")

	u := e.fx.CreateUser(ctx, "Fay", "fay@example.com", "US")
	gone := e.fx.CreateUser(ctx, "Gil", "gil@example.com", "US")
	e.fx.SoftDeleteUser(ctx, gone.ID)

	rec = testutil.NewRecorder()
	e.h.ServeExportUsers(rec, testutil.NewRequest(http.MethodGet, "/exportUser"))
	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != xlsxexport.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	rows := readRows(t, rec.Body.Bytes(), "Users")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/exportSingleUser/x"), "id", u.ID.Hex())
	rec = testutil.NewRecorder()
	e.h.ServeExportUser(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "user.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestUserSheet(t *testing.T) {
	s := admin.UserSheet(models.User{Name: "Hal", Email: "hal@example.com", Role: "user", Language: []string{"en", "de"}})
	if len(s.Columns) != 13 || len(s.Rows) != 1 || len(s.Rows[0]) != 13 {
		t.Fatalf("sheet shape: %d columns, %d rows", len(s.Columns), len(s.Rows))
	}
	row := s.Rows[0]
	if row[3] != "en, de" {
		t.Errorf("language = %v", row[3])
	}
	if row[4] != "N/A" || row[11] != "N/A" {
		t.Errorf("empty values should read N/A: %v", row)
	}
	if s.Stripe != xlsxexport.StripeColumns {
		t.Errorf("stripe = %v", s.Stripe)
	}
}

func readRows(t *testing.T, b []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	return rows
}
