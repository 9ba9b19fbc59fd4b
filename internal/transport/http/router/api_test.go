package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"drivepro-backend/internal/core/auth"
	"drivepro-backend/internal/core/config"
	"drivepro-backend/internal/repo"
	"drivepro-backend/internal/seed"
	"drivepro-backend/internal/service"
)

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type testAPI struct {
	t *testing.T
	h http.Handler
}

func newTestAPI(t *testing.T, limits config.Limits, publicDir string) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repos := service.Repos{
		Users:         repo.NewMemoryUserRepo(),
		Lessons:       repo.NewMemoryLessonRepo(),
		Notifications: repo.NewMemoryNotificationRepo(),
	}
	if _, err := seed.Demo(context.Background(), repos, testNow); err != nil {
		t.Fatalf("seed: %v", err)
	}
	codec := &auth.Codec{Mode: auth.ModeHS256, Secret: []byte("router-test"), Issuer: "drivepro"}
	svc := service.New(repos, codec, nil, service.WithClock(func() time.Time { return testNow }))
	return &testAPI{t: t, h: NewAPIEngine(Deps{Svc: svc, Limits: limits, PublicDir: publicDir})}
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(email, userType string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/login", "",
		`{"email":"`+email+`","password":"password123","userType":"`+userType+`"}`)
	if w.Code != http.StatusOK {
		a.t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(a.t, w, &out)
	return out.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expectMessage(t *testing.T, w *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, w.Code, w.Body.String())
	}
	var body struct {
		Message string `json:"message"`
	}
	decode(t, w, &body)
	if body.Message != msg {
		t.Fatalf("expected message %q, got %q", msg, body.Message)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	a := newTestAPI(t, config.Limits{}, "")

	w := a.do(http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
	expectMessage(t, a.do(http.MethodGet, "/api/nope", "", ""), http.StatusNotFound, "Route not found")
	expectMessage(t, a.do(http.MethodGet, "/index.html", "", ""), http.StatusNotFound, "Route not found")

	if w := a.do(http.MethodGet, "/metrics", "", ""); w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t, config.Limits{}, "")

	expectMessage(t, a.do(http.MethodPost, "/api/login", "", ""), http.StatusBadRequest,
		"email, password and userType are required in the request body")
	expectMessage(t, a.do(http.MethodPost, "/api/login", "", `{"email":`), http.StatusBadRequest, "Invalid request body")
	// 角色不匹配
	expectMessage(t, a.do(http.MethodPost, "/api/auth/login", "",
		`{"email":"student@drivepro.com","password":"password123","userType":"admin"}`),
		http.StatusUnauthorized, "Invalid credentials")

	tok := a.login("STUDENT@drivepro.com", "student")
	w := a.do(http.MethodGet, "/api/profile", tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("profile: %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("profile leaks password: %s", w.Body.String())
	}
	var me map[string]any
	decode(t, w, &me)
	if me["name"] != "Sarah Student" || me["role"] != "student" || me["isActive"] != true {
		t.Fatalf("unexpected profile %v", me)
	}
}

func TestAuthenticate(t *testing.T) {
	a := newTestAPI(t, config.Limits{}, "")

	expectMessage(t, a.do(http.MethodGet, "/api/lessons", "", ""), http.StatusUnauthorized,
		"Missing or invalid Authorization header")
	expectMessage(t, a.do(http.MethodGet, "/api/lessons", "garbage", ""), http.StatusUnauthorized, "Invalid auth token")

	student := a.login("student@drivepro.com", "student")
	expectMessage(t, a.do(http.MethodGet, "/api/admin/stats", student, ""), http.StatusForbidden, "Forbidden")
	expectMessage(t, a.do(http.MethodPost, "/api/lessons", student, `{}`), http.StatusForbidden, "Forbidden")
}

func TestStats(t *testing.T) {
	a := newTestAPI(t, config.Limits{}, "")
	admin := a.login("admin@drivepro.com", "admin")

	for _, p := range []string{"/api/admin/stats", "/api/dashboard/stats"} {
		w := a.do(http.MethodGet, p, admin, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", p, w.Code, w.Body.String())
		}
		var st service.Stats
		decode(t, w, &st)
		want := service.Stats{TotalStudents: 1, TotalInstructors: 1, TodaysLessons: 1, PendingActions: 2}
		if st != want {
			t.Fatalf("%s: expected %+v, got %+v", p, want, st)
		}
	}
}

func TestBookingScenario(t *testing.T) {
	a := newTestAPI(t, config.Limits{}, "")
	admin := a.login("admin@drivepro.com", "admin")
	sarah := a.login("student@drivepro.com", "student")

	// 新学员，默认密码
	w := a.do(http.MethodPost, "/api/users", admin, `{"name":"Carl","email":"carl@drivepro.com","role":"student"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: %d %s", w.Code, w.Body.String())
	}
	expectMessage(t, a.do(http.MethodPost, "/api/users", admin,
		`{"name":"Dup","email":"CARL@drivepro.com","role":"student"}`), http.StatusConflict, "Email already in use")
	carl := a.login("carl@drivepro.com", "student")

	// 不指定教练时自动分配第一个可用教练
	w = a.do(http.MethodPost, "/api/lessons/book", carl, `{"date":"2024-03-20","time":"09:00","type":"Practical#2"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("book: %d %s", w.Code, w.Body.String())
	}
	var booked struct {
		ID         string         `json:"id"`
		Status     string         `json:"status"`
		Student    map[string]any `json:"studentId"`
		Instructor map[string]any `json:"instructorId"`
	}
	decode(t, w, &booked)
	if booked.Status != "scheduled" || booked.Instructor["name"] != "Ivan Instructor" || booked.Student["name"] != "Carl" {
		t.Fatalf("unexpected booking %+v", booked)
	}

	expectMessage(t, a.do(http.MethodDelete, "/api/lessons/"+booked.ID, sarah, ""), http.StatusForbidden,
		"You can only cancel your own lessons")
	expectMessage(t, a.do(http.MethodDelete, "/api/lessons/missing", sarah, ""), http.StatusNotFound, "Lesson not found")

	var mine []map[string]any
	decode(t, a.do(http.MethodGet, "/api/lessons", sarah, ""), &mine)
	if len(mine) != 2 {
		t.Fatalf("sarah should see 2 lessons, got %d", len(mine))
	}

	if w := a.do(http.MethodDelete, "/api/lessons/"+booked.ID, carl, ""); w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("own delete: %d %q", w.Code, w.Body.String())
	}
}

func TestLessonUpdateAndAttendance(t *testing.T) {
	a := newTestAPI(t, config.Limits{}, "")
	ivan := a.login("instructor@drivepro.com", "instructor")

	var ls []struct {
		ID string `json:"id"`
	}
	decode(t, a.do(http.MethodGet, "/api/lessons", ivan, ""), &ls)
	if len(ls) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(ls))
	}

	expectMessage(t, a.do(http.MethodPut, "/api/lessons/"+ls[0].ID, ivan, `{"status":"done"}`),
		http.StatusBadRequest, "Invalid status")
	w := a.do(http.MethodPut, "/api/lessons/"+ls[0].ID, ivan, `{"time":"11:00"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"time":"11:00"`) {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	w = a.do(http.MethodPost, "/api/lessons/"+ls[1].ID+"/attendance", ivan, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"completed"`) {
		t.Fatalf("attendance: %d %s", w.Code, w.Body.String())
	}
	expectMessage(t, a.do(http.MethodPost, "/api/lessons/missing/attendance", ivan, ""),
		http.StatusNotFound, "Lesson not found")
}

func TestDeleteInstructorCascades(t *testing.T) {
	a := newTestAPI(t, config.Limits{}, "")
	admin := a.login("admin@drivepro.com", "admin")

	var users []struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	decode(t, a.do(http.MethodGet, "/api/users?role=instructor", admin, ""), &users)
	if len(users) != 1 {
		t.Fatalf("expected 1 instructor, got %d", len(users))
	}
	if w := a.do(http.MethodDelete, "/api/users/"+users[0].ID, admin, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete user: %d %s", w.Code, w.Body.String())
	}
	if got := a.do(http.MethodGet, "/api/lessons", admin, "").Body.String(); got != "[]" {
		t.Fatalf("expected no lessons, got %s", got)
	}
	expectMessage(t, a.do(http.MethodDelete, "/api/users/"+users[0].ID, admin, ""), http.StatusNotFound, "User not found")
}

func TestMessages(t *testing.T) {
	a := newTestAPI(t, config.Limits{}, "")
	sarah := a.login("student@drivepro.com", "student")
	ivan := a.login("instructor@drivepro.com", "instructor")
	admin := a.login("admin@drivepro.com", "admin")

	expectMessage(t, a.do(http.MethodPost, "/api/messages", sarah, `{"subject":"hi"}`),
		http.StatusBadRequest, "subject and body are required")
	if w := a.do(http.MethodPost, "/api/messages", sarah, `{"subject":"Reschedule","body":"Can we move Friday?"}`); w.Code != http.StatusCreated {
		t.Fatalf("post: %d %s", w.Code, w.Body.String())
	}
	if w := a.do(http.MethodPost, "/api/notifications", admin, `{"toRole":"all","subject":"Closed","body":"Holiday"}`); w.Code != http.StatusCreated {
		t.Fatalf("post all: %d %s", w.Code, w.Body.String())
	}

	count := func(tok string) int {
		var ns []map[string]any
		decode(t, a.do(http.MethodGet, "/api/notifications", tok, ""), &ns)
		return len(ns)
	}
	if n := count(admin); n != 2 {
		t.Fatalf("admin should see 2, got %d", n)
	}
	if n := count(ivan); n != 1 {
		t.Fatalf("instructor should see 1, got %d", n)
	}
}

func TestLimits(t *testing.T) {
	a := newTestAPI(t, config.Limits{MaxBodyBytes: 16}, "")
	w := a.do(http.MethodPost, "/api/login", "", `{"email":"`+strings.Repeat("a", 64)+`"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}

	a = newTestAPI(t, config.Limits{RPS: 0.001, Burst: 1}, "")
	if w := a.do(http.MethodGet, "/health", "", ""); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/health", "", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>DrivePro</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := newTestAPI(t, config.Limits{}, dir)

	w := a.do(http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "DrivePro") {
		t.Fatalf("index: %d %s", w.Code, w.Body.String())
	}
	expectMessage(t, a.do(http.MethodGet, "/../../etc/passwd", "", ""), http.StatusNotFound, "Route not found")
	expectMessage(t, a.do(http.MethodGet, "/api/missing", "", ""), http.StatusNotFound, "Route not found")
}
