package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdcshop/backend/auth"
	"rdcshop/backend/config"
	"rdcshop/backend/kv"
	"rdcshop/backend/services"
	"rdcshop/backend/store/demostore"
)

type envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
	Total   int64             `json:"total"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   "testsecret",
		BackendMode: config.ModeDemo,
		TaxRate:     0.05,
	}
	logger := log.New(io.Discard, "", 0)
	mem := kv.NewMemory()
	st := demostore.New(mem)

	app := fiber.New()
	SetupRoutes(app, &Deps{
		Cfg:         cfg,
		Logger:      logger,
		Services:    services.New(st, services.Options{TaxRate: cfg.TaxRate, Demo: true, Logger: logger}),
		Provider:    auth.NewDemoProvider(mem, st),
		Revocations: auth.NewRevocations(mem),
		Users:       st,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, env, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func seed(t *testing.T, app *fiber.App) {
	t.Helper()
	token := login(t, app, "admin@edulms.com", "admin123456")
	status, env := call(t, app, http.MethodPost, "/api/seed", nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, config.ModeDemo, body["mode"])
}

func TestDemoLoginAndProfile(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, http.MethodGet, "/api/auth/demo/credentials", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var creds []auth.DemoCredential
	decode(t, env, &creds)
	assert.Len(t, creds, 4)

	token := login(t, app, "demo@edulms.com", "demo123456")
	status, env = call(t, app, http.MethodGet, "/api/user/profile", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	var profile struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decode(t, env, &profile)
	assert.Equal(t, "demo@edulms.com", profile.Email)
	assert.Equal(t, "student", profile.Role)

	status, env = call(t, app, http.MethodPut, "/api/user/profile", map[string]interface{}{
		"name":        "Renamed",
		"preferences": map[string]interface{}{"language": "en", "notifications": false, "theme": "dark"},
	}, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	_, env = call(t, app, http.MethodGet, "/api/user/profile", nil, token)
	var renamed struct {
		Name        string `json:"name"`
		Preferences struct {
			Theme string `json:"theme"`
		} `json:"preferences"`
	}
	decode(t, env, &renamed)
	assert.Equal(t, "Renamed", renamed.Name)
	assert.Equal(t, "dark", renamed.Preferences.Theme)

	status, _ = call(t, app, http.MethodGet, "/api/user/profile", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": "demo@edulms.com", "password": "nope"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", env.Message)

	status, env = call(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": "demo@edulms.com"}, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Details, "password")

	// Two failures so far; three more reach the limit.
	for i := 0; i < LoginMaxFailures-2; i++ {
		call(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": "demo@edulms.com", "password": "nope"}, "")
	}
	status, env = call(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": "demo@edulms.com", "password": "demo123456"}, "")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, auth.ErrTooManyAttempts.Error(), env.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "teacher@edulms.com", "teacher123456")

	status, _ := call(t, app, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, fiber.StatusOK, status)

	status, env := call(t, app, http.MethodGet, "/api/user/profile", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Session has ended, please sign in again", env.Message)
}

func TestRoleChecks(t *testing.T) {
	app := newTestApp(t)
	student := login(t, app, "demo@edulms.com", "demo123456")

	status, _ := call(t, app, http.MethodPost, "/api/seed", nil, student)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = call(t, app, http.MethodPost, "/api/admin/courses", map[string]string{"title": "X"}, student)
	assert.Equal(t, fiber.StatusForbidden, status)

	teacher := login(t, app, "teacher@edulms.com", "teacher123456")
	status, env := call(t, app, http.MethodPost, "/api/admin/courses", map[string]interface{}{"title": "Organic Chemistry", "price": 1200, "status": "published"}, teacher)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var course struct {
		ID         string `json:"id"`
		Instructor struct {
			ID string `json:"id"`
		} `json:"instructor"`
	}
	decode(t, env, &course)
	assert.Equal(t, "demo-teacher-001", course.Instructor.ID)

	status, _ = call(t, app, http.MethodGet, "/api/courses/"+course.ID, nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, env = call(t, app, http.MethodGet, "/api/courses/missing", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Course not found", env.Message)
}

func TestCatalogue(t *testing.T) {
	app := newTestApp(t)
	seed(t, app)

	status, env := call(t, app, http.MethodGet, "/api/courses", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(3), env.Total)

	_, env = call(t, app, http.MethodGet, "/api/courses?free=true", nil, "")
	assert.Equal(t, int64(1), env.Total)

	status, _ = call(t, app, http.MethodGet, "/api/courses?free=maybe", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	_, env = call(t, app, http.MethodGet, "/api/courses?limit=2&page=2", nil, "")
	var page []map[string]interface{}
	decode(t, env, &page)
	assert.Len(t, page, 1)

	status, env = call(t, app, http.MethodGet, "/api/teachers", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var teachers []map[string]interface{}
	decode(t, env, &teachers)
	assert.Len(t, teachers, 2)

	status, env = call(t, app, http.MethodGet, "/api/shop/fatima-khan", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var shop services.Shop
	decode(t, env, &shop)
	assert.Equal(t, "Fatima Khan", shop.Teacher.Name)
	assert.Len(t, shop.Products, 2)
}

func TestCheckout(t *testing.T) {
	app := newTestApp(t)
	seed(t, app)
	student := login(t, app, "demo@edulms.com", "demo123456")

	_, env := call(t, app, http.MethodGet, "/api/courses?category=academic", nil, "")
	var courses []struct {
		ID string `json:"id"`
	}
	decode(t, env, &courses)
	require.Len(t, courses, 1)
	courseID := courses[0].ID

	items := []map[string]interface{}{{"courseId": courseID, "price": 2500, "quantity": 1}}
	status, env := call(t, app, http.MethodPost, "/api/coupons/validate", map[string]interface{}{"code": "NEWUSER50", "items": items}, "")
	require.Equal(t, fiber.StatusOK, status)
	var check services.CouponCheck
	decode(t, env, &check)
	assert.True(t, check.Valid)
	assert.Equal(t, 1250.0, check.Discount)

	// Paid courses are only reachable through an order.
	status, env = call(t, app, http.MethodPost, "/api/courses/"+courseID+"/enroll", nil, student)
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, services.ErrPaymentRequired.Error(), env.Message)

	status, _ = call(t, app, http.MethodPost, "/api/orders", map[string]interface{}{"items": []interface{}{}}, student)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, env = call(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"items":         []map[string]interface{}{{"courseId": courseID}},
		"couponCode":    "NEWUSER50",
		"paymentMethod": "bkash",
	}, student)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var created struct {
		Order struct {
			ID    string  `json:"id"`
			Total float64 `json:"total"`
		} `json:"order"`
		CouponMessage string `json:"couponMessage"`
	}
	decode(t, env, &created)
	assert.Equal(t, 1312.5, created.Order.Total)

	other := login(t, app, "affiliate@edulms.com", "affiliate123456")
	status, _ = call(t, app, http.MethodGet, "/api/orders/"+created.Order.ID, nil, other)
	assert.Equal(t, fiber.StatusForbidden, status)

	// Only an admin records payments.
	status, _ = call(t, app, http.MethodPut, "/api/orders/"+created.Order.ID+"/payment", map[string]string{"paymentStatus": "completed"}, student)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, env = call(t, app, http.MethodGet, "/api/dashboard", nil, student)
	require.Equal(t, fiber.StatusOK, status)
	var before services.Dashboard
	decode(t, env, &before)
	require.NotNil(t, before.Student)
	assert.Empty(t, before.Student.Enrolled)

	admin := login(t, app, "admin@edulms.com", "admin123456")
	status, _ = call(t, app, http.MethodPut, "/api/orders/"+created.Order.ID+"/payment", map[string]string{"paymentStatus": "paid"}, admin)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, env = call(t, app, http.MethodPut, "/api/orders/"+created.Order.ID+"/payment", map[string]string{"paymentStatus": "completed"}, admin)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var paid struct {
		OrderStatus string `json:"orderStatus"`
	}
	decode(t, env, &paid)
	assert.Equal(t, "confirmed", paid.OrderStatus)

	status, env = call(t, app, http.MethodGet, "/api/dashboard", nil, student)
	require.Equal(t, fiber.StatusOK, status)
	var dash services.Dashboard
	decode(t, env, &dash)
	require.NotNil(t, dash.Student)
	assert.Len(t, dash.Student.Enrolled, 1)

	status, env = call(t, app, http.MethodGet, "/api/notifications", nil, student)
	require.Equal(t, fiber.StatusOK, status)
	var notes []struct {
		ID string `json:"id"`
	}
	decode(t, env, &notes)
	require.Len(t, notes, 1)
	status, _ = call(t, app, http.MethodPut, "/api/notifications/"+notes[0].ID+"/read", nil, student)
	assert.Equal(t, fiber.StatusNoContent, status)

	// Enrolling after purchase is a no-op.
	status, env = call(t, app, http.MethodPost, "/api/courses/"+courseID+"/enroll", nil, student)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Already enrolled", env.Message)
}

func TestTeacherRegistration(t *testing.T) {
	app := newTestApp(t)
	body := map[string]interface{}{
		"name":              "Abhi Dutta Tushar",
		"email":             "abhi@example.com",
		"specialization":    []string{"Chemistry"},
		"experience":        6,
		"amazonAffiliateId": "abhi-20",
	}

	status, env := call(t, app, http.MethodPost, "/api/teachers", body, "")
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var created struct {
		TeacherID string `json:"teacherId"`
		Slug      string `json:"slug"`
		ShopURL   string `json:"shopUrl"`
	}
	decode(t, env, &created)
	assert.Equal(t, "abhi-dutta-tushar", created.Slug)
	assert.Equal(t, "/shop/abhi-dutta-tushar", created.ShopURL)

	status, env = call(t, app, http.MethodPost, "/api/teachers", body, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, services.ErrDuplicateTeacher.Error(), env.Message)

	status, env = call(t, app, http.MethodPost, "/api/teachers", map[string]interface{}{"name": "No Email"}, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Details, "email")

	status, env = call(t, app, http.MethodGet, "/api/teachers/"+created.TeacherID+"/products", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var products []map[string]interface{}
	decode(t, env, &products)
	assert.Len(t, products, 2)

	// The demo teacher account cannot stock someone else's shop.
	teacher := login(t, app, "teacher@edulms.com", "teacher123456")
	status, _ = call(t, app, http.MethodPost, "/api/teachers/"+created.TeacherID+"/products", map[string]interface{}{"asin": "B000000001", "title": "Kit"}, teacher)
	assert.Equal(t, fiber.StatusForbidden, status)

	admin := login(t, app, "admin@edulms.com", "admin123456")
	status, env = call(t, app, http.MethodPost, "/api/teachers/"+created.TeacherID+"/products", map[string]interface{}{"asin": "B000000001", "title": "Kit"}, admin)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
}

func TestTeacherRegistrationLinksAccount(t *testing.T) {
	app := newTestApp(t)
	teacher := login(t, app, "teacher@edulms.com", "teacher123456")

	status, env := call(t, app, http.MethodPost, "/api/teachers", map[string]interface{}{
		"name":  "Karim Uddin",
		"email": "teacher@edulms.com",
	}, teacher)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var created struct {
		TeacherID string `json:"teacherId"`
		Slug      string `json:"slug"`
	}
	decode(t, env, &created)
	assert.Equal(t, "demo-teacher-001", created.TeacherID)

	status, env = call(t, app, http.MethodPost, "/api/teachers", map[string]interface{}{
		"name":  "Karim Uddin Again",
		"email": "teacher@edulms.com",
	}, teacher)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, services.ErrTeacherProfileExists.Error(), env.Message)

	status, env = call(t, app, http.MethodPost, "/api/teachers/"+created.TeacherID+"/products", map[string]interface{}{"asin": "B000000001", "title": "Kit"}, teacher)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	status, env = call(t, app, http.MethodPost, "/api/admin/courses", map[string]interface{}{"title": "Organic Chemistry", "price": 1200, "status": "published"}, teacher)
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	status, env = call(t, app, http.MethodGet, "/api/shop/"+created.Slug, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var shop services.Shop
	decode(t, env, &shop)
	require.Len(t, shop.Courses, 1)
	assert.Equal(t, "Organic Chemistry", shop.Courses[0].Title)
	assert.Len(t, shop.Products, 1)

	status, _ = call(t, app, http.MethodPost, "/api/teachers", map[string]interface{}{"name": "Nobody", "email": "n@example.com"}, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestContentRoutes(t *testing.T) {
	app := newTestApp(t)
	teacher := login(t, app, "teacher@edulms.com", "teacher123456")

	status, env := call(t, app, http.MethodPost, "/api/blogs", map[string]interface{}{"title": "Study Tips for HSC", "isPublished": true}, teacher)
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	status, env = call(t, app, http.MethodGet, "/api/blogs/study-tips-for-hsc", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var blog struct {
		Author struct {
			ID string `json:"id"`
		} `json:"author"`
	}
	decode(t, env, &blog)
	assert.Equal(t, "demo-teacher-001", blog.Author.ID)

	status, _ = call(t, app, http.MethodGet, "/api/blogs/nothing-here", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, http.MethodGet, "/api/events", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/api/live-classes", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
}
