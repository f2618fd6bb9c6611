package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"plt.tracker/internal/api/handler"
	"plt.tracker/internal/core"
	"plt.tracker/internal/ports/repository"
)

type testApp struct {
	router http.Handler
	svc    *core.ShiftService
	now    time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()
	repo, err := repository.NewXLSXRepository(
		filepath.Join(dir, "Vas_in_progress.xlsx"),
		filepath.Join(dir, "Vas_Done.xlsx"),
	)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)

	app := &testApp{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return app.now }

	app.svc = core.NewShiftService(repo, nil, core.Options{Location: time.UTC, RejectDuplicatePallets: true})
	gate := handler.NewSessionGate(handler.GateConfig{
		Secret:       []byte("test-secret"),
		Username:     "admin",
		PasswordHash: hash,
		IdleTimeout:  30 * time.Minute,
		Now:          clock,
	})
	app.router = NewRouter(Dependencies{
		Service:     app.svc,
		Gate:        gate,
		Workers:     []string{"Ali", "Sara"},
		ReportTitle: "VAS Completed Stock Report",
		OpenFile:    "Vas_in_progress.xlsx",
		ClosedFile:  "Vas_Done.xlsx",
		Clock:       clock,
	})
	return app
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (a *testApp) post(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookies...)
}

func (a *testApp) login(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := a.post("/admin", url.Values{"username": {"admin"}, "password": {"1234"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func checkIn(name, pallet string) url.Values {
	return url.Values{"name": {name}, "status": {"In"}, "shift": {"Morning"}, "plt_id_in": {pallet}}
}

func checkOut(name, pallet string) url.Values {
	return url.Values{"name": {name}, "status": {"Out"}, "plt_id_out": {pallet}}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rec := app.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestForm_ListsWorkersAndActivePallets(t *testing.T) {
	app := newTestApp(t)
	_, err := app.svc.Open(context.Background(), "Ali", "Morning", "PLT-42", app.now)
	require.NoError(t, err)

	rec := app.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Sara">Sara</option>`)
	assert.Contains(t, body, `<option value="PLT-42">PLT-42</option>`)
}

func TestSubmit_InThenOut(t *testing.T) {
	app := newTestApp(t)

	rec := app.post("/", checkIn("Ali", "PLT-1"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	app.now = app.now.Add(90 * time.Minute)
	rec = app.post("/", checkOut("Ali", "PLT-1"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	open, err := app.svc.ListOpen(context.Background())
	require.NoError(t, err)
	assert.Empty(t, open)

	closed, err := app.svc.ListClosed(context.Background())
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "01:30:00", closed[0].TotalDuration)
	assert.Equal(t, "10:30:00", closed[0].CheckOutTime)
}

func TestSubmit_OutAlerts(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusSeeOther, app.post("/", checkIn("Ali", "PLT-1")).Code)

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name:    "unknown pallet",
			form:    checkOut("Ali", "PLT-404"),
			message: "Error: Selected PLT ID not found in In-Progress!",
		},
		{
			name:    "other worker",
			form:    checkOut("Sara", "PLT-1"),
			message: "Error: Only Ali can mark this PLT ID as Out!",
		},
		{
			name:    "duplicate check-in",
			form:    checkIn("Sara", "PLT-1"),
			message: "Error: PLT ID PLT-1 is already In!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.post("/", tt.form)
			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "alert(")
			assert.Contains(t, body, tt.message)
			assert.Contains(t, body, "window.location.href='/'")
		})
	}

	open, err := app.svc.ListOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Ali", open[0].WorkerName)
}

func TestSubmit_MissingFields(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{name: "no name", form: url.Values{"status": {"In"}, "shift": {"Morning"}, "plt_id_in": {"P"}}},
		{name: "no pallet in", form: url.Values{"name": {"Ali"}, "status": {"In"}, "shift": {"Morning"}}},
		{name: "blank pallet out", form: url.Values{"name": {"Ali"}, "status": {"Out"}, "plt_id_out": {"  "}}},
		{name: "unknown status", form: url.Values{"name": {"Ali"}, "status": {"Sideways"}}},
		{name: "overlong pallet", form: checkIn("Ali", strings.Repeat("P", 40000))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.post("/", tt.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGatedRoutesRedirectWithoutSession(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/dashboard", "/download_styled/done", "/generate_report/pdf"} {
		rec := app.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/admin", rec.Header().Get("Location"), path)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)

	rec := app.post("/admin", url.Values{"username": {"admin"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")
	assert.Empty(t, rec.Result().Cookies())
}

func TestDashboard_ShowsNewestFirst(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusSeeOther, app.post("/", checkIn("Ali", "PLT-OLD")).Code)
	app.now = app.now.Add(time.Hour)
	require.Equal(t, http.StatusSeeOther, app.post("/", checkIn("Sara", "PLT-NEW")).Code)

	rec := app.get("/dashboard", app.login(t)...)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "admin")
	newer := strings.Index(body, "PLT-NEW")
	older := strings.Index(body, "PLT-OLD")
	require.NotEqual(t, -1, newer)
	require.NotEqual(t, -1, older)
	assert.Less(t, newer, older)
}

func TestSession_IdleTimeout(t *testing.T) {
	app := newTestApp(t)
	cookies := app.login(t)

	app.now = app.now.Add(10 * time.Minute)
	rec := app.get("/dashboard", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)

	app.now = app.now.Add(31 * time.Minute)
	rec = app.get("/dashboard", cookies...)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestLogout_ClearsSession(t *testing.T) {
	app := newTestApp(t)
	rec := app.get("/logout", app.login(t)...)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Equal(t, handler.SessionName, cleared[0].Name)
	assert.Less(t, cleared[0].MaxAge, 0)

	rec = app.get("/dashboard", cleared...)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestDownloadStyled(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusSeeOther, app.post("/", checkIn("Ali", "PLT-1")).Code)
	cookies := app.login(t)

	for _, name := range []string{"in_progress", "Vas_in_progress.xlsx"} {
		rec := app.get("/download_styled/"+name, cookies...)
		require.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "Styled_Vas_in_progress.xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		rows, err := f.GetRows(f.GetSheetName(0))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"Name", "Shift", "PLT ID", "Status", "Date", "In Time"}, rows[0])
		assert.Equal(t, "PLT-1", rows[1][2])
		require.NoError(t, f.Close())
	}

	rec := app.get("/download_styled/done", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Styled_Vas_Done.xlsx")

	rec = app.get("/download_styled/secrets.xlsx", cookies...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeneratePDF(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusSeeOther, app.post("/", checkIn("Ali", "PLT-1")).Code)
	require.Equal(t, http.StatusSeeOther, app.post("/", checkOut("Ali", "PLT-1")).Code)

	rec := app.get("/generate_report/pdf", app.login(t)...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Completed_Report.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}
