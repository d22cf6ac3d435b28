package application

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"UniTrack-backend/internal/auth"
	"UniTrack-backend/internal/database"
	"UniTrack-backend/internal/middleware"
	"UniTrack-backend/internal/model"
	"UniTrack-backend/internal/testutil"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var teardown func(context.Context, ...testcontainers.TerminateOption) error
	teardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

// appEngine wires the application routes the same way the server does.
func appEngine() *gin.Engine {
	r := gin.New()
	ctrl := NewApplicationController(testDB)

	route := r.Group("/api/applications", middleware.RequireAuth(testDB))
	route.GET("all", middleware.CheckRole(model.RoleAdmin), ctrl.GetAllApplications)
	route.GET("agent", middleware.CheckRole(model.RoleAgent), ctrl.GetAgentApplications)
	route.GET("", middleware.CheckRole(model.RoleStudent), ctrl.GetMyApplications)
	route.POST("", middleware.CheckRole(model.RoleStudent), ctrl.CreateApplication)
	route.GET(":id", ctrl.GetApplication)
	route.PUT(":id", middleware.CheckRole(model.RoleStudent, model.RoleAdmin), ctrl.UpdateApplication)
	route.DELETE(":id", middleware.CheckRole(model.RoleStudent, model.RoleAdmin), ctrl.DeleteApplication)
	route.POST(":id/note", middleware.CheckRole(model.RoleAgent), ctrl.AddNote)
	return r
}

func loginAs(t *testing.T, email string) string {
	t.Helper()
	token, err := auth.GetAccessToken(t, testDB, email, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func createApplication(t *testing.T, r *gin.Engine, token, university, program string) map[string]interface{} {
	t.Helper()
	rec, resp := testutil.MakeJSONRequest(map[string]string{
		"university": university,
		"program":    program,
	}, token, r, "/api/applications", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return resp
}

func timeline(resp map[string]interface{}) []interface{} {
	events, _ := resp["timeline"].([]interface{})
	return events
}

func TestApplicationLifecycle(t *testing.T) {
	r := appEngine()
	studentToken := loginAs(t, database.TestUserStudent1.Email)
	agentToken := loginAs(t, database.TestUserAgent1.Email)
	today := model.DateStamp(time.Now())

	// Create: fresh application starts Pending with an empty history.
	created := createApplication(t, r, studentToken, "Stanford", "Computer Science")
	assert.Equal(t, "Stanford", created["university"])
	assert.Equal(t, model.StatusPending, created["status"])
	assert.Equal(t, float64(0), created["progress"])
	assert.Equal(t, today, created["submittedDate"])
	assert.Len(t, timeline(created), 0)

	id := created["id"].(string)
	endpoint := "/api/applications/" + id

	// Status change appends exactly one event with a derived icon.
	rec, resp := testutil.MakeJSONRequest(map[string]string{"status": model.StatusAccepted}, studentToken, r, endpoint, http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.StatusAccepted, resp["status"])
	assert.Equal(t, today, resp["lastUpdated"])
	require.Len(t, timeline(resp), 1)
	event := timeline(resp)[0].(map[string]interface{})
	assert.Equal(t, "Status updated to "+model.StatusAccepted, event["status"])
	assert.Equal(t, model.IconReview, event["icon"])
	assert.Equal(t, today, event["date"])

	// A rejection gets the reject icon.
	rec, resp = testutil.MakeJSONRequest(map[string]string{"status": model.StatusRejected}, studentToken, r, endpoint, http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, timeline(resp), 2)
	event = timeline(resp)[1].(map[string]interface{})
	assert.Equal(t, model.IconReject, event["icon"])

	// Agent note lands in both agentNotes and the timeline.
	rec, resp = testutil.MakeJSONRequest(map[string]string{"note": "Missing transcript"}, agentToken, r, endpoint+"/note", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	notes, _ := resp["agentNotes"].([]interface{})
	require.Len(t, notes, 1)
	note := notes[0].(map[string]interface{})
	assert.Equal(t, "Missing transcript", note["note"])
	assert.Equal(t, database.TestUserAgent1.ID.String(), note["agent"])
	require.Len(t, timeline(resp), 3)
	event = timeline(resp)[2].(map[string]interface{})
	assert.Equal(t, "Agent Note Added", event["status"])
	assert.Equal(t, model.IconReview, event["icon"])
	assert.Equal(t, "Missing transcript", event["comment"])

	// Delete, then the record is gone.
	rec, resp = testutil.MakeJSONRequest(nil, studentToken, r, endpoint, http.MethodDelete)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Application deleted successfully", resp["message"])

	rec, _ = testutil.MakeJSONRequest(nil, studentToken, r, endpoint, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateApplicationInvalidStatus(t *testing.T) {
	r := appEngine()
	token := loginAs(t, database.TestUserStudent1.Email)
	created := createApplication(t, r, token, "Berkeley", "Mathematics")
	endpoint := "/api/applications/" + created["id"].(string)

	rec, resp := testutil.MakeJSONRequest(map[string]string{"status": "Approved"}, token, r, endpoint, http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "Invalid status")

	// Nothing was persisted.
	rec, resp = testutil.MakeJSONRequest(nil, token, r, endpoint, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusPending, resp["status"])
	assert.Len(t, timeline(resp), 0)
}

func TestUpdateApplicationProgressOutOfRange(t *testing.T) {
	r := appEngine()
	token := loginAs(t, database.TestUserStudent1.Email)
	created := createApplication(t, r, token, "Caltech", "Physics")
	endpoint := "/api/applications/" + created["id"].(string)

	rec, _ := testutil.MakeJSONRequest(map[string]int{"progress": 150}, token, r, endpoint, http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(map[string]int{"progress": -5}, token, r, endpoint, http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := testutil.MakeJSONRequest(map[string]int{"progress": 60}, token, r, endpoint, http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(60), resp["progress"])
}

func TestTimelineAppendOnly(t *testing.T) {
	r := appEngine()
	token := loginAs(t, database.TestUserStudent1.Email)
	created := createApplication(t, r, token, "Cambridge", "Engineering")
	endpoint := "/api/applications/" + created["id"].(string)

	rec, resp := testutil.MakeJSONRequest(map[string]string{"status": model.StatusUnderReview}, token, r, endpoint, http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, timeline(resp), 1)

	// Caller-supplied entries append after the existing history.
	rec, resp = testutil.MakeJSONRequest(map[string]interface{}{
		"timeline": []model.TimelineEvent{
			{Date: "2026-08-01", Status: "Interview completed", Icon: model.IconCalendar},
		},
	}, token, r, endpoint, http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, timeline(resp), 2)
	first := timeline(resp)[0].(map[string]interface{})
	assert.Equal(t, "Status updated to "+model.StatusUnderReview, first["status"])
	second := timeline(resp)[1].(map[string]interface{})
	assert.Equal(t, "Interview completed", second["status"])

	// Unknown icons are rejected before anything is written.
	rec, resp = testutil.MakeJSONRequest(map[string]interface{}{
		"timeline": []model.TimelineEvent{
			{Date: "2026-08-02", Status: "Something", Icon: "sparkles"},
		},
	}, token, r, endpoint, http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "Invalid timeline icon")
}

func TestStudentCannotTouchOthersApplication(t *testing.T) {
	r := appEngine()
	ownerToken := loginAs(t, database.TestUserStudent1.Email)
	otherToken := loginAs(t, database.TestUserStudent2.Email)
	created := createApplication(t, r, ownerToken, "Princeton", "Economics")
	endpoint := "/api/applications/" + created["id"].(string)

	rec, _ := testutil.MakeJSONRequest(nil, otherToken, r, endpoint, http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(map[string]string{"status": model.StatusAccepted}, otherToken, r, endpoint, http.MethodPut)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, otherToken, r, endpoint, http.MethodDelete)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner still sees the record untouched.
	rec, resp := testutil.MakeJSONRequest(nil, ownerToken, r, endpoint, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusPending, resp["status"])
}

func TestAgentCanReadAndNoteButNotUpdate(t *testing.T) {
	r := appEngine()
	studentToken := loginAs(t, database.TestUserStudent1.Email)
	agentToken := loginAs(t, database.TestUserAgent1.Email)
	created := createApplication(t, r, studentToken, "Yale", "Law")
	endpoint := "/api/applications/" + created["id"].(string)

	rec, _ := testutil.MakeJSONRequest(nil, agentToken, r, endpoint, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(map[string]string{"status": model.StatusAccepted}, agentToken, r, endpoint, http.MethodPut)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, agentToken, r, endpoint, http.MethodDelete)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminUpdatesAnyApplication(t *testing.T) {
	r := appEngine()
	studentToken := loginAs(t, database.TestUserStudent1.Email)
	adminToken := loginAs(t, database.TestAdminUser.Email)
	created := createApplication(t, r, studentToken, "Harvard", "Medicine")
	endpoint := "/api/applications/" + created["id"].(string)

	rec, resp := testutil.MakeJSONRequest(map[string]string{"status": model.StatusInterviewScheduled}, adminToken, r, endpoint, http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.StatusInterviewScheduled, resp["status"])

	// Admin cannot create on a student's behalf through this endpoint.
	rec, _ = testutil.MakeJSONRequest(map[string]string{
		"university": "Anywhere",
		"program":    "Anything",
	}, adminToken, r, "/api/applications", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetMyApplicationsScopedToCaller(t *testing.T) {
	r := appEngine()
	studentToken := loginAs(t, database.TestUserStudent2.Email)
	createApplication(t, r, studentToken, "Oxford", "Philosophy")

	rec, list := testutil.MakeJSONRequestList(studentToken, r, "/api/applications", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, list)
	for _, app := range list {
		assert.Equal(t, database.TestUserStudent2.ID.String(), app["student_id"])
	}
}

func TestApplicationNotFound(t *testing.T) {
	r := appEngine()
	token := loginAs(t, database.TestUserStudent1.Email)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/api/applications/"+uuid.NewString(), http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Application not found", resp["error"])
}
