package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core/care"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/learning"
	"github.com/trezcool/malezi/core/messaging"
	"github.com/trezcool/malezi/core/user"
	emailsvc "github.com/trezcool/malezi/services/email"
	dummydb "github.com/trezcool/malezi/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// testLogger keeps server errors visible in test output.
type testLogger struct {
	t *testing.T
}

func (l testLogger) Enable(bool)                           {}
func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

type testEnv struct {
	server Server
	db     *dummydb.DB

	userRepo      user.Repository
	childRepo     child.Repository
	careRepo      care.Repository
	learningRepo  learning.Repository
	messagingRepo messaging.Repository
}

func setup(t *testing.T) *testEnv {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	env := &testEnv{
		db:            db,
		userRepo:      dummydb.NewUserRepository(db),
		childRepo:     dummydb.NewChildRepository(db),
		careRepo:      dummydb.NewCareRepository(db),
		learningRepo:  dummydb.NewLearningRepository(db),
		messagingRepo: dummydb.NewMessagingRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock()
	env.server = NewServer(ServerDeps{
		Address:        ":0",
		DisableReqLogs: true,
		Logger:         testLogger{t: t},
		UserSvc:        user.NewService(env.userRepo, mailSvc),
		ChildSvc:       child.NewService(env.childRepo),
		CareSvc:        care.NewService(env.careRepo),
		LearningSvc:    learning.NewService(env.learningRepo, env.childRepo),
		MessagingSvc:   messaging.NewService(env.messagingRepo),
	})
	return env
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

// Fixtures. Repos are hit directly so no mails fire.

func createUser(t *testing.T, repo user.Repository, name, uname, email, pwd, role string, isActive bool) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func createChild(t *testing.T, repo child.Repository, firstName, parentID, teacherID string) child.Child {
	now := time.Now().UTC()
	c := child.Child{
		ID:          uuid.New().String(),
		FirstName:   firstName,
		LastName:    "Doe",
		DateOfBirth: now.AddDate(-2, 0, 0),
		Gender:      child.GenderFemale,
		ParentID:    parentID,
		TeacherID:   null.NewString(teacherID, teacherID != ""),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c, err := repo.CreateChild(context.Background(), c)
	if err != nil {
		t.Fatalf("createChild() failed: %v", err)
	}
	return c
}

func createAssessment(t *testing.T, repo care.Repository, childID, assessorID string) care.Assessment {
	now := time.Now().UTC()
	asmt := care.Assessment{
		ID:         uuid.New().String(),
		ChildID:    childID,
		AssessorID: assessorID,
		Type:       care.AssessmentMotor,
		Date:       now,
		MotorScore: null.IntFrom(3),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	asmt.ComputeOverallScore()
	if err := repo.CreateAssessment(context.Background(), asmt); err != nil {
		t.Fatalf("createAssessment() failed: %v", err)
	}
	return asmt
}

func createActivity(t *testing.T, repo learning.Repository, title, createdBy string) learning.Activity {
	now := time.Now().UTC()
	act := learning.Activity{
		ID:                uuid.New().String(),
		Title:             title,
		Description:       "A test activity",
		Type:              learning.ActivityReading,
		DifficultyLevel:   2,
		Instructions:      "Do the thing",
		EstimatedDuration: 15,
		AgeRangeMin:       12,
		AgeRangeMax:       48,
		CreatedBy:         createdBy,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := repo.CreateActivity(context.Background(), act); err != nil {
		t.Fatalf("createActivity() failed: %v", err)
	}
	return act
}

func createAssignment(t *testing.T, repo learning.Repository, childID, activityID, assignedBy, status string) learning.Assignment {
	now := time.Now().UTC()
	asg := learning.Assignment{
		ID:           uuid.New().String(),
		ChildID:      childID,
		ActivityID:   activityID,
		AssignedBy:   assignedBy,
		AssignedDate: now,
		Status:       status,
	}
	if err := repo.CreateAssignment(context.Background(), asg); err != nil {
		t.Fatalf("createAssignment() failed: %v", err)
	}
	return asg
}

func createMessage(t *testing.T, repo messaging.Repository, senderID, recipientID, subject string) messaging.Message {
	now := time.Now().UTC()
	m := messaging.Message{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     subject,
		Content:     "hello",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.CreateMessage(context.Background(), m); err != nil {
		t.Fatalf("createMessage() failed: %v", err)
	}
	return m
}

func createNotification(t *testing.T, repo messaging.Repository, userID, title string) messaging.Notification {
	n := messaging.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   "heads up",
		Type:      messaging.NotifInfo,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("createNotification() failed: %v", err)
	}
	return n
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if assert.ObjectsAreEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
