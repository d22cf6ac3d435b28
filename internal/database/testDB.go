package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "UniTrack-backend/internal/model"
	"UniTrack-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users & records
var (
	TestAdminUser    m.User
	TestUserStudent1 m.User
	TestUserStudent2 m.User
	TestUserAgent1   m.User

	// Add exported plain password
	TestSeedPassword = "SeedPass123!"

	// Exported seeded records
	TestApplication1 m.Application
	TestApplication2 m.Application
	TestScholarship1 m.Scholarship
	TestScholarship2 m.Scholarship
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	// Seed sample accounts and records
	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample users, applications and scholarships if empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	// Ignore admin user that got create during NewDBInstance
	if userCount > 1 {
		return loadTestData(db)
	}

	userSpecs := []struct {
		name  string
		email string
		role  string
	}{
		{"Alice Nguyen", "student1@example.com", m.RoleStudent},
		{"Bob Somsak", "student2@example.com", m.RoleStudent},
		{"Carol Danvers", "agent1@example.com", m.RoleAgent},
		{"Admin Seed", "admin@example.com", m.RoleAdmin},
	}

	// Pre-hash shared password for all seeded users
	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			Name:     s.name,
			Email:    s.email,
			Role:     s.role,
			Password: hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		switch u.Email {
		case "student1@example.com":
			TestUserStudent1 = u
		case "student2@example.com":
			TestUserStudent2 = u
		case "agent1@example.com":
			TestUserAgent1 = u
		case "admin@example.com":
			TestAdminUser = u
		}
	}

	today := m.DateStamp(time.Now())

	applications := []m.Application{
		{
			University:    "MIT",
			Program:       "Physics",
			Status:        m.StatusPending,
			Progress:      10,
			SubmittedDate: today,
			LastUpdated:   today,
			Timeline: m.Timeline{
				{Date: today, Status: "Application Submitted", Icon: m.IconSubmit},
			},
			StudentID: TestUserStudent1.ID,
		},
		{
			University:    "Oxford",
			Program:       "History",
			Status:        m.StatusUnderReview,
			Progress:      40,
			SubmittedDate: today,
			LastUpdated:   today,
			Timeline: m.Timeline{
				{Date: today, Status: "Application Submitted", Icon: m.IconSubmit},
				{Date: today, Status: "Status updated to Under Review", Icon: m.IconReview},
			},
			StudentID: TestUserStudent2.ID,
		},
	}
	if err := db.Create(&applications).Error; err != nil {
		return err
	}
	TestApplication1 = applications[0]
	TestApplication2 = applications[1]

	scholarships := []m.Scholarship{
		{
			Name:       "STEM Excellence Award",
			University: "MIT",
			Amount:     20000,
			Type:       "Merit-based",
			Deadline:   time.Now().AddDate(0, 3, 0),
			Status:     "Open",
			Requirements: m.ScholarshipRequirements{
				GPA:       "3.5",
				Major:     pq.StringArray{"Physics", "Mathematics"},
				Residency: "Any",
				Level:     "Undergraduate",
			},
			Description: "Awarded to outstanding STEM applicants.",
			Featured:    true,
		},
		{
			Name:       "Humanities Grant",
			University: "Oxford",
			Amount:     8000,
			Type:       "Need-based",
			Deadline:   time.Now().AddDate(0, 2, 0),
			Status:     "Open",
			Requirements: m.ScholarshipRequirements{
				GPA:       "3.0",
				Major:     pq.StringArray{"History", "Literature"},
				Residency: "UK",
				Level:     "Undergraduate",
			},
			Description: "Support for humanities students.",
		},
	}
	if err := db.Create(&scholarships).Error; err != nil {
		return err
	}
	TestScholarship1 = scholarships[0]
	TestScholarship2 = scholarships[1]

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("email IN ?", []string{
		"student1@example.com", "student2@example.com", "agent1@example.com", "admin@example.com",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Email {
		case "student1@example.com":
			TestUserStudent1 = u
		case "student2@example.com":
			TestUserStudent2 = u
		case "agent1@example.com":
			TestUserAgent1 = u
		case "admin@example.com":
			TestAdminUser = u
		}
	}

	var apps []m.Application
	if err := db.Order("created_at ASC").Limit(2).Find(&apps).Error; err == nil {
		if len(apps) > 0 {
			TestApplication1 = apps[0]
		}
		if len(apps) > 1 {
			TestApplication2 = apps[1]
		}
	}

	var schols []m.Scholarship
	if err := db.Order("created_at ASC").Limit(2).Find(&schols).Error; err == nil {
		if len(schols) > 0 {
			TestScholarship1 = schols[0]
		}
		if len(schols) > 1 {
			TestScholarship2 = schols[1]
		}
	}

	return nil
}
