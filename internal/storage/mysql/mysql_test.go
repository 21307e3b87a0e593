package mysql

import (
	"os"
	"testing"

	"salary-import/internal/config"
)

var testStorage *Storage

func TestMain(m *testing.M) {
	// Integration tests need a real server: MYSQL_TEST_DSN="root:@tcp(localhost:3306)/test_payroll?parseTime=true"
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn != "" {
		var err error
		testStorage, err = New(config.Config{Journal: config.Journal{Driver: "mysql", DSN: dsn}})
		if err != nil {
			panic(err)
		}
	}

	code := m.Run()

	if testStorage != nil {
		testStorage.Close()
	}

	os.Exit(code)
}

func requireDB(t *testing.T) *Storage {
	t.Helper()
	if testStorage == nil {
		t.Skip("MYSQL_TEST_DSN is not set")
	}
	return testStorage
}
