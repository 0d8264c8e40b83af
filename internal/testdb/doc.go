// Package testdb provides utilities for tests that need a real PostgreSQL
// database.
//
// Each test runs in its own transaction, which is rolled back when the test
// completes. Tests can therefore run in parallel against the same tables
// without cleanup:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        taskStore := postgres.NewPostgresTaskStore(tx, nil)
//	        ...
//	    })
//	}
//
// The connection string is read from DATABASE_URL, falling back to
// TASKBOARD_TEST_DB_URL. Tests are skipped when neither is set.
package testdb
