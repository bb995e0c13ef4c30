// Package testdb provisions isolated SurrealDB environments for tests
// that need a real database.
//
// Each call to New connects to the SurrealDB instance named by the
// TEST_DB_* environment variables (localhost:8000 with root/root by
// default), carves out a unique namespace, and applies the schema
// migrations from the repository's migrations/ directory. Tests run
// real queries, so constraints and record links behave exactly as in
// production.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    users := tdb.MustQuery("SELECT * FROM user", nil)
//	}
//
// When migration overhead matters, NewShared reuses one namespace
// across subtests and SetupSubtest wipes table data between them:
//
//	shared := testdb.NewShared(t)
//	t.Run("create", func(t *testing.T) {
//	    tdb := shared.SetupSubtest(t)
//	    ...
//	})
//
// Ctx returns a context with a 10 second timeout for ad-hoc queries.
package testdb
