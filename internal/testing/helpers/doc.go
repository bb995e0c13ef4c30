// Package helpers carries the shared utilities behind the API tests:
// a fluent request builder, JWT minting against in-memory keys, and
// response and database assertions.
//
// Requests are built fluently and authenticated per user:
//
//	jwtHelper := helpers.NewJWTHelper(t)
//	req := helpers.NewRequest(t, http.MethodPost, "/v1/events").
//	    WithBody(payload).
//	    WithAuth(jwtHelper, editor).
//	    Build()
//
// Responses unwrap through the standard {"data": ...} envelope:
//
//	helpers.AssertStatus(t, rr, http.StatusCreated)
//	data := helpers.GetDataFromResponse(t, rr)
//
// Database state is checked directly against SurrealDB:
//
//	helpers.AssertRecordExists(t, tdb.DB, "event", eventID)
//	helpers.AssertRecordNotExists(t, tdb.DB, "rsvp", rsvpID)
//
// StringPtr, IntPtr, BoolPtr and TimePtr produce pointers for the
// optional fields on request payloads and fixtures.
package helpers
