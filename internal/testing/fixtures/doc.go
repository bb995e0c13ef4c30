// Package fixtures provides test data factories for the Stitch CMS API.
//
// The fixtures package contains factory functions for creating test data
// with sensible defaults and optional customization.
//
// # Factory Pattern
//
// Create a factory with a database connection:
//
//	f := fixtures.New(testDB)
//
// # Creating Test Data
//
// Factory methods create domain entities:
//
//	user := f.CreateUser(t)                   // Default viewer
//	editor := f.CreateEditor(t)               // Editor role
//	content := f.CreateContent(t, editor)     // Draft article
//	event := f.CreateEvent(t, editor)         // Published event
//	rsvp := f.CreateRSVP(t, event)            // Pending RSVP
//
// # Customization
//
// Use option functions for customization:
//
//	user := f.CreateUser(t, func(o *fixtures.UserOpts) {
//	    o.Email = "custom@example.com"
//	})
//	content := f.CreateContent(t, editor, func(o *fixtures.ContentOpts) {
//	    o.Status = model.ContentStatusPublished
//	})
//
// # Random Data
//
// Unique identifiers are generated automatically:
//
//	user1 := f.CreateUser(t) // user_abc123
//	user2 := f.CreateUser(t) // user_def456
//
// # Cleanup
//
// Test data is cleaned up when the test database is closed.
package fixtures
