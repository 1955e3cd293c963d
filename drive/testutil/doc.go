// Package testutil provides an in-process fake of the Google OAuth token
// endpoint and the Drive v3 files API for tests.
//
//	fake := testutil.NewServer()
//	defer fake.Close()
//	fake.AddObject(testutil.Object{File: drive.File{ID: "f1", Name: "a.txt", MimeType: "text/plain"}, Parent: "root", Content: []byte("hi")})
//	cfg := fake.Config()
package testutil
