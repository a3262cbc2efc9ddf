// Package http implements the file API: request validation, dispatch of the
// four verbs to the filesystem executor, and mapping of failures to status
// codes and messages.
//
// Every verb addresses an object by URL path under the served root:
//
//	GET    /path   metadata plus file data or directory children
//	POST   /path   {"data": "..."} appended to an existing file
//	PUT    /path   {"directory"?, "mode"?, "data"?} creates or replaces
//	DELETE /path   removes a file or an empty directory
//
// Responses are JSON. Failures carry only {"message": "..."}.
package http
