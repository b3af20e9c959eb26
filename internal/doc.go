// Package internal holds the HTTP application core shared by the root drive
// package: the App type, the Context handlers receive, chi-backed routing,
// HTTPError rendering and the graceful server runtime.
//
// Handlers return errors instead of writing failure responses themselves.
// The App's ErrorHandler turns them into JSON bodies; anything that is not
// an *HTTPError becomes a 500 and is logged.
//
// Workers registered with WithWorkers are started before the listener opens
// and stopped after in-flight requests drain, followed by shutdown hooks in
// registration order.
package internal
