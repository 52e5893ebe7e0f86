// Package errs holds the error shapes the booking API sends back to widget
// and dashboard clients, plus constructors for the statuses handlers use.
package errs
