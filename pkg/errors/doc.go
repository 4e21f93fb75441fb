/*
Package errors provides annotations for errors returned by request handlers.

An error annotated with an HTTP status code is a client error the handler
answers itself. Errors without annotation are faults that are reported to
the client as internal server errors.
*/
package errors
