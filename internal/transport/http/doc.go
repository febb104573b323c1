// Package http provides the HTTP transport layer for the MAWB audit API.
//
// It wires chi routing and the shared middleware chain to handlers that
// accept workbook uploads, run the audit pipeline and stream the resulting
// Excel report or JSON body back to the caller.
package http
