// Package domain provides the data model shared by the slice engine and its collaborators.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case; they are the on-disk artifact format.
package domain
