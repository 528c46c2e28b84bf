// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user-provided documents against embedded CUE schemas.
//
// The workspace loader and the configuration loader share one flow:
//
//  1. Compile the embedded schema
//  2. Compile the user document and unify it with the schema definition
//  3. Validate and decode into a Go value
//
// JSON is a subset of CUE, so documents read from other formats can be
// validated by the same schema once converted to JSON.
//
// # Usage
//
//	//go:embed workspace_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[File](
//	    schemaBytes,
//	    data,
//	    "#Workspace",
//	    cueutil.WithFilename("clonescan.cue"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes the offending field path
//	}
//	return result.Value, nil
package cueutil
