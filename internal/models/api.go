// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package models

// APIError is the error body returned by every failing endpoint. Code is a
// stable machine-readable identifier; Message is the templated human
// message. Nothing else leaks to clients.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
