// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

// Package duoscience provides Go types for the DuoScience task API.
//
// The API is task-centric: a POST to a task endpoint (chat, research,
// hypotheses) is acknowledged with 202 Accepted and a task id, and the
// task's progress is then consumed as a Server-Sent Events stream until a
// terminal status event arrives. This package holds the wire types shared
// by the client and the supporting packages; the HTTP client itself lives
// in the client package.
package duoscience

// Version is the current version of the DuoScience SDK.
const Version = "0.1.0"
