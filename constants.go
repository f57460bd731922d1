// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package duoscience

// DuoScience API endpoint paths.
//
// Each task endpoint accepts a POST with TaskParams and answers with
// 202 Accepted and a TaskAck body. Event streams for started tasks are
// served under StreamPathPrefix followed by the task id.
const (
	// EndpointChat starts a conversational task.
	EndpointChat = "/chat/"

	// EndpointResearch starts a deep-research task.
	EndpointResearch = "/research/"

	// EndpointHypotheses starts a hypothesis-generation task.
	EndpointHypotheses = "/hypotheses/"

	// StreamPathPrefix is the path prefix of the per-task SSE stream.
	//
	// Example usage: http://api.example.com/stream/{task_id}
	StreamPathPrefix = "/stream/"
)

// DefaultBaseURL is the base URL the client falls back to when none is
// configured. It matches the development server default of the API.
const DefaultBaseURL = "http://127.0.0.1:8000"

// MaxFilesPerRequest is the maximum number of file attachments the API
// accepts on a single task request.
const MaxFilesPerRequest = 10
