// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import "errors"

var (
	// ErrNonConforming marks generative output that violates the
	// six-section contract. The caller falls back to the extractive
	// summary.
	ErrNonConforming = errors.New("summary does not conform to the section contract")

	// ErrNoChunks means there is no evidence text to summarize.
	ErrNoChunks = errors.New("no evidence chunks to summarize")
)
