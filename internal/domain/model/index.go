// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

// IndexInfo describes one index of the search cluster.
type IndexInfo struct {
	Name   string `json:"name"`
	Health string `json:"health"`
}
