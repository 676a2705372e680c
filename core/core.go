// Package core has the reconciliation and differential-period engine:
// issue persistence with an audit trail, period resolution, variation
// computation and measure purging.
package core

import "errors"

// Errors returned by identity resolution.
var (
	ErrRuleNotFound      = errors.New("rule not found")
	ErrComponentNotFound = errors.New("component not found")
)
