// Package scanner detects injection-style and markup-style attacks in
// untrusted strings. Both scanners are pure functions over the immutable
// signature tables in pkg/threat: they never fail, never mutate shared
// state and may run concurrently from any number of goroutines.
package scanner

import (
	"github.com/sirupsen/logrus"

	"github.com/SafeField/FieldGate/pkg/threat"
)

// QueryClause identifies the SQL clause a value will occupy downstream.
type QueryClause string

const (
	ClauseNone    QueryClause = ""
	ClauseWhere   QueryClause = "whereClause"
	ClauseOrderBy QueryClause = "orderBy"
	ClauseLimit   QueryClause = "limit"
)

// Context carries the downstream syntactic position of the scanned value.
type Context struct {
	QueryClause QueryClause
}

// Scanner runs the signature sets against input values and scores the
// result. The zero value is not usable; construct with New.
type Scanner struct {
	logger *logrus.Logger
	params threat.Params
}

func New(logger *logrus.Logger, params threat.Params) *Scanner {
	return &Scanner{logger: logger, params: params}
}

// NewDefault returns a scanner with stock scoring constants.
func NewDefault(logger *logrus.Logger) *Scanner {
	return New(logger, threat.DefaultParams())
}

func (s *Scanner) logThreats(fieldLabel, family string, threats []threat.Detected) {
	if len(threats) == 0 || s.logger == nil {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"family":   family,
		"field":    fieldLabel,
		"threats":  len(threats),
		"severity": string(threat.MaxSeverity(threats)),
	}).Warn("threat detected")
}
