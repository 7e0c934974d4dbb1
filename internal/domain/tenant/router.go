// Package tenant maps public unit identifiers to data partitions and binds
// the resolved partition to a request or envelope context.
package tenant

import (
	"regexp"
	"strings"
)

const (
	// DefaultPartition receives every unit identifier that cannot be resolved.
	DefaultPartition = "und_atd1"
	// DefaultUnit is the public name of DefaultPartition.
	DefaultUnit = "UPA1"

	partitionPrefix = "und_atd"
	unitPrefix      = "UPA"
)

var (
	unitPattern      = regexp.MustCompile(`(?i)^UPA\s*(\d+)$`)
	partitionPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	partitionDigits  = regexp.MustCompile(`^und_atd(\d+)$`)
)

// Router resolves unit identifiers. The zero value is ready to use.
type Router struct{}

func NewRouter() *Router {
	return &Router{}
}

// ResolvePartition maps "UPA<n>" (any case, optional blank before the digits)
// to "und_atd<n>" and passes through identifiers that already name a
// partition. Anything else resolves to DefaultPartition.
func (r *Router) ResolvePartition(unit string) string {
	v := strings.TrimSpace(unit)
	if v == "" {
		return DefaultPartition
	}
	if m := unitPattern.FindStringSubmatch(v); m != nil {
		return partitionPrefix + m[1]
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, partitionPrefix) && IsValidPartition(lower) {
		return lower
	}
	return DefaultPartition
}

// IsValidPartition reports whether p is safe to use as a schema name.
func IsValidPartition(p string) bool {
	return partitionPattern.MatchString(p)
}

// CanonicalUnit is the unit name used in queue and metrics keys, so that the
// consumer and the read API address the same entries: blank becomes UPA1,
// "upa 7" and "und_atd7" become UPA7, anything else is upper-cased.
func CanonicalUnit(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return DefaultUnit
	}
	if m := unitPattern.FindStringSubmatch(v); m != nil {
		return unitPrefix + m[1]
	}
	upper := strings.ToUpper(v)
	if m := partitionDigits.FindStringSubmatch(strings.ToLower(v)); m != nil {
		return unitPrefix + m[1]
	}
	return upper
}

// UnitForPartition is the public unit of a partition, or DefaultUnit when the
// partition does not follow the und_atd<n> naming.
func UnitForPartition(partition string) string {
	if m := partitionDigits.FindStringSubmatch(strings.ToLower(strings.TrimSpace(partition))); m != nil {
		return unitPrefix + m[1]
	}
	return DefaultUnit
}
