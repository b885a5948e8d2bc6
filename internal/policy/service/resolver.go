// Package service resolves device capabilities and applies resource-scoped predicates.
package service

import (
	"context"
	"sort"
	"strings"

	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
	policyDomain "github.com/allisson/devicetrust/internal/policy/domain"
)

// ResourcePredicate decides whether a device may act on a specific resource.
type ResourcePredicate interface {
	Allow(ctx context.Context, device *deviceDomain.Device, permission, resource string) bool
}

// ResourcePredicateFunc adapts a function to ResourcePredicate.
type ResourcePredicateFunc func(ctx context.Context, device *deviceDomain.Device, permission, resource string) bool

// Allow calls f.
func (f ResourcePredicateFunc) Allow(
	ctx context.Context,
	device *deviceDomain.Device,
	permission, resource string,
) bool {
	return f(ctx, device, permission, resource)
}

// PropertyScope allows resources of the form "property/<id>[/...]" only when id is
// the device's own property. Every other resource shape is denied.
var PropertyScope = ResourcePredicateFunc(func(
	_ context.Context,
	device *deviceDomain.Device,
	_ string,
	resource string,
) bool {
	rest, ok := strings.CutPrefix(resource, "property/")
	if !ok || device.PropertyID == "" {
		return false
	}
	propertyID, _, _ := strings.Cut(rest, "/")
	return propertyID == device.PropertyID
})

// AllOf allows a resource only when every predicate allows it.
func AllOf(predicates ...ResourcePredicate) ResourcePredicate {
	return ResourcePredicateFunc(func(
		ctx context.Context,
		device *deviceDomain.Device,
		permission, resource string,
	) bool {
		for _, predicate := range predicates {
			if !predicate.Allow(ctx, device, permission, resource) {
				return false
			}
		}
		return true
	})
}

// Resolver answers capability questions from the static capability table.
type Resolver struct {
	capabilities map[deviceDomain.DeviceType]map[string]struct{}
	predicate    ResourcePredicate
}

// NewResolver creates a Resolver. A nil predicate defaults to PropertyScope.
func NewResolver(predicate ResourcePredicate) *Resolver {
	if predicate == nil {
		predicate = PropertyScope
	}

	capabilities := make(map[deviceDomain.DeviceType]map[string]struct{}, len(policyDomain.CapabilityTable))
	for deviceType, extra := range policyDomain.CapabilityTable {
		set := make(map[string]struct{}, len(policyDomain.BaseCapabilities)+len(extra))
		for _, capability := range policyDomain.BaseCapabilities {
			set[capability] = struct{}{}
		}
		for _, capability := range extra {
			set[capability] = struct{}{}
		}
		capabilities[deviceType] = set
	}

	return &Resolver{capabilities: capabilities, predicate: predicate}
}

// PermissionsFor returns the sorted capability set of deviceType. Unknown types get
// nothing.
func (r *Resolver) PermissionsFor(deviceType deviceDomain.DeviceType) []string {
	set := r.capabilities[deviceType]
	permissions := make([]string, 0, len(set))
	for capability := range set {
		permissions = append(permissions, capability)
	}
	sort.Strings(permissions)
	return permissions
}

// Check reports whether device holds permission and, when resource is not empty,
// whether the resource predicate allows it.
func (r *Resolver) Check(ctx context.Context, device *deviceDomain.Device, permission, resource string) bool {
	if device == nil {
		return false
	}
	if _, ok := r.capabilities[device.Type][permission]; !ok {
		return false
	}
	if resource == "" {
		return true
	}
	return r.predicate.Allow(ctx, device, permission, resource)
}
