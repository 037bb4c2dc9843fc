// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityStaff                       // Access token required
)

// RouteSecurityConfig maps named HTTP routes and gRPC full method names to
// their required security level
var RouteSecurityConfig = map[string]SecurityLevel{
	"health": SecurityPublic,

	// gRPC health probes
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/List":  SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,

	// gRPC server reflection exposes the service schema
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityStaff,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityStaff,

	// Presigned document URLs carry their own signature
	"documents.upload":   SecurityPublic,
	"documents.download": SecurityPublic,

	// Reservations
	"reservations.quote":     SecurityStaff,
	"reservations.create":    SecurityStaff,
	"reservations.list":      SecurityStaff,
	"reservations.get":       SecurityStaff,
	"reservations.pay":       SecurityStaff,
	"reservations.contract":  SecurityStaff,
	"reservations.contracts": SecurityStaff,
	"reservations.confirm":   SecurityStaff,
	"reservations.cancel":    SecurityStaff,
	"reservations.complete":  SecurityStaff,

	// Vehicles
	"vehicles.availability": SecurityStaff,

	// Contracts
	"contracts.walkin":              SecurityStaff,
	"contracts.get":                 SecurityStaff,
	"contracts.convert":             SecurityStaff,
	"contracts.evidence_upload_url": SecurityStaff,

	// Customers
	"customers.lookup": SecurityStaff,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := RouteSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityStaff
}
