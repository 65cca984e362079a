// Package deploy applies the application's runtime objects: the environment
// ConfigMap and Secret the workload consumes, the Deployment itself, the
// Service fronting it, and the TLS-terminated Ingress route.
//
// Objects are applied as full desired state. A create that hits AlreadyExists
// falls through to a get-and-overwrite update, so drift in a live object is
// corrected rather than patched around. Server-allocated Service fields
// (ClusterIP, ClusterIPs) are the only live state carried over.
package deploy
