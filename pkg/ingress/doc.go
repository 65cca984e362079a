// Package ingress manages the ingress-nginx controller inside the cluster.
//
// The controller is installed from a pinned upstream manifest only when its
// namespace is absent. A fresh install blocks until the controller deployment
// reports Available, because routes applied before the admission webhook is
// up are rejected.
package ingress
