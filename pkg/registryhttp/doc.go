// Package registryhttp exposes the manifest store over the OCI distribution
// HTTP API:
//
//	GET    /v2/                            API version check
//	HEAD   /v2/<name>/manifests/<reference>
//	GET    /v2/<name>/manifests/<reference>
//	PUT    /v2/<name>/manifests/<reference>
//	DELETE /v2/<name>/manifests/<reference>
//	GET    /healthz
//
// Blob and tag listing endpoints are answered with UNSUPPORTED.
package registryhttp
