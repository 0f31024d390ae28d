// Package mocks holds generated gomock doubles for the outward-facing ports.
//
// Mocks are generated with go.uber.org/mock (gomock) via go:generate
// directives. Regenerate after interface changes with:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	catalog := mocks.NewMockClusterCatalog(ctrl)
//	catalog.EXPECT().ClusterIDs().Return([]string{"prod"})
//
// Simpler hand-written doubles for the auth ports live in mocks/auth.
package mocks

// MockClusterCatalog covers ClusterIDs, ListClusters, GetCluster, and Proxy.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cluster_catalog_mock.go github.com/esdeck/esdeck-api/internal/ports ClusterCatalog

// MockAuditRecorder covers Record.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_recorder_mock.go github.com/esdeck/esdeck-api/internal/ports AuditRecorder
