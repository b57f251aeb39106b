// internal/models/admin_operations.go
package models

type AdminOperation string

const (
	AdminOperationGetWeights     AdminOperation = "get-weights"
	AdminOperationUpdateWeights  AdminOperation = "update-weights"
	AdminOperationListOverrides  AdminOperation = "list-overrides"
	AdminOperationUpsertOverride AdminOperation = "upsert-override"
	AdminOperationListAudits     AdminOperation = "list-audits"
)
