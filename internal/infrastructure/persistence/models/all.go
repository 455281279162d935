package models

// All returns every persistence model in dependency order. Tests and the
// development auto-migrate use it; production schema changes go through migrations.
func All() []any {
	return []any{
		&PropertyModel{},
		&UnitModel{},
		&ExpenseModel{},
		&MaintenanceRequestModel{},
		&TenantModel{},
		&PaymentModel{},
		&ReminderModel{},
		&BulkPaymentBatchModel{},
		&UnitHistoryModel{},
		&TenantMovementModel{},
		&AuditLogModel{},
		&NotificationModel{},
		&OutboxTaskModel{},
	}
}
