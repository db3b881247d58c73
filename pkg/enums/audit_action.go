package enums

// AuditAction names a mutating operation recorded in the audit log.
type AuditAction string

const (
	AuditActionMealToggle       AuditAction = "meal_toggle"
	AuditActionMealBulkToggle   AuditAction = "meal_bulk_toggle"
	AuditActionMealRecalculate  AuditAction = "meal_recalculate"
	AuditActionMealReset        AuditAction = "meal_reset_to_default"
	AuditActionMonthConfigure   AuditAction = "month_configure"
	AuditActionMonthFinalize    AuditAction = "month_finalize"
	AuditActionMonthCarry       AuditAction = "month_carry_forward"
	AuditActionMonthForceUpdate AuditAction = "month_force_update"
	AuditActionMonthUnfinalize  AuditAction = "month_force_unfinalize"
	AuditActionTxApply          AuditAction = "transaction_apply"
	AuditActionTxReverse        AuditAction = "transaction_reverse"
	AuditActionTxCorrect        AuditAction = "transaction_correct"
	AuditActionBalanceFreeze    AuditAction = "balance_freeze"
	AuditActionBalanceUnfreeze  AuditAction = "balance_unfreeze"
	AuditActionBalanceReconcile AuditAction = "balance_reconcile"
	AuditActionSettingsUpdate   AuditAction = "settings_update"
	AuditActionRateRulesUpdate  AuditAction = "rate_rules_update"
	AuditActionHolidayCreate    AuditAction = "holiday_create"
	AuditActionBreakfastCreate  AuditAction = "breakfast_create"
	AuditActionHolidayUpdate    AuditAction = "holiday_update"
	AuditActionHolidayDisable   AuditAction = "holiday_disable"
)

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}
