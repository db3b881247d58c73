package enums

// MonthState is the lifecycle position of a billing month.
type MonthState string

const (
	// MonthStateDraft means no record is persisted; defaults are in effect.
	MonthStateDraft MonthState = "draft"
	// MonthStateOpen means a record exists and meals/rates may still change.
	MonthStateOpen MonthState = "open"
	// MonthStateFinalized freezes rates and meals pending settlement.
	MonthStateFinalized MonthState = "finalized"
	// MonthStateCarriedForward marks balance continuity as recorded.
	MonthStateCarriedForward MonthState = "carried_forward"
)

// String implements fmt.Stringer.
func (s MonthState) String() string {
	return string(s)
}
