package enums

// DueStatus classifies (charge - balance) for a billing summary.
type DueStatus string

const (
	DueStatusDue     DueStatus = "due"
	DueStatusAdvance DueStatus = "advance"
	DueStatusSettled DueStatus = "settled"
)

// String implements fmt.Stringer.
func (d DueStatus) String() string {
	return string(d)
}
