package entity

// Provider is a studio that owns slots. CommissionBps is the platform cut
// in basis points, used only for the dashboard revenue split.
type Provider struct {
	Base
	Name          string `db:"name"`
	Email         string `db:"email"`
	PasswordHash  string `db:"password_hash"`
	CommissionBps int    `db:"commission_bps"`
}
